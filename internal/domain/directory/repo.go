package directory

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows provider listings.
type ListFilter struct {
	Specialization string
	ApprovedOnly   bool
}

// Repository is the storage contract for provider profiles.
type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Provider, int, error)
	ReplaceAvailability(ctx context.Context, providerID uuid.UUID, slots []AvailabilitySlot) error
	Count(ctx context.Context) (int, error)
}
