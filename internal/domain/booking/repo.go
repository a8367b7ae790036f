package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for appointments. Create relies on the
// storage layer to reject a second non-cancelled booking for the same
// provider, date and start time, so concurrent requests cannot double-book.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	DeleteByProvider(ctx context.Context, providerID uuid.UUID) (int, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
