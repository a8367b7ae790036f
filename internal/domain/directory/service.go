package directory

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medibook/medibook/internal/domain/identity"
	"github.com/medibook/medibook/internal/platform/db"
	"github.com/medibook/medibook/internal/platform/httperr"
	"github.com/medibook/medibook/internal/platform/imagestore"
)

// AccountStore is the slice of the account repository the directory needs
// for cascading deletes.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentPurger removes appointments referencing a provider or a patient
// as part of a cascading delete.
type AppointmentPurger interface {
	DeleteByProvider(ctx context.Context, providerID uuid.UUID) (int, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

type Service struct {
	providers    Repository
	accounts     AccountStore
	appointments AppointmentPurger
	images       imagestore.Store
	inTx         db.Atomic
	logger       zerolog.Logger
}

func NewService(providers Repository, accounts AccountStore, appointments AppointmentPurger,
	images imagestore.Store, inTx db.Atomic, logger zerolog.Logger) *Service {
	return &Service{
		providers:    providers,
		accounts:     accounts,
		appointments: appointments,
		images:       images,
		inTx:         inTx,
		logger:       logger,
	}
}

// CreateDefaultProfile creates the placeholder profile for a newly registered
// doctor account. The profile stays invisible to patients until approved.
func (s *Service) CreateDefaultProfile(ctx context.Context, accountID uuid.UUID, _ string) error {
	return s.providers.Create(ctx, &Provider{
		AccountID:      accountID,
		Specialization: DefaultSpecialization,
		Qualifications: DefaultQualifications,
	})
}

// List returns providers matching the filter. Non-admin callers only ever see
// approved profiles.
func (s *Service) List(ctx context.Context, callerRole, specialization string, limit, offset int) ([]*Provider, int, error) {
	f := ListFilter{
		Specialization: specialization,
		ApprovedOnly:   callerRole != identity.RoleAdmin,
	}
	return s.providers.List(ctx, f, limit, offset)
}

// Get returns one provider. Unapproved profiles are hidden from non-admin
// callers as if they did not exist.
func (s *Service) Get(ctx context.Context, callerRole string, id uuid.UUID) (*Provider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Approved && callerRole != identity.RoleAdmin {
		return nil, httperr.NotFoundf("provider not found")
	}
	return p, nil
}

// GetOwn returns the profile owned by the calling doctor account.
func (s *Service) GetOwn(ctx context.Context, accountID uuid.UUID) (*Provider, error) {
	return s.providers.GetByAccountID(ctx, accountID)
}

// UpdateProfileInput carries the profile fields a doctor may change. Nil
// fields are left untouched.
type UpdateProfileInput struct {
	Specialization  *string `json:"specialization"`
	ExperienceYears *int    `json:"experience_years"`
	Qualifications  *string `json:"qualifications"`
	ConsultationFee *int    `json:"consultation_fee"`
	Bio             *string `json:"bio"`
}

// UpdateOwnProfile applies the given fields to the calling doctor's profile.
func (s *Service) UpdateOwnProfile(ctx context.Context, accountID uuid.UUID, in UpdateProfileInput) (*Provider, error) {
	p, err := s.providers.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if in.Specialization != nil {
		if !ValidSpecialization(*in.Specialization) {
			return nil, httperr.Validationf("unrecognized specialization %q", *in.Specialization)
		}
		p.Specialization = *in.Specialization
	}
	if in.ExperienceYears != nil {
		if *in.ExperienceYears < 0 {
			return nil, httperr.Validationf("experience_years must not be negative")
		}
		p.ExperienceYears = *in.ExperienceYears
	}
	if in.Qualifications != nil {
		p.Qualifications = *in.Qualifications
	}
	if in.ConsultationFee != nil {
		if *in.ConsultationFee < 0 {
			return nil, httperr.Validationf("consultation_fee must not be negative")
		}
		p.ConsultationFee = *in.ConsultationFee
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}

	if err := s.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProfileImage stores a new profile image for the calling doctor and
// removes the previous one.
func (s *Service) SaveProfileImage(ctx context.Context, accountID uuid.UUID, contentType string, content io.Reader) (*Provider, error) {
	p, err := s.providers.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	filename, err := s.images.Save(ctx, contentType, content)
	switch err {
	case nil:
	case imagestore.ErrInvalidContentType:
		return nil, httperr.Validationf("profile image must be PNG or JPEG")
	case imagestore.ErrFileTooLarge:
		return nil, httperr.Validationf("profile image exceeds the size limit")
	default:
		return nil, err
	}

	previous := p.ImageFilename
	p.ImageFilename = &filename
	if err := s.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := s.images.Remove(ctx, *previous); err != nil {
			s.logger.Warn().Err(err).Str("filename", *previous).Msg("failed to remove replaced profile image")
		}
	}
	return p, nil
}

// OpenImage returns a reader over a stored profile image.
func (s *Service) OpenImage(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := s.images.Open(ctx, filename)
	if err == imagestore.ErrImageNotFound {
		return nil, httperr.NotFoundf("image not found")
	}
	return rc, err
}

// SetAvailability replaces the calling doctor's full weekly slot list.
// Individual slots are validated; overlap between slots is allowed.
func (s *Service) SetAvailability(ctx context.Context, accountID uuid.UUID, slots []AvailabilitySlot) (*Provider, error) {
	p, err := s.providers.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for i, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			return nil, httperr.Validationf("slot %d: day_of_week must be between 0 and 6", i)
		}
		start, err := time.Parse("15:04", slot.StartTime)
		if err != nil {
			return nil, httperr.Validationf("slot %d: start_time must be HH:MM", i)
		}
		end, err := time.Parse("15:04", slot.EndTime)
		if err != nil {
			return nil, httperr.Validationf("slot %d: end_time must be HH:MM", i)
		}
		if !end.After(start) {
			return nil, httperr.Validationf("slot %d: end_time must be after start_time", i)
		}
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		return s.providers.ReplaceAvailability(ctx, p.ID, slots)
	})
	if err != nil {
		return nil, err
	}
	p.Availability = slots
	return p, nil
}

// Approve flips the approval flag on. Idempotent.
func (s *Service) Approve(ctx context.Context, providerID uuid.UUID) error {
	return s.providers.SetApproval(ctx, providerID, true)
}

// DeleteProvider removes a provider, its appointments, and its owning account
// in one transaction. The stored profile image is cleaned up afterwards.
func (s *Service) DeleteProvider(ctx context.Context, providerID uuid.UUID) error {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		removed, err := s.appointments.DeleteByProvider(ctx, p.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.logger.Info().Int("count", removed).Stringer("provider_id", p.ID).Msg("cascaded appointment removal")
		}
		if err := s.providers.Delete(ctx, p.ID); err != nil {
			return err
		}
		return s.accounts.Delete(ctx, p.AccountID)
	})
	if err != nil {
		return err
	}

	if p.ImageFilename != nil {
		if err := s.images.Remove(ctx, *p.ImageFilename); err != nil {
			s.logger.Warn().Err(err).Str("filename", *p.ImageFilename).Msg("failed to remove profile image of deleted provider")
		}
	}
	return nil
}

// DeletePatient removes a patient account and its appointments in one
// transaction.
func (s *Service) DeletePatient(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role != identity.RolePatient {
		return httperr.NotFoundf("patient not found")
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.appointments.DeleteByPatient(ctx, accountID); err != nil {
			return err
		}
		return s.accounts.Delete(ctx, accountID)
	})
}
