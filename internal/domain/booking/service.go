package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/directory"
	"github.com/medibook/medibook/internal/platform/httperr"
)

// DateFormat is the wire format for appointment dates.
const DateFormat = "2006-01-02"

// TimeFormat is the wire format for slot boundaries.
const TimeFormat = "15:04"

// ProviderDirectory is the slice of the provider directory the ledger needs.
type ProviderDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*directory.Provider, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*directory.Provider, error)
}

type Service struct {
	appointments Repository
	providers    ProviderDirectory
}

func NewService(appointments Repository, providers ProviderDirectory) *Service {
	return &Service{appointments: appointments, providers: providers}
}

// BookInput is a patient's booking request.
type BookInput struct {
	ProviderID uuid.UUID `json:"provider_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Symptoms   string    `json:"symptoms"`
}

// Book creates a pending appointment for the calling patient. The consultation
// fee is snapshotted from the provider's current fee; later fee changes do not
// affect existing bookings. Slot conflicts surface as Conflict errors from the
// repository's atomic insert.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, in BookInput) (*Appointment, error) {
	if in.ProviderID == uuid.Nil {
		return nil, httperr.Validationf("provider_id is required")
	}
	date, err := time.Parse(DateFormat, in.Date)
	if err != nil {
		return nil, httperr.Validationf("date must be YYYY-MM-DD")
	}
	start, err := time.Parse(TimeFormat, in.StartTime)
	if err != nil {
		return nil, httperr.Validationf("start_time must be HH:MM")
	}
	end, err := time.Parse(TimeFormat, in.EndTime)
	if err != nil {
		return nil, httperr.Validationf("end_time must be HH:MM")
	}
	if !end.After(start) {
		return nil, httperr.Validationf("end_time must be after start_time")
	}

	provider, err := s.providers.GetByID(ctx, in.ProviderID)
	if err != nil {
		if httperr.KindOf(err) == httperr.NotFound {
			return nil, httperr.NotFoundf("provider unavailable")
		}
		return nil, err
	}
	if !provider.Approved {
		return nil, httperr.NotFoundf("provider unavailable")
	}

	a := &Appointment{
		PatientID:       patientID,
		ProviderID:      provider.ID,
		ProviderName:    provider.Name,
		Specialization:  provider.Specialization,
		AppointmentDate: date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		Fee:             provider.ConsultationFee,
	}
	if in.Symptoms != "" {
		a.Symptoms = &in.Symptoms
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListForPatient returns the calling patient's own bookings, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// ListForDoctor returns bookings for the calling doctor's own profile, in
// chronological order.
func (s *Service) ListForDoctor(ctx context.Context, doctorAccountID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	provider, err := s.providers.GetByAccountID(ctx, doctorAccountID)
	if err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByProvider(ctx, provider.ID, limit, offset)
}

// ListAll returns every booking, newest first. Admin view.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListAll(ctx, limit, offset)
}

// UpdateStatusInput carries a doctor's status update with optional clinical
// annotations. Nil fields are left untouched.
type UpdateStatusInput struct {
	Status       string  `json:"status"`
	Diagnosis    *string `json:"diagnosis"`
	Prescription *string `json:"prescription"`
	Notes        *string `json:"notes"`
}

// UpdateStatus lets the owning doctor confirm, complete or cancel an
// appointment and attach clinical notes. Transitions only move forward.
func (s *Service) UpdateStatus(ctx context.Context, doctorAccountID, appointmentID uuid.UUID, in UpdateStatusInput) (*Appointment, error) {
	provider, err := s.providers.GetByAccountID(ctx, doctorAccountID)
	if err != nil {
		return nil, err
	}
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != provider.ID {
		return nil, httperr.Forbiddenf("appointment belongs to another provider")
	}
	if a.Status == StatusCancelled && (in.Diagnosis != nil || in.Prescription != nil || in.Notes != nil) {
		return nil, httperr.Validationf("cancelled appointment cannot be annotated")
	}

	if in.Status != "" && in.Status != a.Status {
		switch in.Status {
		case StatusConfirmed, StatusCompleted, StatusCancelled:
		default:
			return nil, httperr.Validationf("unrecognized status %q", in.Status)
		}
		if !CanTransition(a.Status, in.Status) {
			return nil, httperr.Validationf("cannot move a %s appointment to %s", a.Status, in.Status)
		}
		a.Status = in.Status
	}
	if in.Diagnosis != nil {
		a.Diagnosis = in.Diagnosis
	}
	if in.Prescription != nil {
		a.Prescription = in.Prescription
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel sets the calling patient's own appointment to cancelled. Cancelling
// an already cancelled appointment is a no-op; completed appointments cannot
// be cancelled.
func (s *Service) Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, httperr.Forbiddenf("appointment belongs to another patient")
	}
	switch a.Status {
	case StatusCancelled:
		return a, nil
	case StatusCompleted:
		return nil, httperr.Validationf("completed appointment cannot be cancelled")
	}

	a.Status = StatusCancelled
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteByProvider removes every appointment referencing the provider. Used
// by cascading provider deletion.
func (s *Service) DeleteByProvider(ctx context.Context, providerID uuid.UUID) (int, error) {
	return s.appointments.DeleteByProvider(ctx, providerID)
}

// DeleteByPatient removes every appointment booked by the patient. Used by
// cascading patient deletion.
func (s *Service) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.appointments.DeleteByPatient(ctx, patientID)
}

// Count returns the total number of appointments.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.appointments.Count(ctx)
}

// CountPending returns the number of appointments awaiting confirmation.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.appointments.CountByStatus(ctx, StatusPending)
}
