// Package reporting aggregates counts for the admin dashboard. Every call
// re-counts from current state; nothing is cached.
package reporting

import (
	"context"

	"github.com/medibook/medibook/internal/domain/identity"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalDoctors        int `json:"total_doctors"`
	TotalPatients       int `json:"total_patients"`
	TotalAppointments   int `json:"total_appointments"`
	PendingAppointments int `json:"pending_appointments"`
}

// ProviderCounter counts provider profiles.
type ProviderCounter interface {
	Count(ctx context.Context) (int, error)
}

// AccountCounter counts accounts by role.
type AccountCounter interface {
	CountByRole(ctx context.Context, role string) (int, error)
}

// AppointmentCounter counts appointments.
type AppointmentCounter interface {
	Count(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
}

type Service struct {
	providers    ProviderCounter
	accounts     AccountCounter
	appointments AppointmentCounter
}

func NewService(providers ProviderCounter, accounts AccountCounter, appointments AppointmentCounter) *Service {
	return &Service{providers: providers, accounts: accounts, appointments: appointments}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	doctors, err := s.providers.Count(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.accounts.CountByRole(ctx, identity.RolePatient)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.appointments.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalDoctors:        doctors,
		TotalPatients:       patients,
		TotalAppointments:   appointments,
		PendingAppointments: pending,
	}, nil
}
