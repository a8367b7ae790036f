package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Transitions only move forward: pending may become
// confirmed or cancelled, confirmed may become completed or cancelled, and
// completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses are tracked on the record but never transitioned by any
// handler.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// CanTransition reports whether an appointment may move from one status to
// another.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Appointment maps to the appointment table. PatientName, PatientPhone,
// ProviderName and Specialization are read through joins for list views.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID      uuid.UUID `db:"provider_id" json:"provider_id"`
	PatientName     string    `db:"-" json:"patient_name,omitempty"`
	PatientPhone    string    `db:"-" json:"patient_phone,omitempty"`
	ProviderName    string    `db:"-" json:"provider_name,omitempty"`
	Specialization  string    `db:"-" json:"specialization,omitempty"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	Status          string    `db:"status" json:"status"`
	PaymentStatus   string    `db:"payment_status" json:"payment_status"`
	Fee             int       `db:"fee" json:"fee"`
	Symptoms        *string   `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis       *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription    *string   `db:"prescription" json:"prescription,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
