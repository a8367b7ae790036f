package directory

import (
	"time"

	"github.com/google/uuid"
)

// Specializations is the fixed set of medical fields a provider may claim.
var Specializations = []string{
	"Cardiology",
	"Dermatology",
	"Endocrinology",
	"Gastroenterology",
	"General Medicine",
	"Neurology",
	"Oncology",
	"Orthopedics",
	"Pediatrics",
	"Psychiatry",
	"Radiology",
	"Surgery",
}

// Placeholder values for a freshly registered doctor, pending approval.
const (
	DefaultSpecialization = "General Medicine"
	DefaultQualifications = "Not provided"
)

// ValidSpecialization reports whether s is a recognized medical field.
func ValidSpecialization(s string) bool {
	for _, spec := range Specializations {
		if spec == s {
			return true
		}
	}
	return false
}

// Provider maps to the provider table. Name, Email and Phone are read from
// the owning account on loads and never written through this model.
type Provider struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	AccountID       uuid.UUID          `db:"account_id" json:"account_id"`
	Name            string             `db:"-" json:"name"`
	Email           string             `db:"-" json:"email"`
	Phone           string             `db:"-" json:"phone"`
	Specialization  string             `db:"specialization" json:"specialization"`
	ExperienceYears int                `db:"experience_years" json:"experience_years"`
	Qualifications  string             `db:"qualifications" json:"qualifications"`
	ConsultationFee int                `db:"consultation_fee" json:"consultation_fee"`
	Bio             string             `db:"bio" json:"bio"`
	ImageFilename   *string            `db:"image_filename" json:"image_filename,omitempty"`
	Approved        bool               `db:"approved" json:"approved"`
	RatingSum       int                `db:"rating_sum" json:"-"`
	RatingCount     int                `db:"rating_count" json:"rating_count"`
	Availability    []AvailabilitySlot `db:"-" json:"availability"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// Rating returns the aggregate rating, 0 when unrated.
func (p *Provider) Rating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return float64(p.RatingSum) / float64(p.RatingCount)
}

// AvailabilitySlot is one entry of a provider's weekly availability.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type AvailabilitySlot struct {
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Enabled   bool   `db:"enabled" json:"enabled"`
}
