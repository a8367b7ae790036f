package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles an account may hold. Admin accounts are seeded out of band, never
// registered through the API.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Account maps to the account table.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RegistrableRole reports whether the role can be claimed at registration.
func RegistrableRole(role string) bool {
	return role == RolePatient || role == RoleDoctor
}
