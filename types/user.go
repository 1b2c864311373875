package types

import "time"

// Role is the closed set of account roles. A user's role is fixed at
// registration and decides which profile schema applies to the account.
type Role string

const (
	// RolePatient marks an account owned by a patient.
	RolePatient Role = "patient"

	// RoleDoctor marks an account owned by a doctor.
	RoleDoctor Role = "doctor"
)

// Roles lists every supported role in a stable order.
var Roles = []Role{RolePatient, RoleDoctor}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Title returns the role name with a leading capital, as used in
// user-facing fault messages ("Patient profile not found").
func (r Role) Title() string {
	switch r {
	case RolePatient:
		return "Patient"
	case RoleDoctor:
		return "Doctor"
	default:
		return string(r)
	}
}

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the unique login identifier of the account.
	Email string `json:"email" db:"email"`

	// Mobile is the user's contact phone number.
	Mobile string `json:"mobile" db:"mobile"`

	// Role indicates whether the account belongs to a patient or a
	// doctor. Immutable after creation.
	Role Role `json:"user_type" db:"user_type"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Public returns the representation of the user embedded inside profile
// payloads. It carries no credential material.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the projection of a User that appears nested inside
// patient and doctor representations.
type PublicUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}
