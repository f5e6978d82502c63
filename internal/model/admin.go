package model

import "time"

// Admin represents an administrative user who manages the portfolio through
// the admin API. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"` // bcrypt hash, never expose
	Name         string    `json:"name" db:"name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AdminSummary is the public view of an admin returned by the auth endpoints.
type AdminSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Summary returns the public view of a.
func (a *Admin) Summary() AdminSummary {
	return AdminSummary{ID: a.ID, Email: a.Email, Name: a.Name}
}
