// Package employees manages staff accounts for the back office.
package employees

import "time"

// Employee is a staff account. PasswordHash never leaves the service
// boundary; it is excluded from JSON.
type Employee struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Position     string     `json:"position"`
	IsAdmin      bool       `json:"is_admin"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// EmployeeInput carries create/update fields.
type EmployeeInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
	IsAdmin  bool   `json:"is_admin"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}
