// Package repository provides data access for students.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Student represents an enrolled or prospective student managed by a sales agent.
type Student struct {
	ID             uuid.UUID  `db:"id"`
	FullName       string     `db:"full_name"`
	Email          string     `db:"email"`
	Phone          string     `db:"phone"`
	SchoolID       *uuid.UUID `db:"school_id"`
	SchoolName     string     `db:"school_name"`
	SalesProfileID uuid.UUID  `db:"sales_profile_id"`
	EnrollmentDate *time.Time `db:"enrollment_date"`
	Status         string     `db:"status"`
	Notes          string     `db:"notes"`
	CreatedAt      string     `db:"created_at"`
	UpdatedAt      string     `db:"updated_at"`
}

// CreateParams contains parameters for creating a student.
type CreateParams struct {
	FullName       string
	Email          string
	Phone          string
	SchoolID       *uuid.UUID
	SalesProfileID uuid.UUID
	EnrollmentDate *time.Time
	Status         string
	Notes          string
}

// UpdateParams contains parameters for updating a student.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID             uuid.UUID
	FullName       *string
	Email          *string
	Phone          *string
	SchoolID       *uuid.UUID
	EnrollmentDate *time.Time
	Status         *string
	Notes          *string
}

// ListParams contains filtering and pagination options.
type ListParams struct {
	Search         string
	SchoolID       *uuid.UUID
	SalesProfileID *uuid.UUID
	Status         string
	Offset         int
	Limit          int
}

// Repository defines data access for students.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Student, error)
	List(ctx context.Context, params ListParams) ([]Student, int, error)
	Create(ctx context.Context, params CreateParams) (Student, error)
	Update(ctx context.Context, params UpdateParams) (Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
