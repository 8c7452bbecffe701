package repository

import (
	"context"

	"github.com/google/uuid"
)

// Profile represents a back-office user (sales staff or admin).
type Profile struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	Phone        string    `db:"phone"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    string    `db:"created_at"`
	UpdatedAt    string    `db:"updated_at"`
}

// CreateParams contains parameters for creating a profile.
type CreateParams struct {
	Email        string
	FullName     string
	Phone        string
	Role         string
	PasswordHash string
}

// UpdateParams contains parameters for updating a profile.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID       uuid.UUID
	FullName *string
	Phone    *string
	Role     *string
	IsActive *bool
}

// ListParams contains filtering and pagination options.
type ListParams struct {
	Search   string
	Role     string
	IsActive *bool
	Offset   int
	Limit    int
}

// Repository defines data access for profiles.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	List(ctx context.Context, params ListParams) ([]Profile, int, error)
	Create(ctx context.Context, params CreateParams) (Profile, error)
	Update(ctx context.Context, params UpdateParams) (Profile, error)
}
