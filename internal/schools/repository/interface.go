package repository

import (
	"context"

	"github.com/google/uuid"
)

// School represents a partner institution commissions are claimed against.
type School struct {
	ID                uuid.UUID `db:"id"`
	Name              string    `db:"name"`
	Country           string    `db:"country"`
	ContactEmail      string    `db:"contact_email"`
	CommissionRateBps int       `db:"commission_rate_bps"`
	IsActive          bool      `db:"is_active"`
	CreatedAt         string    `db:"created_at"`
	UpdatedAt         string    `db:"updated_at"`
}

// CreateParams contains parameters for creating a school.
type CreateParams struct {
	Name              string
	Country           string
	ContactEmail      string
	CommissionRateBps int
}

// UpdateParams contains parameters for updating a school.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID                uuid.UUID
	Name              *string
	Country           *string
	ContactEmail      *string
	CommissionRateBps *int
	IsActive          *bool
}

// ListParams contains filtering and pagination options.
type ListParams struct {
	Search   string
	IsActive *bool
	Offset   int
	Limit    int
}

// Repository defines data access for schools.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (School, error)
	List(ctx context.Context, params ListParams) ([]School, int, error)
	Create(ctx context.Context, params CreateParams) (School, error)
	Update(ctx context.Context, params UpdateParams) (School, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
