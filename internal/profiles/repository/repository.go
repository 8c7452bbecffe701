package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pj_commission_backend/platform/apperr"
)

const profileNotFoundMessage = "profile not found"

const profileColumns = "id, email, full_name, phone, role, password_hash, is_active, created_at, updated_at"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profiles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a profile by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "get profile by id")
}

// GetByEmail retrieves a profile by its email address.
func (r *Repo) GetByEmail(ctx context.Context, email string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	return r.scanOne(r.pool.QueryRow(ctx, query, email), "get profile by email")
}

// List retrieves profiles with optional search, role, and active filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Profile, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(full_name) LIKE $%d OR lower(email) LIKE $%d)", len(args), len(args)))
	}
	if params.Role != "" {
		args = append(args, params.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if params.IsActive != nil {
		args = append(args, *params.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM profiles WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM profiles WHERE %s ORDER BY full_name ASC LIMIT $%d OFFSET $%d",
		profileColumns, whereClause, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		var profile Profile
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&profile.ID, &profile.Email, &profile.FullName, &profile.Phone, &profile.Role,
			&profile.PasswordHash, &profile.IsActive, &createdAt, &updatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		profile.CreatedAt = createdAt.Format(time.RFC3339)
		profile.UpdatedAt = updatedAt.Format(time.RFC3339)
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, total, nil
}

// Create inserts a new profile.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Profile, error) {
	query := `
		INSERT INTO profiles (email, full_name, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + profileColumns

	profile, err := r.scanOne(
		r.pool.QueryRow(ctx, query, params.Email, params.FullName, params.Phone, params.Role, params.PasswordHash),
		"create profile",
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, apperr.Conflict("a profile with this email already exists")
		}
		return Profile{}, err
	}
	return profile, nil
}

// Update applies partial changes to a profile.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Profile, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FullName != nil {
		addSet("full_name", *params.FullName)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.Role != nil {
		addSet("role", *params.Role)
	}
	if params.IsActive != nil {
		addSet("is_active", *params.IsActive)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(
		"UPDATE profiles SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), profileColumns,
	)

	return r.scanOne(r.pool.QueryRow(ctx, query, args...), "update profile")
}

func (r *Repo) scanOne(row pgx.Row, op string) (Profile, error) {
	var profile Profile
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Phone, &profile.Role,
		&profile.PasswordHash, &profile.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile.CreatedAt = createdAt.Format(time.RFC3339)
	profile.UpdatedAt = updatedAt.Format(time.RFC3339)
	return profile, nil
}
