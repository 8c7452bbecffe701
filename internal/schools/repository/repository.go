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

const schoolNotFoundMessage = "school not found"

const schoolColumns = "id, name, country, contact_email, commission_rate_bps, is_active, created_at, updated_at"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schools repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a school by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id), "get school by id")
}

// List retrieves schools with optional search and active filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]School, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(name) LIKE $%d OR lower(country) LIKE $%d)", len(args), len(args)))
	}
	if params.IsActive != nil {
		args = append(args, *params.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT count(*) FROM schools WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM schools WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		schoolColumns, whereClause, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}
	defer rows.Close()

	schools, err := scanSchools(rows)
	if err != nil {
		return nil, 0, err
	}
	return schools, total, nil
}

// Create inserts a new school.
func (r *Repo) Create(ctx context.Context, params CreateParams) (School, error) {
	query := `
		INSERT INTO schools (name, country, contact_email, commission_rate_bps)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + schoolColumns

	school, err := r.scanOne(
		r.pool.QueryRow(ctx, query, params.Name, params.Country, params.ContactEmail, params.CommissionRateBps),
		"create school",
	)
	if err != nil {
		if isUniqueViolation(err) {
			return School{}, apperr.Conflict("a school with this name already exists")
		}
		return School{}, err
	}
	return school, nil
}

// Update applies partial changes to a school.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (School, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Country != nil {
		addSet("country", *params.Country)
	}
	if params.ContactEmail != nil {
		addSet("contact_email", *params.ContactEmail)
	}
	if params.CommissionRateBps != nil {
		addSet("commission_rate_bps", *params.CommissionRateBps)
	}
	if params.IsActive != nil {
		addSet("is_active", *params.IsActive)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(
		"UPDATE schools SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), schoolColumns,
	)

	school, err := r.scanOne(r.pool.QueryRow(ctx, query, args...), "update school")
	if err != nil {
		if isUniqueViolation(err) {
			return School{}, apperr.Conflict("a school with this name already exists")
		}
		return School{}, err
	}
	return school, nil
}

// Delete removes a school.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(schoolNotFoundMessage)
	}
	return nil
}

func (r *Repo) scanOne(row pgx.Row, op string) (School, error) {
	var school School
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&school.ID, &school.Name, &school.Country, &school.ContactEmail,
		&school.CommissionRateBps, &school.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return School{}, apperr.NotFound(schoolNotFoundMessage)
		}
		return School{}, fmt.Errorf("%s: %w", op, err)
	}

	school.CreatedAt = createdAt.Format(time.RFC3339)
	school.UpdatedAt = updatedAt.Format(time.RFC3339)
	return school, nil
}

func scanSchools(rows pgx.Rows) ([]School, error) {
	schools := make([]School, 0)
	for rows.Next() {
		var school School
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&school.ID, &school.Name, &school.Country, &school.ContactEmail,
			&school.CommissionRateBps, &school.IsActive, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan school: %w", err)
		}
		school.CreatedAt = createdAt.Format(time.RFC3339)
		school.UpdatedAt = updatedAt.Format(time.RFC3339)
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schools: %w", err)
	}
	return schools, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
