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

const studentNotFoundMessage = "student not found"

// school_name is joined in so list views can render without N+1 lookups.
const studentColumns = `s.id, s.full_name, s.email, s.phone, s.school_id, COALESCE(sc.name, ''),
	s.sales_profile_id, s.enrollment_date, s.status, s.notes, s.created_at, s.updated_at`

const studentFrom = `students s LEFT JOIN schools sc ON sc.id = s.school_id`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new students repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a student by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE s.id = $1`, studentColumns, studentFrom)
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "get student by id")
}

// List retrieves students with optional search and relationship filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Student, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(s.full_name) LIKE $%d OR lower(s.email) LIKE $%d)", len(args), len(args)))
	}
	if params.SchoolID != nil {
		args = append(args, *params.SchoolID)
		where = append(where, fmt.Sprintf("s.school_id = $%d", len(args)))
	}
	if params.SalesProfileID != nil {
		args = append(args, *params.SalesProfileID)
		where = append(where, fmt.Sprintf("s.sales_profile_id = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", studentFrom, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d",
		studentColumns, studentFrom, whereClause, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate students: %w", err)
	}

	return students, total, nil
}

// Create inserts a new student.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Student, error) {
	query := `
		INSERT INTO students (full_name, email, phone, school_id, sales_profile_id, enrollment_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		params.FullName, params.Email, params.Phone, params.SchoolID,
		params.SalesProfileID, params.EnrollmentDate, params.Status, params.Notes,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Student{}, apperr.BadRequest("referenced school or sales profile does not exist")
		}
		return Student{}, fmt.Errorf("create student: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Update applies partial changes to a student.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Student, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FullName != nil {
		addSet("full_name", *params.FullName)
	}
	if params.Email != nil {
		addSet("email", *params.Email)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.SchoolID != nil {
		addSet("school_id", *params.SchoolID)
	}
	if params.EnrollmentDate != nil {
		addSet("enrollment_date", *params.EnrollmentDate)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.Notes != nil {
		addSet("notes", *params.Notes)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(
		"UPDATE students SET %s WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "), len(args),
	)

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, apperr.NotFound(studentNotFoundMessage)
		}
		if isForeignKeyViolation(err) {
			return Student{}, apperr.BadRequest("referenced school does not exist")
		}
		return Student{}, fmt.Errorf("update student: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a student.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("student has commissions and cannot be deleted")
		}
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(studentNotFoundMessage)
	}
	return nil
}

func (r *Repo) scanOne(row pgx.Row, op string) (Student, error) {
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, apperr.NotFound(studentNotFoundMessage)
		}
		return Student{}, fmt.Errorf("%s: %w", op, err)
	}
	return student, nil
}

func scanStudent(row pgx.Row) (Student, error) {
	var student Student
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&student.ID, &student.FullName, &student.Email, &student.Phone,
		&student.SchoolID, &student.SchoolName, &student.SalesProfileID,
		&student.EnrollmentDate, &student.Status, &student.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Student{}, err
	}

	student.CreatedAt = createdAt.Format(time.RFC3339)
	student.UpdatedAt = updatedAt.Format(time.RFC3339)
	return student, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
