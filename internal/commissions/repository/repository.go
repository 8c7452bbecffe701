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

const (
	commissionNotFoundMessage = "commission not found"
	attachmentNotFoundMessage = "attachment not found"
)

const commissionColumns = `c.id, c.student_id, st.full_name, st.enrollment_date, st.sales_profile_id,
	c.school_id, sc.name, c.amount_cents, c.currency, c.status, c.claimed_at,
	c.zoho_deal_id, c.zoho_deal_name, c.zoho_previous_stage, c.zoho_synced_at, c.sync_error,
	c.created_at, c.updated_at`

const commissionFrom = `commissions c
	JOIN students st ON st.id = c.student_id
	JOIN schools sc ON sc.id = c.school_id`

const attachmentColumns = "id, commission_id, file_key, file_name, content_type, size_bytes, uploaded_by, created_at"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new commissions repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a commission by its ID, with student and school details.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Commission, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE c.id = $1`, commissionColumns, commissionFrom)
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "get commission by id")
}

// List retrieves commissions with optional filters.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Commission, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if params.StudentID != nil {
		args = append(args, *params.StudentID)
		where = append(where, fmt.Sprintf("c.student_id = $%d", len(args)))
	}
	if params.SchoolID != nil {
		args = append(args, *params.SchoolID)
		where = append(where, fmt.Sprintf("c.school_id = $%d", len(args)))
	}
	if params.SalesProfileID != nil {
		args = append(args, *params.SalesProfileID)
		where = append(where, fmt.Sprintf("st.sales_profile_id = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", commissionFrom, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count commissions: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d",
		commissionColumns, commissionFrom, whereClause, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()

	commissions := make([]Commission, 0)
	for rows.Next() {
		commission, err := scanCommission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan commission: %w", err)
		}
		commissions = append(commissions, commission)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate commissions: %w", err)
	}

	return commissions, total, nil
}

// Create inserts a new pending commission.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Commission, error) {
	query := `
		INSERT INTO commissions (student_id, school_id, amount_cents, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, params.StudentID, params.SchoolID, params.AmountCents, params.Currency).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Commission{}, apperr.BadRequest("referenced student or school does not exist")
		}
		return Commission{}, fmt.Errorf("create commission: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Update applies partial changes to a commission.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Commission, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.AmountCents != nil {
		addSet("amount_cents", *params.AmountCents)
	}
	if params.Currency != nil {
		addSet("currency", *params.Currency)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(
		"UPDATE commissions SET %s WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "), len(args),
	)

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commission{}, apperr.NotFound(commissionNotFoundMessage)
		}
		return Commission{}, fmt.Errorf("update commission: %w", err)
	}

	return r.GetByID(ctx, id)
}

// RecordClaimOutcome persists the result of one CRM synchronization attempt.
// A successful sync transitions the commission to claimed; a failed sync
// keeps it pending and records the error for the next attempt.
func (r *Repo) RecordClaimOutcome(ctx context.Context, params ClaimOutcomeParams) (Commission, error) {
	var query string
	var args []interface{}

	if params.Success {
		query = `
			UPDATE commissions
			SET status = 'claimed', claimed_at = now(), zoho_deal_id = $1, zoho_deal_name = $2,
				zoho_previous_stage = $3, zoho_synced_at = now(), sync_error = '', updated_at = now()
			WHERE id = $4
			RETURNING id`
		args = []interface{}{params.DealID, params.DealName, params.PreviousStage, params.ID}
	} else {
		query = `
			UPDATE commissions
			SET sync_error = $1, updated_at = now()
			WHERE id = $2
			RETURNING id`
		args = []interface{}{params.SyncError, params.ID}
	}

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commission{}, apperr.NotFound(commissionNotFoundMessage)
		}
		return Commission{}, fmt.Errorf("record claim outcome: %w", err)
	}

	return r.GetByID(ctx, id)
}

// AddAttachment registers a new attachment record.
func (r *Repo) AddAttachment(ctx context.Context, params AddAttachmentParams) (Attachment, error) {
	query := `
		INSERT INTO commission_attachments (commission_id, file_key, file_name, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + attachmentColumns

	attachment, err := scanAttachment(r.pool.QueryRow(ctx, query,
		params.CommissionID, params.FileKey, params.FileName, params.ContentType, params.SizeBytes, params.UploadedBy,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return Attachment{}, apperr.NotFound(commissionNotFoundMessage)
		}
		return Attachment{}, fmt.Errorf("add attachment: %w", err)
	}
	return attachment, nil
}

// ListAttachments retrieves all attachments for a commission, newest first.
func (r *Repo) ListAttachments(ctx context.Context, commissionID uuid.UUID) ([]Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM commission_attachments WHERE commission_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, commissionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]Attachment, 0)
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}

	return attachments, nil
}

// GetAttachment retrieves a single attachment scoped to a commission.
func (r *Repo) GetAttachment(ctx context.Context, commissionID, attachmentID uuid.UUID) (Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM commission_attachments WHERE id = $1 AND commission_id = $2`

	attachment, err := scanAttachment(r.pool.QueryRow(ctx, query, attachmentID, commissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, apperr.NotFound(attachmentNotFoundMessage)
		}
		return Attachment{}, fmt.Errorf("get attachment: %w", err)
	}
	return attachment, nil
}

// DeleteAttachment removes an attachment record.
func (r *Repo) DeleteAttachment(ctx context.Context, commissionID, attachmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM commission_attachments WHERE id = $1 AND commission_id = $2`, attachmentID, commissionID)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(attachmentNotFoundMessage)
	}
	return nil
}

func (r *Repo) scanOne(row pgx.Row, op string) (Commission, error) {
	commission, err := scanCommission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commission{}, apperr.NotFound(commissionNotFoundMessage)
		}
		return Commission{}, fmt.Errorf("%s: %w", op, err)
	}
	return commission, nil
}

func scanCommission(row pgx.Row) (Commission, error) {
	var commission Commission
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&commission.ID, &commission.StudentID, &commission.StudentName, &commission.EnrollmentDate,
		&commission.SalesProfileID, &commission.SchoolID, &commission.SchoolName,
		&commission.AmountCents, &commission.Currency, &commission.Status, &commission.ClaimedAt,
		&commission.ZohoDealID, &commission.ZohoDealName, &commission.ZohoPreviousStage,
		&commission.ZohoSyncedAt, &commission.SyncError, &createdAt, &updatedAt,
	)
	if err != nil {
		return Commission{}, err
	}

	commission.CreatedAt = createdAt.Format(time.RFC3339)
	commission.UpdatedAt = updatedAt.Format(time.RFC3339)
	return commission, nil
}

func scanAttachment(row pgx.Row) (Attachment, error) {
	var attachment Attachment
	var createdAt time.Time

	err := row.Scan(
		&attachment.ID, &attachment.CommissionID, &attachment.FileKey, &attachment.FileName,
		&attachment.ContentType, &attachment.SizeBytes, &attachment.UploadedBy, &createdAt,
	)
	if err != nil {
		return Attachment{}, err
	}

	attachment.CreatedAt = createdAt.Format(time.RFC3339)
	return attachment, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
