// Package activitylog records and serves the audit trail of back-office actions.
package activitylog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    *uuid.UUID     `json:"actorId,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   *uuid.UUID     `json:"entityId,omitempty"`
	Detail     map[string]any `json:"detail"`
	CreatedAt  string         `json:"createdAt"`
}

// AppendParams contains the fields of a new audit record.
type AppendParams struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Detail     map[string]any
}

// ListParams contains filtering and pagination options for the audit trail.
type ListParams struct {
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Offset     int
	Limit      int
}

// Recorder appends audit records. Other modules depend on this narrow interface.
type Recorder interface {
	Append(ctx context.Context, params AppendParams) error
}

// Repository provides data access for the audit trail.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new activity log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Compile-time check that Repository implements Recorder.
var _ Recorder = (*Repository)(nil)

// Append inserts a new audit record.
func (r *Repository) Append(ctx context.Context, params AppendParams) error {
	detail := params.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal activity detail: %w", err)
	}

	query := `
		INSERT INTO activity_logs (actor_id, action, entity_type, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query, params.ActorID, params.Action, params.EntityType, params.EntityID, detailJSON); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// List retrieves audit records, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Entry, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if params.EntityType != "" {
		args = append(args, params.EntityType)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if params.EntityID != nil {
		args = append(args, *params.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if params.ActorID != nil {
		args = append(args, *params.ActorID)
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM activity_logs WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, actor_id, action, entity_type, entity_id, detail, created_at
		FROM activity_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var detailJSON []byte
		var createdAt time.Time
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType, &entry.EntityID, &detailJSON, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &entry.Detail); err != nil {
				return nil, 0, fmt.Errorf("unmarshal activity detail: %w", err)
			}
		}
		entry.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity logs: %w", err)
	}

	return entries, total, nil
}
