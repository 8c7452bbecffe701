// Package repository persists the singleton Zoho OAuth token row.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OAuthToken is the stored refresh/access token pair for the CRM connection.
// At most one row exists; the table enforces id = 1.
type OAuthToken struct {
	RefreshToken string
	AccessToken  string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Repo implements token persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new Zoho token repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get retrieves the singleton token row. The second return value reports
// whether a row exists at all.
func (r *Repo) Get(ctx context.Context) (OAuthToken, bool, error) {
	query := `
		SELECT refresh_token, access_token, expires_at, updated_at
		FROM zoho_tokens
		WHERE id = 1`

	var token OAuthToken
	err := r.pool.QueryRow(ctx, query).Scan(
		&token.RefreshToken, &token.AccessToken, &token.ExpiresAt, &token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OAuthToken{}, false, nil
		}
		return OAuthToken{}, false, fmt.Errorf("get zoho token: %w", err)
	}

	return token, true, nil
}

// UpdateAccess overwrites only the access-token fields after a successful
// refresh. The refresh token is left untouched.
func (r *Repo) UpdateAccess(ctx context.Context, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE zoho_tokens
		SET access_token = $1, expires_at = $2, updated_at = now()
		WHERE id = 1`

	tag, err := r.pool.Exec(ctx, query, accessToken, expiresAt)
	if err != nil {
		return fmt.Errorf("update zoho access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update zoho access token: no token row")
	}

	return nil
}

// Upsert replaces the whole connection record. Used when an operator stores a
// refresh token obtained from a completed authorization-code exchange.
func (r *Repo) Upsert(ctx context.Context, refreshToken string) error {
	query := `
		INSERT INTO zoho_tokens (id, refresh_token, access_token, expires_at, updated_at)
		VALUES (1, $1, '', now(), now())
		ON CONFLICT (id) DO UPDATE
		SET refresh_token = EXCLUDED.refresh_token,
		    access_token = '',
		    expires_at = now(),
		    updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, refreshToken); err != nil {
		return fmt.Errorf("upsert zoho token: %w", err)
	}

	return nil
}

// Delete removes the connection record.
func (r *Repo) Delete(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM zoho_tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("delete zoho token: %w", err)
	}
	return nil
}
