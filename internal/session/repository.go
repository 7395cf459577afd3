package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("session not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s Session) (*Session, error) {
	const q = `
INSERT INTO portal_sessions (id, user_id, email, role, backend_token, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, email, role, backend_token, expires_at, revoked_at, created_at
`
	var out Session
	if err := r.db.QueryRow(ctx, q, s.ID, s.UserID, s.Email, s.Role, s.BackendToken, s.ExpiresAt).Scan(
		&out.ID, &out.UserID, &out.Email, &out.Role, &out.BackendToken, &out.ExpiresAt, &out.RevokedAt, &out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetActive returns the session only while it is neither revoked nor expired.
func (r *Repository) GetActive(ctx context.Context, id string, now time.Time) (*Session, error) {
	const q = `
SELECT id, user_id, email, role, backend_token, expires_at, revoked_at, created_at
FROM portal_sessions
WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2
`
	var s Session
	if err := r.db.QueryRow(ctx, q, id, now).Scan(
		&s.ID, &s.UserID, &s.Email, &s.Role, &s.BackendToken, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Revoke(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE portal_sessions
SET revoked_at = $2
WHERE id = $1 AND revoked_at IS NULL
`
	_, err := r.db.Exec(ctx, q, id, now)
	return err
}

// DeleteExpired drops sessions that expired before cutoff.
func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM portal_sessions WHERE expires_at < $1`
	tag, err := r.db.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
