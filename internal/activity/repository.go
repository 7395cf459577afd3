package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"energyportal/pkg/db"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record appends entries atomically; either all rows land or none do.
func (r *Repository) Record(ctx context.Context, entries ...Entry) error {
	switch len(entries) {
	case 0:
		return nil
	case 1:
		return insert(ctx, r.db, entries[0])
	}
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, e := range entries {
			if err := insert(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) ListByBooking(ctx context.Context, bookingNumber string) ([]Entry, error) {
	const q = `
SELECT id::text, booking_number, kind, summary, actor, occurred_at, COALESCE(data, '{}'::jsonb)
FROM booking_activity
WHERE booking_number = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := r.db.Query(ctx, q, bookingNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var data json.RawMessage
		if err := rows.Scan(&e.ID, &e.BookingNumber, &e.Kind, &e.Summary, &e.Actor, &e.OccurredAt, &data); err != nil {
			return nil, err
		}
		e.Data = data
		out = append(out, e)
	}
	return out, rows.Err()
}

func insert(ctx context.Context, q execer, e Entry) error {
	var s *string
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encode activity data: %w", err)
		}
		str := string(b)
		s = &str
	}
	const stmt = `
INSERT INTO booking_activity (booking_number, kind, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := q.Exec(ctx, stmt, e.BookingNumber, string(e.Kind), e.Summary, e.Actor, e.OccurredAt, s)
	return err
}
