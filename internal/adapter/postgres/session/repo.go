// Package session stores session slots in PostgreSQL. Each (session, slot)
// pair is one JSONB row. Every write pushes expires_at forward on all live
// rows of the session, so a record expires as a whole.
package session

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/learnify-backend/internal/adapter/postgres"
)

const table = "session_slots"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo provides session slot persistence backed by PostgreSQL.
type Repo struct {
	pool  *pgxpool.Pool
	tx    txManager
	ttl   time.Duration
	nowFn func() time.Time
}

// New creates a new slot repository. Sessions expire ttl after their last write.
func New(pool *pgxpool.Pool, tx txManager, ttl time.Duration) *Repo {
	return &Repo{pool: pool, tx: tx, ttl: ttl, nowFn: time.Now}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the payload of a live slot or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, sessionID uuid.UUID, slot string) ([]byte, error) {
	query, args, err := psql.
		Select("payload").
		From(table).
		Where(sq.Eq{"session_id": sessionID, "slot": slot}).
		Where(sq.Gt{"expires_at": r.nowFn()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get slot query: %w", err)
	}

	var payload []byte
	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&payload)
	if err != nil {
		return nil, postgres.MapError(err, "slot", slotKey(sessionID, slot))
	}
	return payload, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Put upserts one slot and refreshes the expiry of the session's other slots
// in the same transaction.
func (r *Repo) Put(ctx context.Context, sessionID uuid.UUID, slot string, payload []byte) error {
	return r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return r.upsert(txCtx, sessionID, map[string][]byte{slot: payload})
	})
}

// Replace deletes every slot of the session and writes slots in the same
// transaction.
func (r *Repo) Replace(ctx context.Context, sessionID uuid.UUID, slots map[string][]byte) error {
	return r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := r.Clear(txCtx, sessionID); err != nil {
			return err
		}
		return r.upsert(txCtx, sessionID, slots)
	})
}

// Delete removes one slot. Deleting a missing slot is not an error.
func (r *Repo) Delete(ctx context.Context, sessionID uuid.UUID, slot string) error {
	query, args, err := psql.
		Delete(table).
		Where(sq.Eq{"session_id": sessionID, "slot": slot}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete slot query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "slot", slotKey(sessionID, slot))
	}
	return nil
}

// Clear removes every slot of the session with a single statement.
func (r *Repo) Clear(ctx context.Context, sessionID uuid.UUID) error {
	query, args, err := psql.
		Delete(table).
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear session query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "session", sessionID.String())
	}
	return nil
}

// DeleteExpired removes expired slots and returns how many rows were deleted.
func (r *Repo) DeleteExpired(ctx context.Context) (int, error) {
	query, args, err := psql.
		Delete(table).
		Where(sq.LtOrEq{"expires_at": r.nowFn()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired slots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) upsert(ctx context.Context, sessionID uuid.UUID, slots map[string][]byte) error {
	if len(slots) == 0 {
		return nil
	}

	now := r.nowFn()
	expiresAt := now.Add(r.ttl)

	b := psql.
		Insert(table).
		Columns("session_id", "slot", "payload", "updated_at", "expires_at")
	for slot, payload := range slots {
		b = b.Values(sessionID, slot, string(payload), now, expiresAt)
	}
	query, args, err := b.
		Suffix(`ON CONFLICT (session_id, slot) DO UPDATE
			SET payload = EXCLUDED.payload,
			    updated_at = EXCLUDED.updated_at,
			    expires_at = EXCLUDED.expires_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert slot query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "session", sessionID.String())
	}
	return r.refresh(ctx, sessionID, now, expiresAt)
}

// refresh extends the live rows of a session. Rows that already expired stay
// expired.
func (r *Repo) refresh(ctx context.Context, sessionID uuid.UUID, now, expiresAt time.Time) error {
	query, args, err := psql.
		Update(table).
		Set("expires_at", expiresAt).
		Where(sq.Eq{"session_id": sessionID}).
		Where(sq.Gt{"expires_at": now}).
		Where(sq.Lt{"expires_at": expiresAt}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build refresh session query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "session", sessionID.String())
	}
	return nil
}

func slotKey(sessionID uuid.UUID, slot string) string {
	return sessionID.String() + "/" + slot
}
