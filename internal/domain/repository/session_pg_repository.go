package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createSessionTable = `CREATE TABLE IF NOT EXISTS dashboard_sessions (
	sid        TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (sid, key)
)`

type pgSessionRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewPgSessionRepository stores session keys as rows of dashboard_sessions.
// Rows older than ttl are treated as absent.
func NewPgSessionRepository(ctx context.Context, db *sql.DB, ttl time.Duration) (SessionRepository, error) {
	if _, err := db.ExecContext(ctx, createSessionTable); err != nil {
		return nil, fmt.Errorf("creating dashboard_sessions: %w", err)
	}
	return &pgSessionRepository{db: db, ttl: ttl}, nil
}

func (r *pgSessionRepository) cutoff() time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-r.ttl)
}

func (r *pgSessionRepository) Get(ctx context.Context, sid, key string) (string, error) {
	query := `SELECT value FROM dashboard_sessions WHERE sid = $1 AND key = $2 AND updated_at > $3`
	var value string
	err := r.db.QueryRowContext(ctx, query, sid, key, r.cutoff()).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("pgSessionRepository.Get: %w", err)
	}
	return value, nil
}

func (r *pgSessionRepository) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	query := `SELECT key, value FROM dashboard_sessions WHERE sid = $1 AND updated_at > $2`
	rows, err := r.db.QueryContext(ctx, query, sid, r.cutoff())
	if err != nil {
		return nil, fmt.Errorf("pgSessionRepository.GetAll: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("pgSessionRepository.GetAll scan: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *pgSessionRepository) Set(ctx context.Context, sid string, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgSessionRepository.Set begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO dashboard_sessions (sid, key, value, updated_at) VALUES ($1, $2, $3, now())
	          ON CONFLICT (sid, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, query, sid, k, v); err != nil {
			return fmt.Errorf("pgSessionRepository.Set %s: %w", k, err)
		}
	}
	// Writing any key keeps the whole session alive.
	if _, err := tx.ExecContext(ctx, `UPDATE dashboard_sessions SET updated_at = now() WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("pgSessionRepository.Set touch: %w", err)
	}
	return tx.Commit()
}

func (r *pgSessionRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	for _, k := range keys {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE sid = $1 AND key = $2`, sid, k); err != nil {
			return fmt.Errorf("pgSessionRepository.Delete: %w", err)
		}
	}
	return nil
}

func (r *pgSessionRepository) Clear(ctx context.Context, sid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("pgSessionRepository.Clear: %w", err)
	}
	return nil
}
