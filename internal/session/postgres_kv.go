package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const createSessionTable = `CREATE TABLE IF NOT EXISTS client_session (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(ctx context.Context, dsn string) (*PostgresKV, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres kv: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres kv: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSessionTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres kv: migrate: %w", err)
	}
	return &PostgresKV{db: db}, nil
}

// Put upserts all pairs in one transaction.
func (p *PostgresKV) Put(ctx context.Context, pairs map[string]string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres kv: begin: %w", err)
	}
	defer tx.Rollback()
	for k, v := range pairs {
		_, err := tx.ExecContext(ctx, `INSERT INTO client_session(key, value, updated_at) VALUES($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, k, v)
		if err != nil {
			return fmt.Errorf("postgres kv: upsert %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres kv: commit: %w", err)
	}
	return nil
}

func (p *PostgresKV) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := p.db.QueryContext(ctx, `SELECT key, value FROM client_session WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("postgres kv: select: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("postgres kv: scan: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (p *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM client_session WHERE key = ANY($1)`, pq.Array(keys)); err != nil {
		return fmt.Errorf("postgres kv: delete: %w", err)
	}
	return nil
}

func (p *PostgresKV) Close() error { return p.db.Close() }
