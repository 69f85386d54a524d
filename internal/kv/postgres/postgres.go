// Package postgres implements the kv.Engine contract over PostgreSQL
// using the pgx stdlib driver, for deployments where several application
// processes share one store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key   BYTEA PRIMARY KEY,
	value BYTEA NOT NULL
);
`

// Engine stores entries in a single BYTEA-keyed table. Postgres compares
// BYTEA byte-wise, matching the order the tuple encoding requires.
type Engine struct {
	db *sql.DB
}

// Open connects using the pgx stdlib driver, verifies connectivity and
// prepares the schema.
func Open(dsn string) (*Engine, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Engine{db: db}, nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sql.DB) (*Engine, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Engine{db: db}, nil
}

func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := e.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return value, nil
}

func (e *Engine) Set(ctx context.Context, key, value []byte) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1,$2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (e *Engine) SetIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	res, err := e.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1,$2)
		ON CONFLICT (key) DO NOTHING
	`, key, value)
	if err != nil {
		return false, fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e *Engine) Delete(ctx context.Context, key []byte) error {
	if _, err := e.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=$1`, key); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (e *Engine) CompareAndDelete(ctx context.Context, key, expect []byte) (bool, error) {
	res, err := e.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=$1 AND value=$2`, key, expect)
	if err != nil {
		return false, fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e *Engine) Scan(ctx context.Context, prefix []byte, opts kv.ScanOptions) ([]kv.Pair, error) {
	query := `SELECT key, value FROM kv_entries WHERE 1=1`
	var args []interface{}
	arg := 1
	// an empty prefix scans the whole keyspace; binding it would compare
	// against NULL and match nothing
	if len(prefix) > 0 {
		query += fmt.Sprintf(` AND key >= $%d`, arg)
		args = append(args, prefix)
		arg++
		if end := kv.PrefixEnd(prefix); end != nil {
			query += fmt.Sprintf(` AND key < $%d`, arg)
			args = append(args, end)
			arg++
		}
	}
	if opts.After != nil {
		query += fmt.Sprintf(` AND key > $%d`, arg)
		args = append(args, opts.After)
	}
	query += ` ORDER BY key ASC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var pairs []kv.Pair
	for rows.Next() {
		var p kv.Pair
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (e *Engine) Close() error { return e.db.Close() }

// HealthPing implements health.HealthPinger.
func (e *Engine) HealthPing(ctx context.Context) error {
	return e.db.PingContext(ctx)
}
