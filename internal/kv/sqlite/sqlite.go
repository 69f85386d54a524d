// Package sqlite implements the kv.Engine contract over an embedded
// SQLite database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;
`

// Engine stores entries in a single two-column table. BLOB keys compare
// with memcmp in SQLite, so the primary-key order matches the byte order
// the tuple encoding relies on.
type Engine struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Engine, error) {
	dsn := path
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// the pool would otherwise hand out fresh empty databases
		db.SetMaxOpenConns(1)
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

// NewWithDB wraps an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) (*Engine, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Engine{db: db}, nil
}

func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := e.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=?`, key).Scan(&value)
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
		INSERT INTO kv_entries (key, value) VALUES (?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (e *Engine) SetIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	res, err := e.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES (?,?)
		ON CONFLICT(key) DO NOTHING
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
	if _, err := e.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=?`, key); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (e *Engine) CompareAndDelete(ctx context.Context, key, expect []byte) (bool, error) {
	res, err := e.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=? AND value=?`, key, expect)
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
	// an empty prefix scans the whole keyspace; binding it would compare
	// against NULL and match nothing
	if len(prefix) > 0 {
		query += ` AND key >= ?`
		args = append(args, prefix)
		if end := kv.PrefixEnd(prefix); end != nil {
			query += ` AND key < ?`
			args = append(args, end)
		}
	}
	if opts.After != nil {
		query += ` AND key > ?`
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
