// Package localstore is the per-browser convenience cache: JSON values keyed
// by client id and item key, backed by SQLite. Last write wins; entries never
// expire.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/finboard/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	client     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (client, key)
);
`

// Well-known keys.
const (
	PrefixBond   = "bond"
	KeySessionID = "session_id"
)

// Key joins a feature prefix and an item id ("bond_42").
func Key(prefix, id string) string {
	return prefix + "_" + id
}

// DB wraps a sql.DB with cache operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("localstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("localstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Put stores v as JSON under (client, key), replacing any previous value.
func (db *DB) Put(ctx context.Context, client, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}
	return db.PutRaw(ctx, client, key, string(data))
}

// PutRaw stores an already serialised value. It is also how tests plant
// corrupt entries.
func (db *DB) PutRaw(ctx context.Context, client, key, value string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO entries (client, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client, key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, client, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("localstore: put %s: %w", key, err)
	}
	return nil
}

// PutMany stores every value in one transaction.
func (db *DB) PutMany(ctx context.Context, client string, values map[string]any) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("localstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (client, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client, key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("localstore: prepare put: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("localstore: encode %s: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, client, key, string(data), now); err != nil {
			return fmt.Errorf("localstore: put %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Get decodes the value stored under (client, key) into out. A missing or
// unparsable entry yields apperr.ErrLocalData.
func (db *DB) Get(ctx context.Context, client, key string, out any) error {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE client = ? AND key = ?`, client, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperr.ErrLocalData, key)
	}
	if err != nil {
		return fmt.Errorf("localstore: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrLocalData, key, err)
	}
	return nil
}

// Forget removes every entry of client.
func (db *DB) Forget(ctx context.Context, client string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM entries WHERE client = ?`, client); err != nil {
		return fmt.Errorf("localstore: forget client: %w", err)
	}
	return nil
}
