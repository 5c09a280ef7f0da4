// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/textcompile/pkg/types"
)

const dbFile = "records.db"

// SQLiteStore keeps entries as rows of (key, sub_key, record) in a SQLite
// database under the output directory.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates dir/records.db and its schema.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			key TEXT NOT NULL,
			sub_key TEXT NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (key, sub_key)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns every row stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (map[string]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub_key, record FROM entries WHERE key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("querying entry %s: %w", key, err)
	}
	defer rows.Close()

	entry := make(map[string]types.Record)
	for rows.Next() {
		var subKey, raw string
		if err := rows.Scan(&subKey, &raw); err != nil {
			return nil, fmt.Errorf("scanning entry %s: %w", key, err)
		}
		var rec types.Record
		if err := types.DecodeJSON([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", key, subKey, err)
		}
		entry[subKey] = rec
	}
	return entry, rows.Err()
}

// Put upserts every sub-key of entry in one transaction. Rows absent from
// entry are left in place; entries only grow.
func (s *SQLiteStore) Put(ctx context.Context, key string, entry map[string]types.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (key, sub_key, record) VALUES (?, ?, ?)
		 ON CONFLICT(key, sub_key) DO UPDATE SET record=excluded.record`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for subKey, rec := range entry {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", key, subKey, err)
		}
		if _, err := stmt.ExecContext(ctx, key, subKey, string(data)); err != nil {
			return fmt.Errorf("upserting %s %s: %w", key, subKey, err)
		}
	}

	return tx.Commit()
}
