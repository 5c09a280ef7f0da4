// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists records into per-date entries. Each entry maps a
// time of day to the record stamped with it; entries are created on first
// write, merged on later writes, and never deleted.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/textcompile/pkg/types"
)

const (
	// TimestampField is the record field that carries the date-time.
	TimestampField = "date"

	// TimestampLayout is the layout of TimestampField.
	TimestampLayout = "2006-01-02T15:04:05"

	keyLayout    = "02012006"
	subKeyLayout = "15:04:05"
)

// ErrMissingTimestamp is returned for records whose timestamp field is
// absent or does not parse.
var ErrMissingTimestamp = errors.New("missing or invalid timestamp")

// KeyedStore reads and writes entries by key. Implementations are not
// required to synchronise concurrent writers: two read-modify-write cycles
// on the same key from different processes can lose an update.
type KeyedStore interface {
	// Get returns the entry for key, or an empty map when none exists.
	Get(ctx context.Context, key string) (map[string]types.Record, error)

	// Put replaces the entry for key.
	Put(ctx context.Context, key string, entry map[string]types.Record) error

	Close() error
}

// Open returns the store selected by cfg.Backend, rooted at cfg.Dir.
func Open(cfg types.StoreConfig) (KeyedStore, error) {
	switch cfg.Backend {
	case "", types.StoreJSON:
		return NewFileStore(cfg.Dir), nil
	case types.StoreSQLite:
		return NewSQLiteStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q (use json or sqlite)", cfg.Backend)
	}
}

// Key returns the entry key for t (DDMMYYYY).
func Key(t time.Time) string { return t.Format(keyLayout) }

// SubKey returns the position of t inside its entry (HH:MM:SS).
func SubKey(t time.Time) string { return t.Format(subKeyLayout) }

// Timestamp reads and parses the timestamp field of rec.
func Timestamp(rec types.Record) (time.Time, error) {
	v, ok := rec[TimestampField]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: no %q field", ErrMissingTimestamp, TimestampField)
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q is %T", ErrMissingTimestamp, TimestampField, v)
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMissingTimestamp, err)
	}
	return t, nil
}

// Writer files records under the entry for their date. Two records with the
// same timestamp collide and the later one wins.
type Writer struct {
	mu    sync.Mutex
	store KeyedStore
}

// NewWriter returns a Writer over s.
func NewWriter(s KeyedStore) *Writer {
	return &Writer{store: s}
}

// Store writes rec and returns the key and sub-key it was filed under. The
// Writer serialises its own read-modify-write cycles; other processes
// writing the same store are not coordinated with.
func (w *Writer) Store(ctx context.Context, rec types.Record) (key, subKey string, err error) {
	t, err := Timestamp(rec)
	if err != nil {
		return "", "", err
	}
	key, subKey = Key(t), SubKey(t)

	w.mu.Lock()
	defer w.mu.Unlock()

	entry, err := w.store.Get(ctx, key)
	if err != nil {
		return key, subKey, fmt.Errorf("reading entry %s: %w", key, err)
	}
	entry[subKey] = rec
	if err := w.store.Put(ctx, key, entry); err != nil {
		return key, subKey, fmt.Errorf("writing entry %s: %w", key, err)
	}
	return key, subKey, nil
}

// Entry returns the stored entry for the calendar date of day.
func (w *Writer) Entry(ctx context.Context, day time.Time) (map[string]types.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Get(ctx, Key(day))
}
