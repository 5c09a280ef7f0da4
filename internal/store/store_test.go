// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/textcompile/pkg/types"
)

func backends(t *testing.T) map[string]KeyedStore {
	t.Helper()
	sq, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]KeyedStore{
		"json":   NewFileStore(t.TempDir()),
		"sqlite": sq,
	}
}

func TestKeyAndSubKey(t *testing.T) {
	ts := time.Date(2023, time.January, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "05012023", Key(ts))
	assert.Equal(t, "10:00:00", SubKey(ts))
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		rec     types.Record
		wantErr bool
	}{
		{"valid", types.Record{"date": "2023-01-05T10:00:00"}, false},
		{"absent", types.Record{"subject": "x"}, true},
		{"not a string", types.Record{"date": float64(20230105)}, true},
		{"wrong layout", types.Record{"date": "05/01/2023 10:00"}, true},
		{"date only", types.Record{"date": "2023-01-05"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Timestamp(tt.rec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingTimestamp)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWriter_MergesAndOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			w := NewWriter(s)

			key, sub, err := w.Store(ctx, types.Record{"date": "2023-01-05T10:00:00", "n": "first"})
			require.NoError(t, err)
			assert.Equal(t, "05012023", key)
			assert.Equal(t, "10:00:00", sub)

			_, _, err = w.Store(ctx, types.Record{"date": "2023-01-05T11:30:00", "n": "second"})
			require.NoError(t, err)
			_, _, err = w.Store(ctx, types.Record{"date": "2023-01-06T08:00:00", "n": "other day"})
			require.NoError(t, err)

			entry, err := w.Entry(ctx, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.Len(t, entry, 2)
			assert.Equal(t, "first", entry["10:00:00"]["n"])
			assert.Equal(t, "second", entry["11:30:00"]["n"])

			// Same timestamp: last write wins.
			_, _, err = w.Store(ctx, types.Record{"date": "2023-01-05T10:00:00", "n": "replaced"})
			require.NoError(t, err)
			entry, err = w.Entry(ctx, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Len(t, entry, 2)
			assert.Equal(t, "replaced", entry["10:00:00"]["n"])
		})
	}
}

func TestWriter_MissingTimestamp(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(NewFileStore(dir))

	_, _, err := w.Store(context.Background(), types.Record{"subject": "no date"})
	assert.ErrorIs(t, err, ErrMissingTimestamp)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWriter_EmptyEntry(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := NewWriter(s).Entry(context.Background(), time.Now())
			require.NoError(t, err)
			assert.Empty(t, entry)
		})
	}
}

func TestWriter_ConcurrentStores(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			w := NewWriter(s)
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ts := time.Date(2023, 1, 5, 10, 0, i, 0, time.UTC).Format(TimestampLayout)
					_, _, err := w.Store(context.Background(), types.Record{"date": ts})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			entry, err := w.Entry(context.Background(), time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Len(t, entry, 20)
		})
	}
}

func TestFileStore_Format(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	w := NewWriter(s)

	_, _, err := w.Store(context.Background(), types.Record{"date": "2023-01-05T10:00:00", "body": "a < b & c"})
	require.NoError(t, err)

	path := filepath.Join(dir, "05012023.json")
	assert.Equal(t, path, s.Path("05012023"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n    \"10:00:00\": {\n        \"body\": \"a < b & c\"")

	var parsed map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "2023-01-05T10:00:00", parsed["10:00:00"]["date"])

	// No temp files are left behind.
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.False(t, strings.HasSuffix(files[0].Name(), ".tmp"))
}

func TestFileStore_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "05012023.json"), []byte("{not json"), 0o644))

	_, _, err := NewWriter(NewFileStore(dir)).Store(context.Background(), types.Record{"date": "2023-01-05T10:00:00"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingTimestamp)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "05012023", map[string]types.Record{
		"10:00:00": {"date": "2023-01-05T10:00:00", "to": []any{"a", "b"}},
	}))
	require.NoError(t, s.Close())

	assert.FileExists(t, filepath.Join(dir, dbFile))

	s, err = NewSQLiteStore(dir)
	require.NoError(t, err)
	defer s.Close()

	entry, err := s.Get(ctx, "05012023")
	require.NoError(t, err)
	require.Contains(t, entry, "10:00:00")
	assert.Equal(t, []any{"a", "b"}, entry["10:00:00"]["to"])
}

func TestStore_LargeNumbersRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "05012023", map[string]types.Record{
				"10:00:00": {"id": json.Number("12345678901234567890"), "n": json.Number("2.50")},
			}))
			entry, err := s.Get(ctx, "05012023")
			require.NoError(t, err)
			assert.Equal(t, json.Number("12345678901234567890"), entry["10:00:00"]["id"])
			assert.Equal(t, json.Number("2.50"), entry["10:00:00"]["n"])
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(types.StoreConfig{Backend: types.StoreSQLite, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(types.StoreConfig{Backend: "redis", Dir: dir})
	assert.Error(t, err)
}
