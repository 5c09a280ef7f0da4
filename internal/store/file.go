// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/textcompile/pkg/types"
)

// FileStore keeps each entry in <dir>/<key>.json as an indented JSON
// object.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the entry for key.
func (s *FileStore) Get(ctx context.Context, key string) (map[string]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry := make(map[string]types.Record)
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return entry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path(key), err)
	}
	if err := types.DecodeJSON(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path(key), err)
	}
	return entry, nil
}

// Put writes the entry to a temporary file and renames it over the old one,
// so a reader never sees a partial file.
func (s *FileStore) Put(ctx context.Context, key string, entry map[string]types.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return fmt.Errorf("encoding entry %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("renaming to %s: %w", s.Path(key), err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
