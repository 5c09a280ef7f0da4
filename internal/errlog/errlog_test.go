// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package errlog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure_OneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "run-1")

	l.Failure("completion failed", errors.New("status 500\nbody"), "batch", 3)
	l.Failure("completion failed", errors.New("timeout"), "batch", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run=run-1")
	assert.Contains(t, lines[0], "batch=3")
	assert.Contains(t, lines[0], `msg="completion failed"`)
	assert.Contains(t, lines[1], "error=timeout")
}

func TestOpen_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.txt")

	for _, id := range []string{"first", "second"} {
		l, err := Open(path, id)
		require.NoError(t, err)
		l.Failure("completion failed", errors.New("boom"))
		require.NoError(t, l.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run=first")
	assert.Contains(t, lines[1], "run=second")
}

func TestNilAndDiscard(t *testing.T) {
	var l *Log
	l.Failure("ignored", errors.New("x"))
	assert.NoError(t, l.Close())

	d := Discard()
	d.Failure("ignored", errors.New("x"))
	assert.NoError(t, d.Close())
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "log.txt"), "")
	assert.Error(t, err)
}
