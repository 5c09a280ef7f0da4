// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/textcompile/internal/pipeline"
)

func TestFormatReport_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "run.yaml")
	want := pipeline.Summary{
		RunID:            "run-1",
		Started:          time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		Elapsed:          1500 * time.Millisecond,
		Files:            3,
		Batches:          2,
		Oversize:         1,
		Calls:            2,
		PromptTokens:     1200,
		CompletionTokens: 300,
		Records:          4,
		Cost:             0.0018,
		Failures: []pipeline.Failure{
			{Stage: "extract", Subject: "002.png", Error: "ocr failed"},
		},
	}
	require.NoError(t, pipeline.WriteReport(path, want))

	got, err := pipeline.ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Failures, got.Failures)

	var buf bytes.Buffer
	formatReport(&buf, got)
	out := buf.String()
	assert.Contains(t, out, "Run run-1\n")
	assert.Contains(t, out, "2026-01-05T10:00:00Z (1.5s)")
	assert.Contains(t, out, "batches:  2 (1 oversize, 0 skipped)")
	assert.Contains(t, out, "tokens:   1200 prompt, 300 completion")
	assert.Contains(t, out, "cost:     $0.0018")
	assert.Contains(t, out, "1 failures:\n  [extract] 002.png: ocr failed\n")
}

func TestFormatReport_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	formatReport(&buf, pipeline.Summary{RunID: "run-2"})
	assert.NotContains(t, buf.String(), "started:")
	assert.Contains(t, buf.String(), "\nNo failures.\n")
}

func TestRunReport_MissingFile(t *testing.T) {
	err := runReport(reportCmd, []string{filepath.Join(t.TempDir(), "absent.yaml")})
	assert.ErrorContains(t, err, "reading report")
}
