// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one compile run: files are extracted and packed
// into batches, each batch is transformed by the model, and the records in
// the output are filed into the per-date store.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/textcompile/internal/batch"
	"github.com/pdiddy/textcompile/internal/normalize"
	"github.com/pdiddy/textcompile/internal/store"
	"github.com/pdiddy/textcompile/pkg/types"
)

// Failure stages reported in a Summary.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageNormalize = "normalize"
	StageStore     = "store"
)

// Extractor returns the text of one file.
type Extractor interface {
	Extract(ctx context.Context, dir, filename string, kind types.SourceKind) (string, error)
}

// Transformer turns batch text into raw model output. It never fails; a
// failed call yields an empty output at zero cost.
type Transformer interface {
	Transform(ctx context.Context, text string) types.TransformResult
}

// Failure is one non-fatal problem met during a run.
type Failure struct {
	Stage   string `yaml:"stage"`
	Subject string `yaml:"subject"`
	Error   string `yaml:"error"`
}

// Summary holds the counts and cost of a run.
type Summary struct {
	RunID            string        `yaml:"run_id"`
	Started          time.Time     `yaml:"started"`
	Elapsed          time.Duration `yaml:"elapsed"`
	Files            int           `yaml:"files"`
	Batches          int           `yaml:"batches"`
	Oversize         int           `yaml:"oversize"`
	Skipped          int           `yaml:"skipped"`
	Calls            int           `yaml:"calls"`
	PromptTokens     int           `yaml:"prompt_tokens"`
	CompletionTokens int           `yaml:"completion_tokens"`
	Records          int           `yaml:"records"`
	Cost             float64       `yaml:"cost"`
	Failures         []Failure     `yaml:"failures,omitempty"`
}

func (s *Summary) fail(stage, subject string, err error) {
	s.Failures = append(s.Failures, Failure{Stage: stage, Subject: subject, Error: err.Error()})
}

// Merge adds the counts of parts into one Summary under runID.
func Merge(runID string, parts ...Summary) Summary {
	out := Summary{RunID: runID}
	for _, p := range parts {
		if out.Started.IsZero() || (!p.Started.IsZero() && p.Started.Before(out.Started)) {
			out.Started = p.Started
		}
		out.Elapsed = max(out.Elapsed, p.Elapsed)
		out.Files += p.Files
		out.Batches += p.Batches
		out.Oversize += p.Oversize
		out.Skipped += p.Skipped
		out.Calls += p.Calls
		out.PromptTokens += p.PromptTokens
		out.CompletionTokens += p.CompletionTokens
		out.Records += p.Records
		out.Cost += p.Cost
		out.Failures = append(out.Failures, p.Failures...)
	}
	return out
}

// Driver wires the stages of a run together. A Driver may be shared by
// concurrent runs as long as its Extractor and Transformer are safe for
// concurrent use; the store Writer already is.
type Driver struct {
	// InputDir holds the files named in Run.
	InputDir string

	Kind        types.SourceKind
	Extractor   Extractor
	Packer      *batch.Packer
	Transformer Transformer
	Writer      *store.Writer

	// RunID tags the Summary.
	RunID string

	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Run processes files in order and prints the total cost. Per-file,
// per-batch and per-record failures are collected in the Summary; only
// context cancellation ends the run early.
func (d *Driver) Run(ctx context.Context, files []types.SourceFile) (Summary, error) {
	sum, err := d.run(ctx, files)
	fmt.Fprintf(d.out(), "Total cost for processing: $%.2f\n", sum.Cost)
	return sum, err
}

func (d *Driver) run(ctx context.Context, files []types.SourceFile) (Summary, error) {
	sum := Summary{RunID: d.RunID, Started: time.Now()}

	extract := func(ctx context.Context, f types.SourceFile) (string, error) {
		text, err := d.Extractor.Extract(ctx, d.InputDir, f.Name, d.Kind)
		if err != nil {
			sum.fail(StageExtract, f.Name, err)
		}
		return text, err
	}
	dispatch := func(ctx context.Context, b types.Batch) error {
		d.dispatch(ctx, b, &sum)
		return ctx.Err()
	}

	packed, err := d.Packer.Pack(ctx, files, extract, dispatch)
	sum.Files = packed.Files
	sum.Batches = packed.Batches
	sum.Oversize = packed.Oversize
	sum.Elapsed = time.Since(sum.Started)
	return sum, err
}

// dispatch sends one batch to the model and stores what comes back.
func (d *Driver) dispatch(ctx context.Context, b types.Batch, sum *Summary) {
	w := d.out()
	subject := batchName(b)

	text := b.Text()
	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(w, "skipped %s: no text\n", subject)
		sum.Skipped++
		return
	}

	fmt.Fprintf(w, "batch   %s (%d files, %d chars)\n", subject, len(b.Files), b.Chars)
	res := d.Transformer.Transform(ctx, text)
	sum.Calls++
	sum.Cost += res.Cost
	sum.PromptTokens += res.PromptTokens
	sum.CompletionTokens += res.CompletionTokens

	if strings.TrimSpace(res.Output) == "" {
		sum.fail(StageTransform, subject, fmt.Errorf("no output"))
		return
	}

	for _, frag := range normalize.Normalize(res.Output) {
		if frag.Err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", subject, frag.Err)
			sum.fail(StageNormalize, fmt.Sprintf("%s fragment %d", subject, frag.Index), frag.Err)
			continue
		}
		for _, rec := range frag.Records {
			key, subKey, err := d.Writer.Store(ctx, rec)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", subject, err)
				sum.fail(StageStore, subject, err)
				continue
			}
			sum.Records++
			fmt.Fprintf(w, "stored  %s %s\n", key, subKey)
		}
	}
}

func (d *Driver) out() io.Writer {
	if d.Out == nil {
		return io.Discard
	}
	return d.Out
}

func batchName(b types.Batch) string {
	switch len(b.Files) {
	case 0:
		return "(empty)"
	case 1:
		return b.Files[0]
	default:
		return b.Files[0] + ".." + b.Files[len(b.Files)-1]
	}
}

// SyncWriter serialises writes to w so progress lines from concurrent
// partitions do not interleave mid-line.
func SyncWriter(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
