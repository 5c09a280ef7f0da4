// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch packs extracted file text into size-bounded batches so that
// each model call carries as much text as the budget allows.
package batch

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pdiddy/textcompile/pkg/types"
)

// ExtractFunc returns the text of one source file.
type ExtractFunc func(ctx context.Context, file types.SourceFile) (string, error)

// DispatchFunc receives every finished batch, in order.
type DispatchFunc func(ctx context.Context, b types.Batch) error

// FileFailure records a file that could not be extracted.
type FileFailure struct {
	File string `json:"file" yaml:"file"`
	Err  string `json:"error" yaml:"error"`
}

// PackSummary holds counts from one packing pass.
type PackSummary struct {
	Batches  int
	Oversize int
	Files    int
	Failed   []FileFailure
}

// Packer groups fragments into batches of at most MaxChars extracted
// characters. A file whose own text exceeds the budget is dispatched alone.
type Packer struct {
	maxChars int
	w        io.Writer
}

// NewPacker returns a Packer. A non-positive maxChars selects
// types.DefaultMaxChars. Progress lines go to w.
func NewPacker(maxChars int, w io.Writer) *Packer {
	if maxChars <= 0 {
		maxChars = types.DefaultMaxChars
	}
	if w == nil {
		w = io.Discard
	}
	return &Packer{maxChars: maxChars, w: w}
}

// MaxChars returns the batch budget.
func (p *Packer) MaxChars() int { return p.maxChars }

// Pack walks files in order, extracting each and dispatching batches as the
// budget fills. A file that fails extraction is reported and skipped. Only
// an error from dispatch or a cancelled context stops the pass.
func (p *Packer) Pack(ctx context.Context, files []types.SourceFile, extract ExtractFunc, dispatch DispatchFunc) (PackSummary, error) {
	var summary PackSummary
	var open types.Batch

	flush := func(b types.Batch) error {
		summary.Batches++
		if b.Oversize {
			summary.Oversize++
		}
		return dispatch(ctx, b)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		text, err := extract(ctx, f)
		if err != nil {
			fmt.Fprintf(p.w, "failed  %s: %v\n", f.Name, err)
			summary.Failed = append(summary.Failed, FileFailure{File: f.Name, Err: err.Error()})
			continue
		}
		summary.Files++
		n := utf8.RuneCountInString(text)

		if open.Chars+n <= p.maxChars {
			open.Files = append(open.Files, f.Name)
			open.Fragments = append(open.Fragments, text)
			open.Chars += n
			continue
		}

		if !open.Empty() {
			if err := flush(open); err != nil {
				return summary, err
			}
			open = types.Batch{}
		}

		if n > p.maxChars {
			fmt.Fprintf(p.w, "oversize %s (%d chars), sending alone\n", f.Name, n)
			single := types.Batch{
				Files:     []string{f.Name},
				Fragments: []string{text},
				Chars:     n,
				Oversize:  true,
			}
			if err := flush(single); err != nil {
				return summary, err
			}
			continue
		}

		open = types.Batch{
			Files:     []string{f.Name},
			Fragments: []string{text},
			Chars:     n,
		}
	}

	if !open.Empty() {
		if err := flush(open); err != nil {
			return summary, err
		}
	}
	return summary, nil
}
