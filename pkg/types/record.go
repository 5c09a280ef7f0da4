// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// BatchSeparator delimits fragments inside a batch. It is not counted
// against the batch budget.
const BatchSeparator = "\n\n"

// Batch is an ordered group of extracted fragments sent to the model in
// one call. Chars counts only the extracted text, so Text may be longer than
// Chars by one BatchSeparator between each pair of fragments.
type Batch struct {
	// Files lists the source filenames in packing order.
	Files []string `json:"files" yaml:"files"`

	// Fragments holds the extracted text of each file, parallel to Files.
	Fragments []string `json:"-" yaml:"-"`

	// Chars is the number of extracted characters across all fragments.
	Chars int `json:"chars" yaml:"chars"`

	// Oversize marks a singleton whose one file exceeds the budget.
	Oversize bool `json:"oversize,omitempty" yaml:"oversize,omitempty"`
}

// Text returns the fragments joined by BatchSeparator. Its length in runes
// is Chars plus the separators.
func (b Batch) Text() string {
	return strings.Join(b.Fragments, BatchSeparator)
}

// Empty reports whether the batch holds no files.
func (b Batch) Empty() bool {
	return len(b.Files) == 0
}

// TransformResult is the model output for one batch.
type TransformResult struct {
	// Output is the raw text returned by the model.
	Output string

	// PromptTokens and CompletionTokens are the usage reported by the API.
	PromptTokens     int
	CompletionTokens int

	// Cost is the estimated price of the call. Zero for failed calls.
	Cost float64
}

// Record is one structured item produced by the model. It must carry a
// date-time field before it can be stored.
type Record map[string]any

// DecodeJSON decodes a single JSON value from data into v. Numbers decode
// as json.Number so large integers survive a read-modify-write cycle.
// Trailing data after the value is an error.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid character after top-level value")
	}
	return nil
}
