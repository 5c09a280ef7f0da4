// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw model output into records. The output is
// expected to hold JSON fragments separated by blank lines; common
// malformations are repaired before parsing and fragments that still fail
// are reported and skipped.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/textcompile/pkg/types"
)

var (
	// ErrMalformedFragment is set on fragments that do not parse after repair.
	ErrMalformedFragment = errors.New("malformed fragment")

	// ErrUnexpectedShape is set on fragments that parse to something other
	// than an object or a list of objects.
	ErrUnexpectedShape = errors.New("unexpected fragment shape")
)

// Kind classifies a parsed fragment.
type Kind int

const (
	// Malformed fragments did not parse.
	Malformed Kind = iota
	// SingleRecord fragments parsed to one object.
	SingleRecord
	// RecordList fragments parsed to an array of objects.
	RecordList
	// Unexpected fragments parsed to any other value.
	Unexpected
)

func (k Kind) String() string {
	switch k {
	case SingleRecord:
		return "single"
	case RecordList:
		return "list"
	case Unexpected:
		return "unexpected"
	default:
		return "malformed"
	}
}

// Fragment is one blank-line-separated chunk of model output.
type Fragment struct {
	// Index is the position of the fragment among the non-blank fragments.
	Index int

	// Raw is the fragment as returned by the model.
	Raw string

	// Repaired is the text that was parsed.
	Repaired string

	Kind Kind

	// Records holds one record for SingleRecord and zero or more for
	// RecordList.
	Records []types.Record

	// Err is set for Malformed and Unexpected fragments.
	Err error
}

// blankLine splits output on lines that are empty or whitespace only.
var blankLine = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// Split returns the non-blank fragments of raw.
func Split(raw string) []string {
	var out []string
	for _, part := range blankLine.Split(raw, -1) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// stripNewlines removes line breaks and surrounding space.
func stripNewlines(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", "", "\n", "").Replace(s))
}

// Repair applies the structural fixes, in order: strip newlines, separate
// adjacent objects, unwrap an object-wrapped array, and add a missing
// opening or closing bracket. The trailing "]}" of a wrapped array is only
// dropped when the leading "{[" was, so an object ending in an array field
// keeps its closing brace.
func Repair(s string) string {
	s = stripNewlines(s)
	s = strings.ReplaceAll(s, "}{", "},{")

	if strings.HasPrefix(s, "{[") {
		s = s[1:]
		if strings.HasSuffix(s, "]}") {
			s = s[:len(s)-1]
		}
	}

	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		s = "{" + s
	}
	if !strings.HasSuffix(s, "}") && !strings.HasSuffix(s, "]") {
		s += "}"
	}
	return s
}

// Parse repairs and classifies one fragment. Text that is already valid
// JSON once newlines are stripped is parsed as is; otherwise the repairs
// apply, and a repaired fragment of the form {..},{..} is read as a list.
// Numbers decode as json.Number.
func Parse(index int, raw string) Fragment {
	f := Fragment{Index: index, Raw: raw, Repaired: stripNewlines(raw)}

	var v any
	err := types.DecodeJSON([]byte(f.Repaired), &v)
	if err != nil {
		f.Repaired = Repair(raw)
		err = types.DecodeJSON([]byte(f.Repaired), &v)
	}
	if err != nil && strings.HasPrefix(f.Repaired, "{") {
		if types.DecodeJSON([]byte("["+f.Repaired+"]"), &v) == nil {
			err = nil
		}
	}
	if err != nil {
		f.Err = fmt.Errorf("%w %d: %w", ErrMalformedFragment, index, err)
		return f
	}

	switch t := v.(type) {
	case map[string]any:
		f.Kind = SingleRecord
		f.Records = []types.Record{t}
	case []any:
		records := make([]types.Record, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				f.Kind = Unexpected
				f.Err = fmt.Errorf("%w %d: list element is %T", ErrUnexpectedShape, index, item)
				return f
			}
			records = append(records, m)
		}
		f.Kind = RecordList
		f.Records = records
	default:
		f.Kind = Unexpected
		f.Err = fmt.Errorf("%w %d: %T", ErrUnexpectedShape, index, v)
	}
	return f
}

// Normalize splits raw output into fragments and parses each one. It never
// fails; inspect Fragment.Err for the fragments that were skipped.
func Normalize(raw string) []Fragment {
	parts := Split(raw)
	out := make([]Fragment, 0, len(parts))
	for i, part := range parts {
		out = append(out, Parse(i, part))
	}
	return out
}

// Records collects the records of all parsed fragments, in order.
func Records(fragments []Fragment) []types.Record {
	var out []types.Record
	for _, f := range fragments {
		out = append(out, f.Records...)
	}
	return out
}
