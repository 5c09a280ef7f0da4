// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source discovers scanned input files, applies filename range
// selection, and splits the selection into partitions.
package source

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/textcompile/pkg/types"
)

// List returns the files in dir whose extension matches kind, sorted
// lexicographically by name.
func List(dir string, kind types.SourceKind) ([]types.SourceFile, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("listing %s: unsupported file kind %q", dir, kind)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	suffix := "." + kind.Extension()
	var files []types.SourceFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, types.SourceFile{
			Name:    entry.Name(),
			Ordinal: ordinal(entry.Name(), suffix),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ordinal parses the numeric stem of a name like "007.png".
func ordinal(name, suffix string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(name, suffix))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// NormalizeBound turns a range endpoint into a filename comparable with the
// sorted listing. A bare number becomes the zero-padded three-digit form
// ("7" -> "007.png"); anything else is returned unchanged.
func NormalizeBound(bound string, kind types.SourceKind) string {
	bound = strings.TrimSpace(bound)
	if bound == "" {
		return ""
	}
	n, err := strconv.Atoi(bound)
	if err != nil || n < 0 {
		return bound
	}
	return fmt.Sprintf("%03d.%s", n, kind.Extension())
}

// Select keeps the files whose names fall in the inclusive range
// [start, end]. Empty endpoints default to the first and last file.
func Select(files []types.SourceFile, start, end string, kind types.SourceKind) []types.SourceFile {
	if len(files) == 0 {
		return nil
	}

	lo := NormalizeBound(start, kind)
	if lo == "" {
		lo = files[0].Name
	}
	hi := NormalizeBound(end, kind)
	if hi == "" {
		hi = files[len(files)-1].Name
	}

	var out []types.SourceFile
	for _, f := range files {
		if f.Name >= lo && f.Name <= hi {
			out = append(out, f)
		}
	}
	return out
}

// Partition splits files into at most n contiguous chunks of
// ceil(len(files)/n) files each. The chunks cover files exactly once and
// preserve order.
func Partition(files []types.SourceFile, n int) [][]types.SourceFile {
	if len(files) == 0 {
		return nil
	}
	if n <= 1 {
		return [][]types.SourceFile{files}
	}

	size := (len(files) + n - 1) / n
	var parts [][]types.SourceFile
	for i := 0; i < len(files); i += size {
		j := min(i+size, len(files))
		parts = append(parts, files[i:j])
	}
	return parts
}
