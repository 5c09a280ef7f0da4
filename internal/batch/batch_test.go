// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/textcompile/pkg/types"
)

// fixture maps filenames to extracted text; a file listed in errs fails.
type fixture struct {
	texts map[string]string
	errs  map[string]error
}

func (f fixture) extract(_ context.Context, file types.SourceFile) (string, error) {
	if err := f.errs[file.Name]; err != nil {
		return "", err
	}
	return f.texts[file.Name], nil
}

// collector records dispatched batches.
type collector struct {
	batches []types.Batch
}

func (c *collector) dispatch(_ context.Context, b types.Batch) error {
	c.batches = append(c.batches, b)
	return nil
}

func (c *collector) files() [][]string {
	out := make([][]string, len(c.batches))
	for i, b := range c.batches {
		out[i] = b.Files
	}
	return out
}

func sourceFiles(names ...string) []types.SourceFile {
	out := make([]types.SourceFile, len(names))
	for i, n := range names {
		out[i] = types.SourceFile{Name: n, Ordinal: i + 1}
	}
	return out
}

func TestPack_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		lengths  []int
		maxChars int
		want     [][]string
		oversize []bool
	}{
		{
			name:     "flush before overflow then fill exactly",
			lengths:  []int{1000, 2500, 500},
			maxChars: 3000,
			want:     [][]string{{"001"}, {"002", "003"}},
			oversize: []bool{false, false},
		},
		{
			name:     "single oversize file",
			lengths:  []int{5000},
			maxChars: 3000,
			want:     [][]string{{"001"}},
			oversize: []bool{true},
		},
		{
			name:     "oversize in the middle flushes the open batch",
			lengths:  []int{800, 700, 4000, 100, 200},
			maxChars: 3000,
			want:     [][]string{{"001", "002"}, {"003"}, {"004", "005"}},
			oversize: []bool{false, true, false},
		},
		{
			name:     "everything fits in one batch",
			lengths:  []int{10, 20, 30},
			maxChars: 3000,
			want:     [][]string{{"001", "002", "003"}},
			oversize: []bool{false},
		},
		{
			name:     "file exactly at budget is not oversize",
			lengths:  []int{3000, 1},
			maxChars: 3000,
			want:     [][]string{{"001"}, {"002"}},
			oversize: []bool{false, false},
		},
		{
			name:     "empty text still accounted for",
			lengths:  []int{0, 0},
			maxChars: 3000,
			want:     [][]string{{"001", "002"}},
			oversize: []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := fixture{texts: map[string]string{}}
			var names []string
			for i, n := range tt.lengths {
				name := fmt.Sprintf("%03d", i+1)
				names = append(names, name)
				fx.texts[name] = strings.Repeat("x", n)
			}

			var c collector
			summary, err := NewPacker(tt.maxChars, nil).Pack(context.Background(), sourceFiles(names...), fx.extract, c.dispatch)
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.files())
			for i, b := range c.batches {
				assert.Equal(t, tt.oversize[i], b.Oversize, "batch %d", i)
			}
			assert.Equal(t, len(tt.want), summary.Batches)
			assert.Equal(t, len(tt.lengths), summary.Files)
		})
	}
}

func TestPack_EmptyInput(t *testing.T) {
	var c collector
	summary, err := NewPacker(3000, nil).Pack(context.Background(), nil, fixture{}.extract, c.dispatch)
	require.NoError(t, err)
	assert.Empty(t, c.batches)
	assert.Equal(t, PackSummary{}, summary)
}

func TestPack_TextJoinsFragments(t *testing.T) {
	fx := fixture{texts: map[string]string{"a.png": "first", "b.png": "second"}}
	var c collector
	_, err := NewPacker(100, nil).Pack(context.Background(), sourceFiles("a.png", "b.png"), fx.extract, c.dispatch)
	require.NoError(t, err)

	require.Len(t, c.batches, 1)
	assert.Equal(t, "first\n\nsecond", c.batches[0].Text())
	assert.Equal(t, 11, c.batches[0].Chars)
}

func TestPack_CountsCharactersNotBytes(t *testing.T) {
	// Four two-byte runes fit a budget of four characters.
	fx := fixture{texts: map[string]string{"a": "ñññ", "b": "é"}}
	var c collector
	_, err := NewPacker(4, nil).Pack(context.Background(), sourceFiles("a", "b"), fx.extract, c.dispatch)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, c.files())
}

func TestPack_ExtractionFailureSkipsFile(t *testing.T) {
	fx := fixture{
		texts: map[string]string{"001": "aaa", "003": "ccc"},
		errs:  map[string]error{"002": errors.New("cannot open")},
	}
	var c collector
	var log strings.Builder
	summary, err := NewPacker(3000, &log).Pack(context.Background(), sourceFiles("001", "002", "003"), fx.extract, c.dispatch)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"001", "003"}}, c.files())
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "002", summary.Failed[0].File)
	assert.Contains(t, summary.Failed[0].Err, "cannot open")
	assert.Contains(t, log.String(), "failed  002")
}

func TestPack_DispatchErrorStops(t *testing.T) {
	fx := fixture{texts: map[string]string{"001": "aaaa", "002": "bbbb", "003": "cccc"}}
	calls := 0
	dispatch := func(context.Context, types.Batch) error {
		calls++
		return errors.New("disk full")
	}
	_, err := NewPacker(5, nil).Pack(context.Background(), sourceFiles("001", "002", "003"), fx.extract, dispatch)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPack_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c collector
	_, err := NewPacker(3000, nil).Pack(ctx, sourceFiles("001"), fixture{}.extract, c.dispatch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.batches)
}

func TestNewPacker_DefaultBudget(t *testing.T) {
	assert.Equal(t, types.DefaultMaxChars, NewPacker(0, nil).MaxChars())
	assert.Equal(t, 10, NewPacker(10, nil).MaxChars())
}

// TestPack_Invariants checks the budget bound and exact file coverage over
// random inputs.
func TestPack_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const maxChars = 3000

	for round := 0; round < 200; round++ {
		n := rng.Intn(25)
		fx := fixture{texts: map[string]string{}}
		var names []string
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%03d.png", i+1)
			names = append(names, name)
			fx.texts[name] = strings.Repeat("y", rng.Intn(2*maxChars))
		}

		var c collector
		summary, err := NewPacker(maxChars, nil).Pack(context.Background(), sourceFiles(names...), fx.extract, c.dispatch)
		require.NoError(t, err)

		var seen []string
		for _, b := range c.batches {
			require.NotEmpty(t, b.Files)
			if b.Chars > maxChars {
				require.True(t, b.Oversize, "round %d: batch over budget without oversize flag", round)
				require.Len(t, b.Files, 1)
				require.Greater(t, len(fx.texts[b.Files[0]]), maxChars)
			}
			seen = append(seen, b.Files...)
		}
		if n == 0 {
			assert.Empty(t, c.batches)
			continue
		}
		assert.Equal(t, names, seen, "round %d", round)
		assert.Equal(t, len(c.batches), summary.Batches)
	}
}
