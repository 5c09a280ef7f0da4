// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/textcompile/internal/source"
	"github.com/pdiddy/textcompile/pkg/types"
)

// RunPartitions splits files into at most n contiguous chunks and runs one
// pass per chunk concurrently. The merged Summary is returned even when a
// pass ends early.
func (d *Driver) RunPartitions(ctx context.Context, files []types.SourceFile, n int) (Summary, error) {
	parts := source.Partition(files, n)
	if len(parts) <= 1 {
		return d.Run(ctx, files)
	}

	sums := make([]Summary, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		fmt.Fprintf(d.out(), "partition %d: %s..%s (%d files)\n", i+1, part[0].Name, part[len(part)-1].Name, len(part))
		g.Go(func() error {
			s, err := d.run(gctx, part)
			sums[i] = s
			if err != nil {
				return fmt.Errorf("partition %d: %w", i+1, err)
			}
			return nil
		})
	}
	err := g.Wait()

	sum := Merge(d.RunID, sums...)
	fmt.Fprintf(d.out(), "Total cost for processing: $%.2f\n", sum.Cost)
	return sum, err
}
