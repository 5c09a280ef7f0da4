// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/textcompile/internal/batch"
	"github.com/pdiddy/textcompile/internal/errlog"
	"github.com/pdiddy/textcompile/internal/extract"
	"github.com/pdiddy/textcompile/internal/pipeline"
	"github.com/pdiddy/textcompile/internal/source"
	"github.com/pdiddy/textcompile/internal/store"
	"github.com/pdiddy/textcompile/internal/transform"
	"github.com/pdiddy/textcompile/pkg/types"
)

var compileCmd = &cobra.Command{
	Use:   "compile <directory> <kind> [start [end]]",
	Short: "Extract, batch, and transform scanned files into dated records",
	Long: `Compile lists the files of the given kind (image|png or document|pdf) in
<directory>/images, optionally limited to the inclusive range [start, end],
and runs them through the pipeline. Bare numbers in the range are padded to
three digits, so "7 12" selects 007.png through 012.png.

Extracted text is packed into batches of at most --max-chars characters. Each
batch is sent to the language model and every JSON record in the reply is
stored in <directory>/text/DDMMYYYY.json under its time of day.

With --processes N the selection is split into N contiguous partitions that
run in parallel.`,
	Args: cobra.RangeArgs(2, 4),
	RunE: runCompile,
}

func init() {
	addCompileFlags(compileCmd)
	rootCmd.AddCommand(compileCmd)
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().Int("processes", 1, "number of partitions to run in parallel")
	cmd.Flags().String("input-dir", "", "directory of scanned files (default <directory>/images)")
	cmd.Flags().String("output-dir", "", "directory of per-day record files (default <directory>/text)")
	cmd.Flags().Int("max-chars", types.DefaultMaxChars, "maximum extracted characters per batch")
	cmd.Flags().String("report", "", "write a YAML run report to this path")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := compileConfig(cmd, args, viper.GetViper())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	all, err := source.List(cfg.InputDir, cfg.Kind)
	if err != nil {
		return err
	}
	files := source.Select(all, cfg.Start, cfg.End, cfg.Kind)
	fmt.Fprintf(os.Stderr, "%d of %d %s files selected\n", len(files), len(all), cfg.Kind.Extension())

	runID := uuid.NewString()
	elog, err := errlog.Open(cfg.ErrorLog, runID)
	if err != nil {
		return err
	}
	defer elog.Close()

	out := pipeline.SyncWriter(os.Stdout)

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	prompt, err := transform.LoadPrompt(cfg.Transform.PromptFile)
	if err != nil {
		return err
	}
	backend, err := transform.NewOpenAIBackend(cfg.Transform)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	d := &pipeline.Driver{
		InputDir:    cfg.InputDir,
		Kind:        cfg.Kind,
		Extractor:   extractor,
		Packer:      batch.NewPacker(cfg.Batch.MaxChars, out),
		Transformer: transform.NewAdapter(backend, prompt, cfg.Transform.Pricing, elog, out),
		Writer:      store.NewWriter(st),
		RunID:       runID,
		Out:         out,
	}

	sum, runErr := d.RunPartitions(ctx, files, cfg.Processes)

	fmt.Fprintf(out, "\nfiles: %d, batches: %d, calls: %d, records: %d, failures: %d\n",
		sum.Files, sum.Batches, sum.Calls, sum.Records, len(sum.Failures))

	if cfg.ReportPath != "" {
		if err := pipeline.WriteReport(cfg.ReportPath, sum); err != nil {
			fmt.Fprintf(os.Stderr, "warning: report write failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", cfg.ReportPath)
		}
	}
	return runErr
}

// newExtractor builds the extractor for cfg.Kind. OCR is only set up for
// images so that document runs need neither tesseract nor a container
// runtime.
func newExtractor(ctx context.Context, cfg types.PipelineConfig) (*extract.Extractor, error) {
	if cfg.Kind != types.KindImage {
		return extract.New(nil, nil), nil
	}
	ocr, err := extract.NewOCR(ctx, cfg.OCR)
	if err != nil {
		return nil, err
	}
	return extract.New(ocr, nil), nil
}
