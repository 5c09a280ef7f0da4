// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/textcompile/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Print a run report written by compile --report",
	Long: `Report reads the YAML run report at <path> and prints its counts, token
usage, estimated cost, and any failures met during the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := pipeline.ReadReport(args[0])
	if err != nil {
		return err
	}
	formatReport(os.Stdout, s)
	return nil
}

func formatReport(w io.Writer, s pipeline.Summary) {
	fmt.Fprintf(w, "Run %s\n", s.RunID)
	if !s.Started.IsZero() {
		fmt.Fprintf(w, "  started:  %s (%s)\n", s.Started.Format(time.RFC3339), s.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "  files:    %d\n", s.Files)
	fmt.Fprintf(w, "  batches:  %d (%d oversize, %d skipped)\n", s.Batches, s.Oversize, s.Skipped)
	fmt.Fprintf(w, "  calls:    %d\n", s.Calls)
	fmt.Fprintf(w, "  tokens:   %d prompt, %d completion\n", s.PromptTokens, s.CompletionTokens)
	fmt.Fprintf(w, "  records:  %d\n", s.Records)
	fmt.Fprintf(w, "  cost:     $%.4f\n", s.Cost)

	if len(s.Failures) == 0 {
		fmt.Fprintln(w, "\nNo failures.")
		return
	}
	fmt.Fprintf(w, "\n%d failures:\n", len(s.Failures))
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  [%s] %s: %s\n", f.Stage, f.Subject, f.Error)
	}
}
