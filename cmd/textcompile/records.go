// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/textcompile/internal/store"
	"github.com/pdiddy/textcompile/pkg/types"
)

var recordsCmd = &cobra.Command{
	Use:   "records <output-dir> <YYYY-MM-DD>",
	Short: "Print the records stored for one day",
	Long: `Records reads the entry for the given calendar day from the record store
in <output-dir> and prints it. By default each record is listed by time of
day; --json prints the raw entry instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().Bool("json", false, "print the entry as JSON")
	recordsCmd.Flags().String("backend", "", "store backend: json or sqlite (default from config)")

	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	day, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[1])
	}

	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		backend = viper.GetString("store.backend")
	}

	st, err := store.Open(types.StoreConfig{Backend: types.StoreBackend(backend), Dir: args[0]})
	if err != nil {
		return err
	}
	defer st.Close()

	entry, err := store.NewWriter(st).Entry(context.Background(), day)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRecords(os.Stdout, day, entry, jsonOutput)
}

func formatRecords(w io.Writer, day time.Time, entry map[string]types.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(entry)
	}

	if len(entry) == 0 {
		fmt.Fprintf(w, "No records for %s.\n", day.Format("2006-01-02"))
		return nil
	}

	times := make([]string, 0, len(entry))
	for k := range entry {
		times = append(times, k)
	}
	sort.Strings(times)

	for _, t := range times {
		rec := entry[t]
		fmt.Fprintf(w, "%s  %-30s  %s\n", t, field(rec, "from", 30), field(rec, "subject", 60))
	}
	fmt.Fprintf(w, "\n%d records\n", len(entry))
	return nil
}

// field returns rec[key] as text cut to width runes.
func field(rec types.Record, key string, width int) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	s := fmt.Sprint(v)
	if r := []rune(s); len(r) > width {
		s = string(r[:width-3]) + "..."
	}
	return s
}
