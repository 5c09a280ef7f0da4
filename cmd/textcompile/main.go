// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the textcompile CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/textcompile/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// Credentials loaded at startup from .secrets/ and .env.
var (
	loadedSecrets map[string]string
	loadedEnv     map[string]string
)

// rootCmd is the base command for the textcompile CLI.
var rootCmd = &cobra.Command{
	Use:   "textcompile",
	Short: "Compile scanned documents into per-day JSON records",
	Long: `textcompile reads scanned pages (PNG images or PDF documents), extracts
their text, packs it into batches, and asks a language model to rewrite each
batch as JSON records. Records are filed by their date into one JSON file per
calendar day.

Use compile to run the pipeline, records to inspect a stored day, and report
to read back a run report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s

		env, err := secrets.LoadEnvFile(".env")
		if err != nil {
			return err
		}
		loadedEnv = env

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./textcompile.yaml or ~/.config/textcompile/textcompile.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("textcompile")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "textcompile"))
		}
	}

	viper.SetEnvPrefix("TEXTCOMPILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
