// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/textcompile/internal/secrets"
	"github.com/pdiddy/textcompile/pkg/types"
)

// setDefaults registers every configuration key with its default value.
// Keys must be registered for environment overrides to reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("batch.max_chars", types.DefaultMaxChars)

	v.SetDefault("transform.model", "gpt-3.5-turbo")
	v.SetDefault("transform.base_url", "https://api.openai.com/v1")
	v.SetDefault("transform.api_key", "")
	v.SetDefault("transform.prompt_file", "")
	v.SetDefault("transform.timeout", "120s")
	v.SetDefault("transform.max_retries", 3)
	v.SetDefault("transform.pricing.input_per_1k", 0.001)
	v.SetDefault("transform.pricing.output_per_1k", 0.002)

	v.SetDefault("ocr.backend", string(types.OCRTesseract))
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.image", "")

	v.SetDefault("store.backend", string(types.StoreJSON))
	v.SetDefault("error_log", "error_log.txt")
}

// compileConfig merges viper settings, positional arguments, and flags into
// the configuration of one compile run.
func compileConfig(cmd *cobra.Command, args []string, v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	dir := args[0]
	kind, err := types.ParseKind(args[1])
	if err != nil {
		return cfg, err
	}
	cfg.Kind = kind
	if len(args) > 2 {
		cfg.Start = args[2]
	}
	if len(args) > 3 {
		cfg.End = args[3]
	}

	cfg.InputDir, _ = cmd.Flags().GetString("input-dir")
	if cfg.InputDir == "" {
		cfg.InputDir = filepath.Join(dir, "images")
	}
	cfg.Store.Dir, _ = cmd.Flags().GetString("output-dir")
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = filepath.Join(dir, "text")
	}

	cfg.Processes, _ = cmd.Flags().GetInt("processes")
	if cfg.Processes < 1 {
		return cfg, fmt.Errorf("--processes must be at least 1, got %d", cfg.Processes)
	}
	if cmd.Flags().Changed("max-chars") {
		cfg.Batch.MaxChars, _ = cmd.Flags().GetInt("max-chars")
	}
	cfg.ReportPath, _ = cmd.Flags().GetString("report")

	if cfg.Transform.APIKey == "" {
		cfg.Transform.APIKey = secrets.OpenAIKey(loadedSecrets, loadedEnv)
	}
	return cfg, nil
}
