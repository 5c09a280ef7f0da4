// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and from a dotenv file. In the directory, each file represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
//
// Supported keys: openai-api-key (directory) and OPENAI_API_KEY (.env or
// the process environment).
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// Well-known secret names.
const (
	OpenAIKeyFile = "openai-api-key"
	OpenAIKeyEnv  = "OPENAI_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file. A missing file
// yields an empty map. Empty values are dropped.
func LoadEnvFile(path string) (map[string]string, error) {
	vals, err := gotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	for k, v := range vals {
		if strings.TrimSpace(v) == "" {
			delete(vals, k)
		}
	}
	return vals, nil
}

// OpenAIKey picks the API key from the secrets directory, then the env
// file, then the process environment. It returns "" when none has one.
func OpenAIKey(dir, env map[string]string) string {
	if v := dir[OpenAIKeyFile]; v != "" {
		return v
	}
	if v := env[OpenAIKeyEnv]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(OpenAIKeyEnv))
}
