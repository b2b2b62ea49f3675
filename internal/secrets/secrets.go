// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret named after its environment variable in
// lower kebab case: anthropic-api-key, openai-api-key, google-api-key,
// semantic-scholar-api-key, smtp-pass.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets/"

// FileName returns the secret file name for an environment variable
// (SMTP_PASS becomes smtp-pass).
func FileName(env string) string {
	return strings.ReplaceAll(strings.ToLower(env), "_", "-")
}

// Load reads every regular, non-hidden file in dir and returns file name
// to trimmed contents. A missing directory yields an empty map, and empty
// or unreadable files are skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}
