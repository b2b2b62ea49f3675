// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "  sk-ant-abc  \n")
				writeFile(t, dir, "semantic-scholar-api-key", "s2_xyz")
				writeFile(t, dir, "smtp-pass", "hunter2\n")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key":        "sk-ant-abc",
				"semantic-scholar-api-key": "s2_xyz",
				"smtp-pass":                "hunter2",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "valid-key")
				writeFile(t, dir, "google-api-key", "")
				writeFile(t, dir, "smtp-pass", "   \n\t  ")
				return dir
			},
			want: map[string]string{"openai-api-key": "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "google-api-key", "g_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{"google-api-key": "g_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	writeFile(t, dir, "anthropic-api-key", "value123")

	badPath := filepath.Join(dir, "smtp-pass")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["anthropic-api-key"])
	_, hasBad := got["smtp-pass"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"ANTHROPIC_API_KEY":        "anthropic-api-key",
		"SEMANTIC_SCHOLAR_API_KEY": "semantic-scholar-api-key",
		"SMTP_PASS":                "smtp-pass",
	}
	for env, want := range tests {
		if got := FileName(env); got != want {
			t.Errorf("FileName(%q) = %q, want %q", env, got, want)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
