// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	in := map[string]any{"seen": []string{"a<b", "c"}}
	require.NoError(t, Write(path, in, false))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"seen\":[\"a<b\",\"c\"]}\n", string(raw))

	var out struct {
		Seen []string `json:"seen"`
	}
	require.NoError(t, Read(path, &out))
	assert.Equal(t, []string{"a<b", "c"}, out.Seen)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")
}

func TestReadMissing(t *testing.T) {
	var v map[string]any
	err := Read(filepath.Join(t.TempDir(), "nope.json"), &v)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var v map[string]any
	assert.ErrorContains(t, Read(path, &v), "parsing")
}

func TestWriteIndented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, Write(path, map[string]int{"a": 1}, true))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(raw))
}
