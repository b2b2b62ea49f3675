// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPersistsSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	m := Open(path)

	require.NoError(t, m.Record("2401.0002"))
	require.NoError(t, m.RecordMany([]string{"2401.0001", "s2:abc", "2401.0002"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seen":["2401.0001","2401.0002","s2:abc"]}`, string(raw))
	assert.Equal(t, 3, m.Count())
}

func TestReopenRestoresSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, Open(path).RecordMany([]string{"a", "b"}))

	m := Open(path)
	assert.True(t, m.IsSeen("a"))
	assert.False(t, m.IsSeen("c"))
	assert.Equal(t, []string{"a", "b"}, m.IDs())
}

func TestFilterUnseen(t *testing.T) {
	m := Open(filepath.Join(t.TempDir(), "memory.json"))
	require.NoError(t, m.RecordMany([]string{"a", "b"}))

	got := m.FilterUnseen([]string{"a", "c", "d", "c"})
	assert.Equal(t, map[string]struct{}{"c": {}, "d": {}}, got)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	m := Open(path)
	require.NoError(t, m.RecordMany([]string{"a", "b"}))
	require.NoError(t, m.Clear())

	assert.Zero(t, m.Count())
	assert.Zero(t, Open(path).Count())
}

func TestOpenCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	m := Open(path)
	assert.Zero(t, m.Count())

	require.NoError(t, m.Record("x"))
	assert.True(t, Open(path).IsSeen("x"), "next write replaces the corrupt file")
}

func TestOpenMissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "memory.json")
	m := Open(path)
	require.NoError(t, m.Record("x"))
	assert.FileExists(t, path)
}

func TestConcurrentRecord(t *testing.T) {
	m := Open(filepath.Join(t.TempDir(), "memory.json"))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Record(string(rune('a'+i))))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, m.Count())
}
