// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func digestFor(date string, ids ...string) *types.Digest {
	d := &types.Digest{
		Date:        date,
		GeneratedAt: time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
		Categories:  []string{"cs.AI"},
		Interests:   "agents",
	}
	for _, id := range ids {
		d.Papers = append(d.Papers, types.Paper{ID: id, Title: "T " + id})
	}
	return d
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.Save(digestFor("2024-01-15", "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "2024-01-15.json"), path)

	got, err := s.Load("2024-01-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "agents", got.Interests)
	assert.Len(t, got.Papers, 2)
}

func TestSaveRequiresDate(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(&types.Digest{})
	assert.ErrorIs(t, err, ErrMissingDate)

	_, err = s.Save(nil)
	assert.ErrorIs(t, err, ErrMissingDate)
}

func TestSaveOverwritesSameDate(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(digestFor("2024-01-15", "a"))
	require.NoError(t, err)
	_, err = s.Save(digestFor("2024-01-15", "b", "c"))
	require.NoError(t, err)

	got, err := s.Load("2024-01-15")
	require.NoError(t, err)
	assert.Len(t, got.Papers, 2)
}

func TestLoadLatest(t *testing.T) {
	s := New(t.TempDir())
	for _, d := range []string{"2024-01-13", "2024-01-15", "2024-01-14"} {
		_, err := s.Save(digestFor(d))
		require.NoError(t, err)
	}

	got, err := s.Load("")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15", got.Date)
}

func TestLoadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))

	got, err := s.Load("2024-01-15")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.Load("")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02"} {
		_, err := s.Save(digestFor(d))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sent.json"), nil, 0o644))

	dates, err := s.List(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, dates)

	dates, err = s.List(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02"}, dates)
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(digestFor("2024-01-15"))
	require.NoError(t, err)

	ok, err := s.Delete("2024-01-15")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete("2024-01-15")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRejectsPathLikeDates(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.Delete("2024-1-5")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
