// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists digests as one <date>.json file per day.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/jsonfile"
	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultListLimit is used by List when limit <= 0.
const DefaultListLimit = 30

// ErrMissingDate is returned by Save for a digest without a date.
var ErrMissingDate = errors.New("digest must have a date")

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid digest date")

// Store is a directory of digest files. Saving the same date twice
// replaces the earlier digest.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save writes d to <dir>/<date>.json and returns the path.
func (s *Store) Save(d *types.Digest) (string, error) {
	if d == nil || strings.TrimSpace(d.Date) == "" {
		return "", ErrMissingDate
	}
	path, err := s.path(d.Date)
	if err != nil {
		return "", err
	}
	if err := jsonfile.Write(path, d, true); err != nil {
		return "", err
	}
	slog.Info("digest saved", "path", path, "papers", len(d.Papers))
	return path, nil
}

// Load returns the digest for date, or the most recent digest when date
// is empty. It returns nil, nil when no such digest exists.
func (s *Store) Load(date string) (*types.Digest, error) {
	if date == "" {
		dates, err := s.List(1)
		if err != nil || len(dates) == 0 {
			return nil, err
		}
		date = dates[0]
	}
	path, err := s.path(date)
	if err != nil {
		return nil, err
	}

	var d types.Digest
	if err := jsonfile.Read(path, &d); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// LoadRaw returns the stored bytes for date without decoding.
func (s *Store) LoadRaw(date string) (json.RawMessage, error) {
	path, err := s.path(date)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// List returns up to limit stored dates, newest first.
func (s *Store) List(limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.dir, err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		stem := strings.TrimSuffix(name, ".json")
		if validDate(stem) {
			dates = append(dates, stem)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

// Delete removes the digest for date. It reports false when none existed.
func (s *Store) Delete(date string) (bool, error) {
	path, err := s.path(date)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("deleting %s: %w", path, err)
	}
	slog.Info("digest deleted", "date", date)
	return true, nil
}

func (s *Store) path(date string) (string, error) {
	if !validDate(date) {
		return "", fmt.Errorf("%w %q", ErrInvalidDate, date)
	}
	return filepath.Join(s.dir, date+".json"), nil
}

func validDate(s string) bool {
	_, err := time.Parse(types.DateLayout, s)
	return err == nil
}
