// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory tracks which papers have already appeared in a digest so
// later runs can exclude them. The set persists to a JSON file of the form
// {"seen": [sorted ids]} that is rewritten on every mutation.
package memory

import (
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"sync"

	"github.com/pdiddy/research-digest/internal/jsonfile"
)

// Memory is a persistent set of seen paper IDs. Safe for concurrent use.
type Memory struct {
	path string
	mu   sync.Mutex
	seen map[string]struct{}
}

type fileFormat struct {
	Seen []string `json:"seen"`
}

// Open loads the memory file at path. A missing, unreadable, or corrupt
// file yields an empty set; the next mutation overwrites it.
func Open(path string) *Memory {
	m := &Memory{path: path, seen: make(map[string]struct{})}

	var f fileFormat
	if err := jsonfile.Read(path, &f); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("seen-paper memory unreadable, starting empty", "path", path, "error", err)
		}
		return m
	}
	for _, id := range f.Seen {
		m.seen[id] = struct{}{}
	}
	return m
}

// Path returns the backing file path.
func (m *Memory) Path() string { return m.path }

// Record marks id as seen and persists the set.
func (m *Memory) Record(id string) error {
	return m.RecordMany([]string{id})
}

// RecordMany marks every id as seen with a single write.
func (m *Memory) RecordMany(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.seen[id] = struct{}{}
	}
	return m.save()
}

// IsSeen reports whether id has been recorded.
func (m *Memory) IsSeen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[id]
	return ok
}

// FilterUnseen returns the subset of ids not yet recorded.
func (m *Memory) FilterUnseen(ids []string) map[string]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := m.seen[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Clear forgets every recorded id and persists the empty set.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]struct{})
	return m.save()
}

// Count returns the number of recorded ids.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// IDs returns the recorded ids, sorted.
func (m *Memory) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted()
}

func (m *Memory) sorted() []string {
	ids := make([]string, 0, len(m.seen))
	for id := range m.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// save must be called with mu held.
func (m *Memory) save() error {
	return jsonfile.Write(m.path, fileFormat{Seen: m.sorted()}, false)
}
