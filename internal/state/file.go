// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pdiddy/research-digest/internal/jsonfile"
)

const sentFile = "sent.json"

// FileBackend keeps sent markers in <dir>/sent.json as {"sent": [...]}.
// An unreadable file reads as empty. Writers within one process are
// serialized; separate processes are not coordinated.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

type sentState struct {
	Sent []string `json:"sent"`
}

// NewFileBackend returns a backend storing markers under dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{path: filepath.Join(dir, sentFile)}
}

// Path returns the marker file path.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) load() sentState {
	var s sentState
	if err := jsonfile.Read(b.path, &s); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("sent-state file unreadable, treating as empty", "path", b.path, "error", err)
		}
		return sentState{}
	}
	return s
}

// AlreadySent reports whether id has been marked.
func (b *FileBackend) AlreadySent(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.load().Sent, id), nil
}

// MarkSent appends id unless it is already present.
func (b *FileBackend) MarkSent(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.load()
	if slices.Contains(s.Sent, id) {
		return nil
	}
	s.Sent = append(s.Sent, id)
	return jsonfile.Write(b.path, s, true)
}

// List returns the marked ids in insertion order.
func (b *FileBackend) List(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load().Sent, nil
}

// Clear removes every marker.
func (b *FileBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return jsonfile.Write(b.path, sentState{Sent: []string{}}, true)
}
