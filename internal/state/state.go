// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state records which digests have been sent so a retried or
// duplicated trigger never emails the same digest twice.
package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Backend stores sent markers keyed by digest ID.
type Backend interface {
	AlreadySent(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string) error
}

// Lister is implemented by backends that can enumerate and reset markers.
type Lister interface {
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// ErrNotImplemented is returned by backends that exist only as placeholders.
var ErrNotImplemented = errors.New("state backend not implemented")

// Backend kinds.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// DefaultDir is the state directory when none is configured.
const DefaultDir = ".digest_state"

// Open returns the backend selected by cfg. A RemoteURI takes precedence
// over Backend.
func Open(cfg types.StateConfig) (Backend, error) {
	if uri := strings.TrimSpace(cfg.RemoteURI); uri != "" {
		return NewRemoteBackend(uri), nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	switch strings.ToLower(cfg.Backend) {
	case "", KindFile:
		return NewFileBackend(dir), nil
	case KindSQLite:
		b, err := NewSQLiteBackend(filepath.Join(dir, sqliteFile))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q (supported: file, sqlite)", cfg.Backend)
	}
}

// Close releases backend resources when the backend holds any.
func Close(b Backend) error {
	if c, ok := b.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
