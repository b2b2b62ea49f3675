// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"fmt"
)

// RemoteBackend is the placeholder for object-store state (s3://bucket/key).
// Every call fails with ErrNotImplemented so a misconfigured deployment
// stops instead of silently re-sending.
type RemoteBackend struct {
	URI string
}

// NewRemoteBackend returns a placeholder backend for uri.
func NewRemoteBackend(uri string) *RemoteBackend {
	return &RemoteBackend{URI: uri}
}

func (b *RemoteBackend) err() error {
	return fmt.Errorf("%w: remote state at %s; use the file or sqlite backend", ErrNotImplemented, b.URI)
}

// AlreadySent always fails.
func (b *RemoteBackend) AlreadySent(context.Context, string) (bool, error) {
	return false, b.err()
}

// MarkSent always fails.
func (b *RemoteBackend) MarkSent(context.Context, string) error {
	return b.err()
}
