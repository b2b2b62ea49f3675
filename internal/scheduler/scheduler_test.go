// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextDefaultSpec(t *testing.T) {
	s, err := New(types.SchedulerConfig{}, func(context.Context) {}, quietLogger())
	require.NoError(t, err)

	before := time.Date(2024, 1, 15, 5, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC), s.Next(before))

	after := time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC), s.Next(after))
}

func TestNextHonorsTimezone(t *testing.T) {
	s, err := New(types.SchedulerConfig{Spec: "0 6 * * *", Timezone: "America/New_York"}, func(context.Context) {}, quietLogger())
	require.NoError(t, err)

	next := s.Next(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC), next.UTC())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(types.SchedulerConfig{Spec: "every day"}, nil, nil)
	assert.Error(t, err)

	_, err = New(types.SchedulerConfig{Timezone: "Nowhere/Special"}, nil, nil)
	assert.Error(t, err)
}

func TestRunExecutesJobAndStops(t *testing.T) {
	var runs atomic.Int32
	var cancelled atomic.Bool
	s, err := New(types.SchedulerConfig{Spec: "@every 1s"}, func(ctx context.Context) {
		runs.Add(1)
		cancelled.Store(ctx.Err() != nil)
	}, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, cancelled.Load())
}
