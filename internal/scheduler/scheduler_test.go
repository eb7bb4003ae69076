package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "garbage", spec: "every day"},
		{name: "too many fields", spec: "0 0 9 * * *"},
		{name: "out of range", spec: "61 9 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec, func(context.Context) error { return nil }, quietLogger())
			assert.Error(t, err)
		})
	}
}

func TestNew_NilJob(t *testing.T) {
	_, err := New("@daily", nil, quietLogger())
	assert.Error(t, err)
}

func TestScheduler_RunOnStartThenStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s, err := New("@daily", func(jobCtx context.Context) error {
		runs.Add(1)
		cancel()
		return errors.New("logged, not fatal")
	}, quietLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	s, err := New("@every 1s", func(jobCtx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}, quietLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, false) }()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
