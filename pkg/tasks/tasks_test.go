package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn(t *testing.T) {
	boom := errors.New("boom")
	h := Spawn("failing", func() error { return boom })
	<-h.Done()
	assert.Equal(t, "failing", h.Name())
	assert.ErrorIs(t, h.Err(), boom)
}

func TestGroup_WaitFirstFailure(t *testing.T) {
	boom := errors.New("stream disconnected")
	release := make(chan struct{})
	defer close(release)

	g := NewGroup(
		Spawn("healthy", func() error { <-release; return nil }),
		Spawn("failing", func() error { return boom }),
	)
	require.Len(t, g.Handles(), 2)

	err := g.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestGroup_CleanExitIsFatal(t *testing.T) {
	g := NewGroup(Spawn("short-lived", func() error { return nil }))

	err := g.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited unexpectedly")
}

func TestGroup_WaitContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	g := NewGroup(Spawn("long-lived", func() error { <-release; return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
}

func TestGroup_Empty(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewGroup().Wait(ctx), context.Canceled)
}
