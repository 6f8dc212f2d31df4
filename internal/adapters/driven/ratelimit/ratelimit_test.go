package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsNil(t *testing.T) {
	l := New(0, 5)
	assert.Nil(t, l)

	// A nil limiter never blocks.
	require.NoError(t, l.Wait(context.Background()))
	assert.True(t, l.Allow())
	l.Backoff(time.Second)
}

func TestLimiter_Burst(t *testing.T) {
	l := New(1, 2)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "burst exhausted")
}

func TestLimiter_Backoff(t *testing.T) {
	l := New(100, 10)
	l.Backoff(time.Hour)

	assert.False(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}
