package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiterAllowsUnderLimit(t *testing.T) {
	l := NewLocalLimiter(Config{Limit: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, i+1, d.Count)
		assert.Equal(t, 3-(i+1), d.Remaining)
	}

	d, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	l := NewLocalLimiter(Config{Limit: 1, Window: time.Minute})
	ctx := context.Background()

	d, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = l.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLocalLimiterWindowSlides(t *testing.T) {
	l := NewLocalLimiter(Config{Limit: 1, Window: time.Minute})
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	d, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// Advance past the window; the old request ages out.
	now = now.Add(61 * time.Second)
	d, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestLocalLimiterReset(t *testing.T) {
	l := NewLocalLimiter(Config{Limit: 1, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.NoError(t, l.Reset(ctx, "client-a"))

	d, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestConfigNormalized(t *testing.T) {
	c := Config{}.normalized()
	assert.Equal(t, DefaultConfig().Limit, c.Limit)
	assert.Equal(t, DefaultConfig().Window, c.Window)

	c = Config{Limit: 5, Window: time.Second}.normalized()
	assert.Equal(t, 5, c.Limit)
	assert.Equal(t, time.Second, c.Window)
}
