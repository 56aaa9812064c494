package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBurst(t *testing.T) {
	l := New(60, 3)
	require.NotNil(t, l)

	for i := range 3 {
		require.NoError(t, l.Allow("client-a"), "request %d within burst", i)
	}
	err := l.Allow("client-a")
	require.ErrorIs(t, err, ErrLimited)
	assert.Contains(t, err.Error(), "client-a")

	// Buckets are per key.
	assert.NoError(t, l.Allow("client-b"))
}

func TestLimiterForget(t *testing.T) {
	l := New(60, 1)
	require.NoError(t, l.Allow("ws"))
	require.ErrorIs(t, l.Allow("ws"), ErrLimited)

	l.Forget("ws")
	assert.NoError(t, l.Allow("ws"))
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0, 10)
	assert.Nil(t, l)

	for range 1000 {
		require.NoError(t, l.Allow("anyone"))
	}
	l.Forget("anyone")
}

func TestDefaultBurst(t *testing.T) {
	l := New(120, 0)
	require.NotNil(t, l)
	assert.Equal(t, 12, l.burst)
}
