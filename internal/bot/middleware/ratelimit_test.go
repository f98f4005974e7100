package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	require.True(t, rl.Allow(100))
	require.True(t, rl.Allow(100))
	require.True(t, rl.Allow(100))
	require.False(t, rl.Allow(100))

	// лимит на пользователя, сосед не задет
	require.True(t, rl.Allow(200))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	require.True(t, rl.Allow(100))
	require.False(t, rl.Allow(100))

	time.Sleep(30 * time.Millisecond)
	require.True(t, rl.Allow(100))
}
