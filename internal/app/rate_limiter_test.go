package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRoomRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("sid-1"))
	assert.True(t, rl.Allow("sid-1"))
	assert.False(t, rl.Allow("sid-1"))
	assert.True(t, rl.Allow("sid-2"), "keys are independent")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("sid-1"))
}

func TestRoomRateLimiter_BudgetSurvivesReconnect(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRoomRateLimiter(1, time.Hour)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("sid-1"))
	// a new connection from the same session shares the key
	now = now.Add(time.Minute)
	assert.False(t, rl.Allow("sid-1"))
}

func TestRoomRateLimiter_StaleKeysArePruned(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRoomRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("sid-1"))
	assert.True(t, rl.Allow("sid-2"))
	assert.Equal(t, 2, rl.Len())

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("sid-3"))
	assert.Equal(t, 1, rl.Len())
}

func TestRoomRateLimiter_ZeroLimitDisables(t *testing.T) {
	rl := NewRoomRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("sid-1"))
	}
}
