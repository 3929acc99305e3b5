package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(policies map[string]Policy) (*RateLimiter, *time.Time) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithPolicies(policies)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllow_BurstThenWait(t *testing.T) {
	rl, clock := newTestLimiter(map[string]Policy{"send_message": {Burst: 3, Every: 6 * time.Second}})

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("u1", "send_message")
		assert.True(t, ok, "call %d", i)
	}

	ok, wait := rl.Allow("u1", "send_message")
	assert.False(t, ok)
	assert.Equal(t, 6*time.Second, wait)

	// a rejected call does not consume a token
	*clock = clock.Add(6 * time.Second)
	ok, _ = rl.Allow("u1", "send_message")
	assert.True(t, ok)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(map[string]Policy{"bargain_offer": {Burst: 1, Every: time.Minute}})

	ok, _ := rl.Allow("u1", "bargain_offer")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "bargain_offer")
	assert.False(t, ok)

	ok, _ = rl.Allow("u2", "bargain_offer")
	assert.True(t, ok, "other users keep their own bucket")
	ok, _ = rl.Allow("u1", "create_chat")
	assert.True(t, ok, "unknown actions use the fallback policy")
}

func TestTokensAndCleanup(t *testing.T) {
	rl, clock := newTestLimiter(DefaultPolicies)

	assert.Equal(t, 5.0, rl.Tokens("u1", "create_chat"))
	rl.Allow("u1", "create_chat")
	assert.InDelta(t, 4.0, rl.Tokens("u1", "create_chat"), 0.001)

	*clock = clock.Add(2 * time.Hour)
	rl.Cleanup(time.Hour)
	rl.mu.Lock()
	assert.Empty(t, rl.buckets)
	rl.mu.Unlock()
}
