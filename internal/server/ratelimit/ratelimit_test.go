package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucket_BurstThenDeny(t *testing.T) {
	b := newBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		allowed, _, _ := b.take()
		assert.True(t, allowed, "request %d within burst", i+1)
	}

	allowed, remaining, reset := b.take()
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(2, 10.0)
	b.take()
	b.take()

	allowed, _, _ := b.take()
	assert.False(t, allowed, "bucket drained")

	time.Sleep(150 * time.Millisecond)

	allowed, _, _ = b.take()
	assert.True(t, allowed, "one token refilled")
}

func TestLimiter_DefaultBudget(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/briefs", "GET")
		assert.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/briefs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"192.0.2.7": true},
	})
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/briefs", "GET")
		assert.True(t, allowed, "whitelisted client is never limited")
	}

	allowed, _ := l.Allow("192.0.2.7", "/briefs", "GET")
	assert.False(t, allowed, "blacklisted client is always denied")
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/briefs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointBudget(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/briefs/{id}/generate", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
		},
	})
	defer l.Stop()

	// Burst of 2 on the generate route, then denial.
	endpoint := "/briefs/3f1a2b3c/generate"
	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("127.0.0.1", endpoint, "POST")
		assert.True(t, allowed, "request %d within burst", i+1)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := l.Allow("127.0.0.1", endpoint, "POST")
	assert.False(t, allowed)

	// Unmatched routes fall back to the global default.
	allowed, info := l.Allow("127.0.0.1", "/briefs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_ConcurrentExactBudget(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("127.0.0.1", "/briefs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_DropIdleBuckets(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("127.0.0.1", "/briefs", "GET")
	l.Allow("127.0.0.2", "/briefs", "GET")

	// A cutoff in the future treats every bucket as idle.
	l.dropIdleBuckets(time.Now().Add(time.Hour))

	l.mu.RLock()
	defer l.mu.RUnlock()
	assert.Empty(t, l.buckets)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/briefs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}
