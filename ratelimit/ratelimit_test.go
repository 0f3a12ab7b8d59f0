package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/backflowdir/discovery/ratelimit"
)

func TestFixedWindowBudget(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fw := ratelimit.New(20, time.Minute, ratelimit.WithClock(func() time.Time { return current }))

	for i := 0; i < 20; i++ {
		assert.True(t, fw.Allow("1.2.3.4"), "request %d should pass", i+1)
	}

	assert.False(t, fw.Allow("1.2.3.4"), "21st request in the window must be rejected")
	assert.Equal(t, 0, fw.Remaining("1.2.3.4"))

	// A different client has its own budget.
	assert.True(t, fw.Allow("5.6.7.8"))
}

func TestFixedWindowRollsOver(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fw := ratelimit.New(2, time.Minute, ratelimit.WithClock(func() time.Time { return current }))

	assert.True(t, fw.Allow("client"))
	assert.True(t, fw.Allow("client"))
	assert.False(t, fw.Allow("client"))

	// 59s in: still the same window.
	current = current.Add(59 * time.Second)
	assert.False(t, fw.Allow("client"))

	// Window elapsed: budget resets.
	current = current.Add(2 * time.Second)
	assert.True(t, fw.Allow("client"))
	assert.Equal(t, 1, fw.Remaining("client"))
}

func TestFixedWindowConcurrent(t *testing.T) {
	fw := ratelimit.New(100, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fw.Allow("same-client") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed, "exactly the budget must be admitted under contention")
}
