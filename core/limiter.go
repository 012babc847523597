package core

import (
	"fmt"
	"sync"
)

// SpawnLimiter enforces a maximum number of agent spawns per top-level request.
type SpawnLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewSpawnLimiter creates a new limiter with a max number of spawns.
// If max == 0, unlimited spawns are allowed.
func NewSpawnLimiter(max int) *SpawnLimiter {
	return &SpawnLimiter{max: max}
}

// Increment records one spawn and returns an error if the limit is exceeded.
// A nil limiter never refuses.
func (sl *SpawnLimiter) Increment() error {
	if sl == nil {
		return nil
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.count++
	if sl.max > 0 && sl.count > sl.max {
		return fmt.Errorf("%w: %d", ErrSpawnLimitExceeded, sl.max)
	}

	return nil
}

// Count returns the number of spawns recorded so far.
func (sl *SpawnLimiter) Count() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.count
}

// Remaining returns how many spawns are left before hitting the limit.
func (sl *SpawnLimiter) Remaining() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.max == 0 {
		return -1 // unlimited
	}

	return sl.max - sl.count
}
