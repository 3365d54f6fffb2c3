package playback

import (
	"sync"
	"time"
)

// updateThrottle coalesces a burst of update signals into at most one
// delivery per interval, guaranteeing the last signal in a burst still
// fires (a plain rate limiter would drop it).
type updateThrottle struct {
	mu      sync.Mutex
	last    time.Time
	pending bool
}

// trigger calls fn immediately if interval has elapsed since the last
// call; otherwise it schedules fn to run once, at the end of the current
// window, coalescing any other triggers that arrive before then.
func (t *updateThrottle) trigger(interval time.Duration, fn func()) {
	t.mu.Lock()
	now := time.Now()
	if t.last.IsZero() || now.Sub(t.last) >= interval {
		t.last = now
		t.mu.Unlock()
		fn()
		return
	}

	if t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = true
	wait := interval - now.Sub(t.last)
	t.mu.Unlock()

	time.AfterFunc(wait, func() {
		t.mu.Lock()
		t.last = time.Now()
		t.pending = false
		t.mu.Unlock()
		fn()
	})
}
