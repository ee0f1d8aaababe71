package filesystem

import (
	"sync"
	"time"
)

// tracker remembers recent create times per path. Most filesystems
// fire a write event right after a create while the producer is still
// filling the file; the tracker lets the watcher swallow that write
// instead of indexing the same file twice.
type tracker struct {
	window time.Duration

	mu      sync.Mutex
	created map[string]time.Time
}

func newTracker(window time.Duration) *tracker {
	return &tracker{
		window:  window,
		created: make(map[string]time.Time),
	}
}

// recordCreate notes that path was just created.
func (t *tracker) recordCreate(path string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.created[path] = now
}

// suppress reports whether a write event for path falls inside the
// window after its create. A suppressed write clears the entry, so the
// next write for the same path indexes normally.
func (t *tracker) suppress(path string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	created, ok := t.created[path]
	if !ok {
		return false
	}
	delete(t.created, path)
	return now.Sub(created) < t.window
}

// evict drops entries older than the window so the map stays bounded
// by recent activity. Returns the number of entries removed.
func (t *tracker) evict(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for path, created := range t.created {
		if now.Sub(created) >= t.window {
			delete(t.created, path)
			evicted++
		}
	}
	return evicted
}

// len returns the number of tracked paths.
func (t *tracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.created)
}
