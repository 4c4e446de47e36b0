// Package governor paces outbound calls per upstream category.
//
// Each Governor owns the last dispatch time of one category. Acquire reserves
// the next free slot under a mutex and then sleeps until that slot, so callers
// that arrive together are spread at least MinInterval apart instead of being
// rejected.
package governor

import (
	"context"
	"sync"
	"time"
)

// Governor serializes and paces callers of a single upstream category.
type Governor struct {
	name        string
	minInterval time.Duration

	mu   sync.Mutex
	last time.Time

	now func() time.Time
}

// New creates a Governor that keeps dispatches at least minInterval apart.
func New(name string, minInterval time.Duration) *Governor {
	return &Governor{
		name:        name,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Name returns the category this governor paces.
func (g *Governor) Name() string {
	return g.name
}

// Acquire blocks until the caller may dispatch and returns the dispatch time.
// The slot is recorded before sleeping, so a later caller always observes it.
// If ctx ends while waiting, the slot stays consumed and ctx.Err() is returned.
func (g *Governor) Acquire(ctx context.Context) (time.Time, error) {
	g.mu.Lock()
	now := g.now()
	slot := now
	if !g.last.IsZero() {
		if next := g.last.Add(g.minInterval); next.After(now) {
			slot = next
		}
	}
	g.last = slot
	g.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return slot, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return slot, nil
	case <-ctx.Done():
		return slot, ctx.Err()
	}
}

// LastDispatch returns the most recently reserved dispatch time.
func (g *Governor) LastDispatch() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
