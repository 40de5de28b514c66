package ui

import (
	"sync"
	"time"
)

// animClock measures animation time that only advances while running.
type animClock struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	total   time.Duration
	running bool
}

func newAnimClock(now func() time.Time) *animClock {
	if now == nil {
		now = time.Now
	}
	return &animClock{now: now, started: now(), running: true}
}

// Elapsed returns the accumulated running time.
func (c *animClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return c.total + c.now().Sub(c.started)
	}
	return c.total
}

// Toggle pauses or resumes the clock and reports whether it is now running.
func (c *animClock) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.total += c.now().Sub(c.started)
	} else {
		c.started = c.now()
	}
	c.running = !c.running
	return c.running
}

func (c *animClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
