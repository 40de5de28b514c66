package ui

import (
	"testing"
	"time"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func TestAnimClockPause(t *testing.T) {
	fn := &fakeNow{t: time.Unix(100, 0)}
	c := newAnimClock(fn.now)

	fn.t = fn.t.Add(2 * time.Second)
	if got := c.Elapsed(); got != 2*time.Second {
		t.Fatalf("Elapsed() = %v, want 2s", got)
	}

	if c.Toggle() {
		t.Fatal("Toggle() reported running after pause")
	}
	fn.t = fn.t.Add(5 * time.Second)
	if got := c.Elapsed(); got != 2*time.Second {
		t.Fatalf("paused Elapsed() = %v, want 2s", got)
	}

	if !c.Toggle() {
		t.Fatal("Toggle() reported paused after resume")
	}
	fn.t = fn.t.Add(time.Second)
	if got := c.Elapsed(); got != 3*time.Second {
		t.Fatalf("resumed Elapsed() = %v, want 3s", got)
	}
	if !c.Running() {
		t.Fatal("Running() = false")
	}
}
