package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("a lost: %q %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
	if s := c.Stats(); s.Evictions != 1 || s.Misses != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](0, time.Minute).WithClock(clock.now)

	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(30 * time.Second)
	c.Set("b", 3)
	clock.advance(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != 3 {
		t.Fatalf("b = %d %v", v, ok)
	}

	clock.advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestManagerSweepAndRun(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	c.Set("x", 1)

	m := NewManager(nil)
	m.Register(c)
	clock.advance(2 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestLRUContainsLeavesCountersAlone(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](2, time.Minute).WithClock(clock.now)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Contains("a") || c.Contains("missing") {
		t.Fatalf("unexpected membership")
	}
	// a stays least recently used, so it is the one evicted.
	c.Set("c", 3)
	if c.Contains("a") {
		t.Fatalf("a should have been evicted")
	}
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Fatalf("Contains touched counters: %+v", s)
	}

	clock.advance(2 * time.Minute)
	if c.Contains("b") {
		t.Fatalf("b should have expired")
	}
}
