package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok { // a becomes most recent
		t.Fatalf("expected a")
	}
	c.Set("c", "3") // evicts b

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("a should survive, got %q %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}

	c.Set("a", "updated")
	if v, _ := c.Get("a"); v != "updated" {
		t.Fatalf("expected overwrite, got %q", v)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be deleted")
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", "3")

	clock.t = clock.t.Add(45 * time.Second) // a and b expired, c alive
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected b to be cleaned, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected only c to remain, got %d", c.Size())
	}

	st := c.Stats()
	if st.Misses != 1 || st.Hits != 0 || st.Size != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestManagerSweepAndRun(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", "1")
	m := NewManager(nil)
	m.Register(c)

	clock.t = clock.t.Add(2 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 entry swept, got %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("run did not stop on cancel")
	}
}
