package admission

import (
	"sync"
	"testing"
)

func TestControllerTryAdmit(t *testing.T) {
	t.Parallel()

	t.Run("unbounded queue always admits", func(t *testing.T) {
		c := NewController()
		for i := 0; i < 100; i++ {
			if !c.TryAdmit("q1", 0) {
				t.Fatalf("admit %d refused on unbounded queue", i)
			}
		}
		if got := c.Count("q1"); got != 100 {
			t.Fatalf("expected count 100, got %d", got)
		}
	})

	t.Run("refuses at the bound without side effect", func(t *testing.T) {
		c := NewController()
		if !c.TryAdmit("q1", 2) || !c.TryAdmit("q1", 2) {
			t.Fatalf("expected first two admits to succeed")
		}
		if c.TryAdmit("q1", 2) {
			t.Fatalf("expected third admit to be refused")
		}
		if got := c.Count("q1"); got != 2 {
			t.Fatalf("expected count unchanged at 2, got %d", got)
		}
	})

	t.Run("release frees a slot", func(t *testing.T) {
		c := NewController()
		c.TryAdmit("q1", 1)
		if c.TryAdmit("q1", 1) {
			t.Fatalf("expected refusal at bound")
		}
		c.Release("q1")
		if !c.TryAdmit("q1", 1) {
			t.Fatalf("expected admit after release")
		}
	})

	t.Run("release floors at zero", func(t *testing.T) {
		c := NewController()
		c.Release("q1")
		c.Release("q1")
		if got := c.Count("q1"); got != 0 {
			t.Fatalf("expected count 0, got %d", got)
		}
	})

	t.Run("queues are independent", func(t *testing.T) {
		c := NewController()
		c.TryAdmit("q1", 1)
		if !c.TryAdmit("q2", 1) {
			t.Fatalf("expected q2 admit despite q1 being full")
		}
	})
}

func TestControllerRebuild(t *testing.T) {
	t.Parallel()

	c := NewController()
	c.TryAdmit("stale", 0)

	c.Rebuild(map[string]int{"q1": 2, "q2": 0})

	if got := c.Count("stale"); got != 0 {
		t.Fatalf("expected stale counter dropped, got %d", got)
	}
	if got := c.Count("q1"); got != 2 {
		t.Fatalf("expected rebuilt count 2, got %d", got)
	}
	if c.TryAdmit("q1", 2) {
		t.Fatalf("expected rebuilt queue to be full")
	}
}

func TestControllerConcurrentAdmits(t *testing.T) {
	t.Parallel()

	const (
		limit   = 4
		workers = 64
	)

	c := NewController()

	var wg sync.WaitGroup
	admitted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryAdmit("q1", limit) {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	won := 0
	for range admitted {
		won++
	}
	if won != limit {
		t.Fatalf("expected exactly %d admits, got %d", limit, won)
	}
	if got := c.Count("q1"); got != limit {
		t.Fatalf("expected count %d, got %d", limit, got)
	}
}
