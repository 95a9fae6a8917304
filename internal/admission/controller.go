// Package admission tracks how many tickets each queue currently has in
// the processing state and gates the waiting-to-processing transition.
//
// The controller is a derived cache over ledger state, not a source of
// truth: Rebuild reloads it from a count of processing tickets per
// queue, so a process can reconstruct it at startup without any durable
// store of its own.
package admission

import "sync"

type Controller struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewController() *Controller {
	return &Controller{counts: make(map[string]int)}
}

// TryAdmit reserves one processing slot for queueID. It succeeds when
// limit is zero (unbounded) or the current count is strictly below
// limit; on refusal the count is left untouched.
func (c *Controller) TryAdmit(queueID string, limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit > 0 && c.counts[queueID] >= limit {
		return false
	}
	c.counts[queueID]++
	return true
}

// Release frees one processing slot for queueID, floored at zero.
func (c *Controller) Release(queueID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts[queueID] <= 1 {
		delete(c.counts, queueID)
		return
	}
	c.counts[queueID]--
}

// Count returns the tracked processing count for queueID.
func (c *Controller) Count(queueID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[queueID]
}

// Rebuild replaces every counter with the given per-queue processing
// counts, typically read from the ledger at startup.
func (c *Controller) Rebuild(counts map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = make(map[string]int, len(counts))
	for queueID, n := range counts {
		if n > 0 {
			c.counts[queueID] = n
		}
	}
}
