package plan

import (
	"sync"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Controller tracks accepted items per category against targets.
type Controller struct {
	mu      sync.Mutex
	targets map[model.Category]int
	counts  map[model.Category]int
	enabled bool
}

// NewController builds a controller. A category whose target is zero counts
// as satisfied; when no target is positive, Satisfied never reports true.
func NewController(targets map[model.Category]int) *Controller {
	c := &Controller{
		targets: make(map[model.Category]int, len(targets)),
		counts:  make(map[model.Category]int),
	}
	for cat, n := range targets {
		c.targets[cat] = n
		if n > 0 {
			c.enabled = true
		}
	}
	return c
}

// Accept records n accepted items for cat.
func (c *Controller) Accept(cat model.Category, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.counts[cat] += n
	c.mu.Unlock()
}

// Count returns the accepted count for cat.
func (c *Controller) Count(cat model.Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[cat]
}

// Counts returns a snapshot of all counts.
func (c *Controller) Counts() map[model.Category]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.Category]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Enabled reports whether any target is set.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Satisfied reports whether every target has been reached.
func (c *Controller) Satisfied() bool {
	if !c.enabled {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for cat, target := range c.targets {
		if c.counts[cat] < target {
			return false
		}
	}
	return true
}
