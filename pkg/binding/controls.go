package binding

import "sync"

// Controls holds the flat control values keyed by data path. It is the only
// mutable surface of a live form; everything else is rebuilt per generation.
type Controls struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewControls returns an empty control set.
func NewControls() *Controls {
	return &Controls{values: make(map[string]any)}
}

// Set stores a control value.
func (c *Controls) Set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[path] = value
}

// Get reads a control value.
func (c *Controls) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[path]
	return value, ok
}

// Delete drops a control value, typically after an array item removal.
func (c *Controls) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, path)
}

// Snapshot copies the current values.
func (c *Controls) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for path, value := range c.values {
		out[path] = value
	}
	return out
}
