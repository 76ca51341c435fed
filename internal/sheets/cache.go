package sheets

import "sync"

// ExistenceCache remembers which month sheets already carry a header row so
// repeated appends skip the lookup. It is an explicit object with a bounded
// key space, owned by whoever constructs the store rather than process-wide.
type ExistenceCache struct {
	mu    sync.Mutex
	max   int
	keys  map[string]struct{}
	order []string
}

// NewExistenceCache returns a cache holding at most max keys; the oldest key
// is evicted first. max <= 0 falls back to 128.
func NewExistenceCache(max int) *ExistenceCache {
	if max <= 0 {
		max = 128
	}
	return &ExistenceCache{
		max:  max,
		keys: make(map[string]struct{}, max),
	}
}

func (c *ExistenceCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keys[key]
	return ok
}

func (c *ExistenceCache) Add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return
	}
	for len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.keys, oldest)
	}
	c.keys[key] = struct{}{}
	c.order = append(c.order, key)
}

func (c *ExistenceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}
