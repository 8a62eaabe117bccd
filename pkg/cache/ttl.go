package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// TTLCache is a thread-safe cache with per-entry expiry and FIFO eviction.
// When the cache reaches capacity, the oldest-inserted entry is evicted
// regardless of how recently it was read.
type TTLCache[K comparable, V any] struct {
	capacity   int
	defaultTTL time.Duration
	items      map[K]*list.Element
	order      *list.List // insertion order, front = oldest
	mu         sync.Mutex
	onEvict    func(key K, value V)
	now        func() time.Time // overridable for tests
}

// New creates a TTL cache with the given capacity and default TTL.
// Capacity must be positive, otherwise it panics.
func New[K comparable, V any](capacity int, defaultTTL time.Duration) *TTLCache[K, V] {
	if capacity <= 0 {
		panic("cache capacity must be positive")
	}
	return &TTLCache[K, V]{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[K]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// SetEvictCallback sets a callback invoked for every evicted or cleared entry.
func (c *TTLCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// SetClock overrides the time source. Intended for tests.
func (c *TTLCache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get retrieves a value. Expired entries are removed on read and reported as
// missing. Reads do not affect eviction order.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	e := elem.Value.(*entry[K, V])
	if c.now().After(e.expiresAt) {
		c.removeElement(elem)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Put adds a value with the default TTL.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.PutTTL(key, value, c.defaultTTL)
}

// PutTTL adds a value with an explicit TTL. Updating an existing key
// overwrites the value and expiry but keeps the original insertion position.
// When the cache is full, the oldest-inserted entry is evicted first.
func (c *TTLCache[K, V]) PutTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		e.value = value
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	e := &entry[K, V]{key: key, value: value, createdAt: now, expiresAt: now.Add(ttl)}
	c.items[key] = c.order.PushBack(e)
}

// Remove deletes an entry. Returns the removed value and whether it existed.
func (c *TTLCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		c.removeElement(elem)
		return e.value, true
	}

	var zero V
	return zero, false
}

// Len returns the number of entries, including not-yet-collected expired ones.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries, invoking the evict callback for each.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for _, elem := range c.items {
			e := elem.Value.(*entry[K, V])
			c.onEvict(e.key, e.value)
		}
	}

	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// Must be called with lock held.
func (c *TTLCache[K, V]) evictOldest() {
	if elem := c.order.Front(); elem != nil {
		c.removeElement(elem)
	}
}

// Must be called with lock held.
func (c *TTLCache[K, V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	e := elem.Value.(*entry[K, V])
	delete(c.items, e.key)

	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}
