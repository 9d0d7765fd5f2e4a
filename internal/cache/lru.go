// Package cache holds an in-memory LRU used to memoise group balances.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a size-bounded least-recently-used cache, safe for concurrent use.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key  string
	data T
}

// NewLRU creates a cache holding at most maxSize entries. A non-positive
// maxSize disables caching: Set becomes a no-op.
func NewLRU[T any](maxSize int) *LRU[T] {
	return &LRU[T]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves a value and marks it as recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[T]).data, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *LRU[T]) Set(key string, data T) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[T]).data = data
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[T]{key: key, data: data})
	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[T]).key)
	}
}

// Delete removes a key.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

// Size returns the current number of entries.
func (c *LRU[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
