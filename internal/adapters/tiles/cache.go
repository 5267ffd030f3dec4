package tiles

import (
	"container/list"
	"sync"
	"time"
)

// Cache is an LRU of tile bodies with a per-entry TTL.
type Cache struct {
	mu      sync.Mutex
	ll      *list.List
	items   map[string]*list.Element
	max     int
	ttl     time.Duration
	nowFunc func() time.Time
}

type cacheEntry struct {
	key         string
	data        []byte
	contentType string
	storedAt    time.Time
}

// NewCache creates a cache holding at most max tiles for ttl each.
func NewCache(max int, ttl time.Duration) *Cache {
	if max <= 0 {
		max = 1
	}
	return &Cache{
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		max:     max,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get returns a fresh tile and marks it recently used.
func (c *Cache) Get(key string) ([]byte, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, "", false
	}
	e := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.nowFunc().Sub(e.storedAt) > c.ttl {
		c.ll.Remove(el)
		delete(c.items, key)
		return nil, "", false
	}
	c.ll.MoveToFront(el)
	return e.data, e.contentType, true
}

// Put stores a tile, evicting the least recently used one when full.
func (c *Cache) Put(key string, data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*cacheEntry)
		e.data, e.contentType, e.storedAt = data, contentType, c.nowFunc()
		c.ll.MoveToFront(el)
		return
	}
	for c.ll.Len() >= c.max {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, data: data, contentType: contentType, storedAt: c.nowFunc()})
}

// Len is the number of cached tiles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
