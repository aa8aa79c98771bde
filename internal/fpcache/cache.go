// Package fpcache memoizes content fingerprints.
//
// Hashing is cheap for small records but trees are rebuilt from scratch on
// every change, so the same contents are hashed over and over. The cache
// keeps the most recently used content → digest pairs.
package fpcache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Digest is a raw SHA-256 sum.
type Digest = [32]byte

// Cache is a bounded LRU of content digests. A nil *Cache is valid and
// never stores anything.
type Cache struct {
	items *lru.Cache[string, Digest]
}

// New creates a cache holding up to size entries. size <= 0 returns nil.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	items, err := lru.New[string, Digest](size)
	if err != nil {
		return nil, err
	}
	return &Cache{items: items}, nil
}

// Get retrieves the digest for content.
func (c *Cache) Get(content string) (Digest, bool) {
	if c == nil {
		return Digest{}, false
	}
	return c.items.Get(content)
}

// Add records the digest for content.
func (c *Cache) Add(content string, d Digest) {
	if c == nil {
		return
	}
	c.items.Add(content, d)
}

// Has reports whether content is cached without touching recency.
func (c *Cache) Has(content string) bool {
	if c == nil {
		return false
	}
	return c.items.Contains(content)
}

// Remove drops content from the cache.
func (c *Cache) Remove(content string) {
	if c == nil {
		return
	}
	c.items.Remove(content)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.items.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.items.Purge()
}
