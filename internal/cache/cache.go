// Package cache stores AgentResult outcomes keyed by (pr, head-sha,
// config-hash, agent-id), so PassRunner can skip re-running an agent
// whose inputs haven't changed. Only Success results are cached; TTL is
// external (callers re-create the cache per run or evict by wall-clock
// themselves).
package cache

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codepathfinder/prreview/internal/model"
)

// DefaultSize is the number of entries kept before LRU eviction.
const DefaultSize = 1024

// Key identifies one cacheable agent run.
type Key struct {
	PRID       string
	HeadSHA    string
	ConfigHash string
	AgentID    string
}

// Hash derives the stable cache key string spec §3 calls for:
// hash(pr-id, head-sha, config-hash, agent-id). Not a security digest, so
// xxhash rather than sha256.
func (k Key) Hash() string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s|%s|%s|%s", k.PRID, k.HeadSHA, k.ConfigHash, k.AgentID))
	return strconv.FormatUint(sum, 16)
}

// Cache is an LRU-backed store of model.CacheEntry, read-many/write-once
// per key: a second write for the same key is idempotent when the content
// is identical, last-writer-wins otherwise.
type Cache struct {
	lru *lru.Cache[string, model.CacheEntry]
}

// New creates a Cache holding up to size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, model.CacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Get retrieves the cached AgentResult for key, if any.
func (c *Cache) Get(key Key) (model.CacheEntry, bool) {
	return c.lru.Get(key.Hash())
}

// Put stores result under key, but only when it is a Success — Failure
// and Skipped results are never cached, since re-running them is exactly
// what a cache miss should trigger.
func (c *Cache) Put(key Key, result model.AgentResult) {
	success, ok := result.(model.AgentSuccess)
	if !ok {
		return
	}
	c.lru.Add(key.Hash(), model.CacheEntry{Key: key.Hash(), Result: success})
}
