/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


/*
Package cache provides a bounded LRU cache for parsed scripts.

Test suites tend to run the same schema and fixture scripts against many
fresh models. Parsing is pure, so the statements produced for a given
script text can be shared between executions and between models:

	c := cache.New[[]sql.Statement](cache.DefaultConfig())

	if stmts, ok := c.Get(key); ok {
		return stmts
	}
	stmts := parse(text)
	c.Set(key, stmts)

Cached values must not be modified by callers.
*/
package cache

import (
	"container/list"
	"sync"
)

// Config holds the configuration for a cache.
type Config struct {
	// MaxEntries is the maximum number of cached scripts.
	// When exceeded, the least recently used entries are evicted.
	MaxEntries int

	// Enabled controls whether caching is active.
	Enabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 256,
		Enabled:    true,
	}
}

type entry[V any] struct {
	key     string
	value   V
	element *list.Element
}

// LRU maps keys to values with least recently used eviction. It is safe
// for concurrent use.
type LRU[V any] struct {
	config Config

	mu    sync.Mutex
	items map[string]*entry[V]
	// lru tracks access order, most recent at the front.
	lru *list.List

	hits   int64
	misses int64
}

// New creates an LRU with the given configuration.
func New[V any](config Config) *LRU[V] {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultConfig().MaxEntries
	}
	return &LRU[V]{
		config: config,
		items:  make(map[string]*entry[V]),
		lru:    list.New(),
	}
}

// Get returns the value cached under key.
func (c *LRU[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.config.Enabled {
		return zero, false
	}
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	c.lru.MoveToFront(e.element)
	c.hits++
	return e.value, true
}

// Set caches value under key, evicting the oldest entries when full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.config.Enabled {
		return
	}
	if e, ok := c.items[key]; ok {
		e.value = value
		c.lru.MoveToFront(e.element)
		return
	}

	for len(c.items) >= c.config.MaxEntries {
		c.evictOldest()
	}

	e := &entry[V]{key: key, value: value}
	e.element = c.lru.PushFront(e)
	c.items[key] = e
}

// Clear removes every entry. Statistics are kept.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
	c.lru = list.New()
}

// evictOldest removes the least recently used entry (must hold lock).
func (c *LRU[V]) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	e := elem.Value.(*entry[V])
	delete(c.items, e.key)
	c.lru.Remove(elem)
}

// Stats holds cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Entries    int
	MaxEntries int
	HitRate    float64
}

// Stats returns current cache statistics.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Entries:    len(c.items),
		MaxEntries: c.config.MaxEntries,
		HitRate:    hitRate,
	}
}

// SetEnabled enables or disables the cache. Disabling also clears it.
func (c *LRU[V]) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.Enabled = enabled
	if !enabled {
		c.items = make(map[string]*entry[V])
		c.lru = list.New()
	}
}
