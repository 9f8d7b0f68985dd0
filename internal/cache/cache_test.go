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


package cache

import (
	"testing"
)

func TestLRUBasic(t *testing.T) {
	c := New[[]string](Config{MaxEntries: 10, Enabled: true})

	c.Set("CREATE TABLE t (id integer);", []string{"CREATE TABLE"})

	got, ok := c.Get("CREATE TABLE t (id integer);")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if len(got) != 1 || got[0] != "CREATE TABLE" {
		t.Errorf("Expected [CREATE TABLE], got %v", got)
	}

	if _, ok := c.Get("SELECT 1;"); ok {
		t.Error("Expected cache miss")
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](Config{MaxEntries: 3, Enabled: true})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// a becomes the most recently used, so b is evicted next.
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected %s to still be cached", key)
		}
	}
}

func TestLRUOverwrite(t *testing.T) {
	c := New[int](Config{MaxEntries: 2, Enabled: true})

	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Expected 2, got %d", v)
	}
	if n := c.Stats().Entries; n != 1 {
		t.Errorf("Expected 1 entry, got %d", n)
	}
}

func TestLRUDisabled(t *testing.T) {
	c := New[int](Config{MaxEntries: 10, Enabled: false})

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("Expected cache miss when disabled")
	}

	c.SetEnabled(true)
	c.Set("a", 1)
	c.SetEnabled(false)
	if n := c.Stats().Entries; n != 0 {
		t.Errorf("Expected disabling to clear the cache, got %d entries", n)
	}
}

func TestLRUStats(t *testing.T) {
	c := New[int](Config{Enabled: true})

	c.Set("a", 1)
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("Expected 1 entry, got %d", stats.Entries)
	}
	if stats.MaxEntries != DefaultConfig().MaxEntries {
		t.Errorf("Expected default max entries, got %d", stats.MaxEntries)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %f", stats.HitRate)
	}

	c.Clear()
	if n := c.Stats().Entries; n != 0 {
		t.Errorf("Expected 0 entries after Clear, got %d", n)
	}
}
