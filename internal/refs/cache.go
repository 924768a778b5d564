// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refs

import (
	"errors"
	"os"
	"sort"
	"time"
)

// Cache is the in-memory view of the packed-refs file for one backend
// instance. It is lazily populated and refreshed by comparing the packed
// file's mtime against the last time it was read.
//
// Not safe for concurrent mutation: the backend that owns a Cache is
// expected to drive each call to completion before starting another, per
// the single-threaded-cooperative model of the reference database as a
// whole.
type Cache struct {
	path    string
	entries map[string]*PackedEntry
	mtime   time.Time
	loaded  bool
}

// NewCache creates an unpopulated cache for the packed file at path. The
// first call to Refresh populates it.
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]*PackedEntry)}
}

// Refresh stats the packed file; if absent, clears the cache; if present
// and its mtime has not changed since the last successful read, does
// nothing; otherwise re-parses and repopulates. A parse failure leaves the
// cache empty and returns the Corrupt error verbatim.
func (c *Cache) Refresh() error {
	fi, err := os.Stat(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.entries = make(map[string]*PackedEntry)
		c.mtime = time.Time{}
		c.loaded = false
		return nil
	}
	if err != nil {
		return ioErr(err)
	}

	if c.loaded && fi.ModTime().Equal(c.mtime) {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return ioErr(err)
	}

	entries, _, err := ParsePacked(data)
	if err != nil {
		c.entries = make(map[string]*PackedEntry)
		c.loaded = false
		return err
	}

	m := make(map[string]*PackedEntry, len(entries))
	for i := range entries {
		m[entries[i].Name] = &entries[i]
	}

	c.entries = m
	c.mtime = fi.ModTime()
	c.loaded = true
	return nil
}

// Get returns the packed entry for name, if any. The returned pointer
// aliases the cache's own storage and must not be retained past the next
// mutation or Refresh; callers that need a stable copy should dereference
// it immediately.
func (c *Cache) Get(name string) (*PackedEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Delete removes name from the cache, used by the single-entry delete path
// which does not go through a full compaction.
func (c *Cache) Delete(name string) {
	delete(c.entries, name)
}

// Upsert inserts or overwrites the entry for e.Name, used while absorbing
// loose references during compress.
func (c *Cache) Upsert(e PackedEntry) {
	stored := e
	c.entries[e.Name] = &stored
}

// Snapshot returns an independent, name-sorted copy of the cache's current
// entries. Callers that must not observe a mid-operation cache rebuild
// (notably the iterator) take a Snapshot once and never consult the cache
// again.
func (c *Cache) Snapshot() []PackedEntry {
	out := make([]PackedEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Mtime reports the packed file's modification time as of the last
// successful Refresh, or the zero Time if the cache has never loaded a
// file.
func (c *Cache) Mtime() time.Time { return c.mtime }
