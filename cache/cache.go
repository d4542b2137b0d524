/*
Copyright (C) 2024  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package cache implements a two-tier (memory then file) LRU store for
// content-addressed BGRA image bytes: one cacheEntry per 64-bit content
// key, with an explicit LRU list so eviction follows strict
// least-recently-used order across both tiers.
package cache

import (
	"container/list"
	"fmt"
	"sync/atomic"

	units "github.com/docker/go-units"

	"github.com/ptk-tools/scripteditor/ptkcfg"
	"github.com/ptk-tools/scripteditor/ptkerr"
)

// instanceCounter is the only process-wide mutable state: it feeds the
// ptk_<pid>_<instance> directory suffix and only needs a monotonically
// increasing value, so a plain atomic counter is sufficient.
var instanceCounter int64

type cacheEntry struct {
	keyHex string
	width  int32
	height int32
	data   []byte // nil when inFile
	inFile bool
	elem   *list.Element // this entry's node in the LRU list
}

// Cache is a two-tier LRU image cache: recently used entries live in
// memory, colder ones get written out to backing files under an
// exclusively-locked temp directory.
type Cache struct {
	dir      string
	lock     dirLock
	mover    tierMover
	instance int64

	entries    map[string]*cacheEntry
	lru        *list.List // front = most recently used
	memoryUsed int64
	fileUsed   int64
	memoryCap  int64
	fileCap    int64
}

// Create runs orphan reclamation, then allocates a fresh exclusively
// locked cache directory under the OS temp dir.
func Create() (*Cache, error) {
	reclaimOrphans()

	inst := atomic.AddInt64(&instanceCounter, 1)
	dir, lock, err := acquireCacheDir(inst)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		dir:       dir,
		lock:      lock,
		mover:     &fileTierMover{dir: dir},
		instance:  inst,
		entries:   make(map[string]*cacheEntry),
		lru:       list.New(),
		memoryCap: ptkcfg.Settings.MemoryCapBytes,
		fileCap:   ptkcfg.Settings.FileCapBytes,
	}
	ptkcfg.Trace("cache: created %s (memory_cap=%s file_cap=%s)", dir,
		units.BytesSize(float64(c.memoryCap)), units.BytesSize(float64(c.fileCap)))
	return c, nil
}

// Destroy clears all entries, releases the exclusive directory handle and
// removes the now-empty directory. Destroy on a nil Cache is a no-op.
func (c *Cache) Destroy() {
	if c == nil {
		return
	}
	c.Clear()
	releaseCacheDir(c.dir, c.lock)
}

func keyHex(key uint64) string {
	return fmt.Sprintf("%016x", key)
}

// Put stores bgra bytes under key. If key already exists, the payload is
// left untouched and only LRU order changes: a value written earlier
// survives a later put with the same key.
func (c *Cache) Put(key uint64, bgra []byte, width, height int32) {
	kh := keyHex(key)
	if e, ok := c.entries[kh]; ok {
		c.lru.MoveToFront(e.elem)
		return
	}

	buf := make([]byte, len(bgra))
	copy(buf, bgra)
	e := &cacheEntry{keyHex: kh, width: width, height: height, data: buf}
	e.elem = c.lru.PushFront(e)
	c.entries[kh] = e
	c.memoryUsed += int64(len(buf))

	c.evictMemoryToFile()
	c.evictFileTier()
}

// Get returns a fresh copy of the bytes stored under key, or ok == false
// on a miss (a miss is not an error).
func (c *Cache) Get(key uint64) (data []byte, width, height int32, ok bool, err error) {
	kh := keyHex(key)
	e, found := c.entries[kh]
	if !found {
		return nil, 0, 0, false, nil
	}
	c.lru.MoveToFront(e.elem)

	if e.inFile {
		bytes, w, h, rerr := c.mover.readFromFile(kh)
		if rerr != nil {
			return nil, 0, 0, false, rerr
		}
		if w != e.width || h != e.height {
			return nil, 0, 0, false, ptkerr.Fail("cache file dimension mismatch for %s: got %dx%d, want %dx%d", kh, w, h, e.width, e.height)
		}
		c.mover.removeFile(kh)
		e.data = bytes
		e.inFile = false
		c.fileUsed -= int64(len(bytes))
		c.memoryUsed += int64(len(bytes))

		c.evictMemoryToFile()
		c.evictFileTier()
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, e.width, e.height, true, nil
}

// Clear frees every entry's bytes, deleting backing files for file-tier
// entries, and resets both counters.
func (c *Cache) Clear() {
	for kh, e := range c.entries {
		if e.inFile {
			c.mover.removeFile(kh)
		}
	}
	c.entries = make(map[string]*cacheEntry)
	c.lru = list.New()
	c.memoryUsed = 0
	c.fileUsed = 0
}

// Stat is a read-only introspection surface for trace lines and the
// shell's cache-stat command.
type Stat struct {
	EntryCount int
	MemoryUsed int64
	FileUsed   int64
	MemoryCap  int64
	FileCap    int64
}

func (c *Cache) Stat() Stat {
	return Stat{
		EntryCount: len(c.entries),
		MemoryUsed: c.memoryUsed,
		FileUsed:   c.fileUsed,
		MemoryCap:  c.memoryCap,
		FileCap:    c.fileCap,
	}
}

// evictMemoryToFile pushes the coldest memory-tier entries out to the
// file tier while memoryUsed exceeds memoryCap; both Put and a
// file-to-memory Get run this pass. A write failure is logged and
// swallowed; that entry simply stays in memory.
func (c *Cache) evictMemoryToFile() {
	for c.memoryUsed > c.memoryCap {
		victim := c.coldestMemoryEntry()
		if victim == nil {
			return
		}
		if err := c.mover.writeToFile(victim.keyHex, victim.width, victim.height, victim.data); err != nil {
			ptkcfg.Trace("cache: evict-to-file failed for %s: %v", victim.keyHex, err)
			return
		}
		c.memoryUsed -= int64(len(victim.data))
		c.fileUsed += int64(len(victim.data))
		victim.data = nil
		victim.inFile = true
	}
}

func (c *Cache) coldestMemoryEntry() *cacheEntry {
	for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
		e := elem.Value.(*cacheEntry)
		if !e.inFile {
			return e
		}
	}
	return nil
}

// evictFileTier deletes file-tier entries in LRU-oldest order while
// fileUsed exceeds fileCap.
func (c *Cache) evictFileTier() {
	for c.fileUsed > c.fileCap {
		victim := c.coldestFileEntry()
		if victim == nil {
			return
		}
		size := int64(victim.width) * int64(victim.height) * 4
		c.mover.removeFile(victim.keyHex)
		delete(c.entries, victim.keyHex)
		c.lru.Remove(victim.elem)
		c.fileUsed -= size
	}
}

func (c *Cache) coldestFileEntry() *cacheEntry {
	for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
		e := elem.Value.(*cacheEntry)
		if e.inFile {
			return e
		}
	}
	return nil
}
