package cache

import (
	"bytes"
	"testing"
)

func makeBGRA(fill byte, w, h int32) []byte {
	b := make([]byte, int(w)*int(h)*4)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestCacheMissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(256*1024*1024, 256*1024*1024)
	data, w, h, ok, err := c.Get(0xFEDCBA9876543210)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("get on an empty cache should miss")
	}
	if data != nil || w != 0 || h != 0 {
		t.Fatalf("miss should report nil/0/0, got %v %d %d", data, w, h)
	}
}

func TestPutThenGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(256*1024*1024, 256*1024*1024)
	want := makeBGRA(0x42, 4, 4)
	c.Put(1, want, 4, 4)

	got, w, h, ok, err := c.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if w != 4 || h != 4 {
		t.Fatalf("dims = %dx%d, want 4x4", w, h)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("returned bytes differ from what was put")
	}
}

func TestPutIsSticky(t *testing.T) {
	c, _ := newTestCache(256*1024*1024, 256*1024*1024)
	first := makeBGRA(0x11, 2, 2)
	second := makeBGRA(0x22, 2, 2)

	c.Put(1, first, 2, 2)
	c.Put(1, second, 2, 2)

	got, _, _, ok, err := c.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(got, first) {
		t.Fatal("second put with the same key must not replace the payload")
	}
}

func TestEvictionMovesColdestEntryToFileTier(t *testing.T) {
	// each entry is 64 bytes (4x4 BGRA); cap at 128 forces eviction once a
	// third entry arrives.
	c, mover := newTestCache(128, 1024)
	a := makeBGRA(0xAA, 4, 4)
	b := makeBGRA(0xBB, 4, 4)
	d := makeBGRA(0xDD, 4, 4)

	c.Put(1, a, 4, 4)
	c.Put(2, b, 4, 4)
	c.Put(3, d, 4, 4) // pushes memoryUsed to 192 > 128, evicts key 1 (coldest)

	if c.memoryUsed > c.memoryCap {
		t.Fatalf("memoryUsed = %d, want <= %d", c.memoryUsed, c.memoryCap)
	}
	e1 := c.entries[keyHex(1)]
	if !e1.inFile {
		t.Fatal("coldest entry should have moved to the file tier")
	}
	if _, ok := mover.files[keyHex(1)]; !ok {
		t.Fatal("evicted entry should be present in the file tier store")
	}

	got, _, _, ok, err := c.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !bytes.Equal(got, a) {
		t.Fatal("tier transparency: get must still return the original bytes once migrated back")
	}
	if e1.inFile {
		t.Fatal("after a successful get, the entry should be back in memory")
	}
}

func TestFileTierCapEvictsOldestEntryCompletely(t *testing.T) {
	// 64-byte entries; one fits in memory, one in the file tier. The third
	// put cascades: key 2 spills to file, which overflows the file tier and
	// drops key 1 (the file-tier oldest) entirely.
	c, mover := newTestCache(64, 64)
	c.Put(1, makeBGRA(1, 4, 4), 4, 4)
	c.Put(2, makeBGRA(2, 4, 4), 4, 4)
	c.Put(3, makeBGRA(3, 4, 4), 4, 4)

	if c.memoryUsed > c.memoryCap || c.fileUsed > c.fileCap {
		t.Fatalf("caps exceeded: memory=%d/%d file=%d/%d", c.memoryUsed, c.memoryCap, c.fileUsed, c.fileCap)
	}
	if _, ok := c.entries[keyHex(1)]; ok {
		t.Fatal("oldest entry should have been evicted from the cache entirely")
	}
	if _, ok := mover.files[keyHex(1)]; ok {
		t.Fatal("evicted entry's backing file should be gone")
	}

	_, _, _, ok, err := c.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("a fully evicted key should miss")
	}
	got, _, _, ok, err := c.Get(3)
	if err != nil || !ok {
		t.Fatalf("newest key should still hit: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, makeBGRA(3, 4, 4)) {
		t.Fatal("newest key's bytes should round-trip")
	}
}

func TestGetTierMigrationEnforcesFileCap(t *testing.T) {
	// Mixed entry sizes: key 1 is 64 bytes (4x4), key 2 is 128 bytes
	// (4x8). Pulling key 1 back from the file tier evicts the larger
	// key 2 into a file tier that cannot hold it, so the get must run
	// the file-tier eviction pass too.
	c, mover := newTestCache(128, 64)
	small := makeBGRA(0x01, 4, 4)
	large := makeBGRA(0x02, 4, 8)

	c.Put(1, small, 4, 4)
	c.Put(2, large, 4, 8) // spills key 1 (64 bytes) to the file tier

	got, _, _, ok, err := c.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !bytes.Equal(got, small) {
		t.Fatal("migrated entry should round-trip its original bytes")
	}
	if c.fileUsed > c.fileCap {
		t.Fatalf("fileUsed = %d, want <= %d", c.fileUsed, c.fileCap)
	}
	if _, ok := c.entries[keyHex(2)]; ok {
		t.Fatal("oversized spilled entry should have been evicted from the file tier")
	}
	if _, ok := mover.files[keyHex(2)]; ok {
		t.Fatal("evicted entry's backing file should be gone")
	}
}

func TestClearResetsCountersAndRemovesFiles(t *testing.T) {
	c, mover := newTestCache(64, 1024)
	c.Put(1, makeBGRA(1, 4, 4), 4, 4)
	c.Put(2, makeBGRA(2, 4, 4), 4, 4) // forces key 1 to file tier

	c.Clear()

	if c.memoryUsed != 0 || c.fileUsed != 0 {
		t.Fatalf("clear should zero both counters, got memory=%d file=%d", c.memoryUsed, c.fileUsed)
	}
	if len(c.entries) != 0 {
		t.Fatal("clear should drop every entry")
	}
	if len(mover.files) != 0 {
		t.Fatal("clear should remove every backing file")
	}
}
