package cache

import "container/list"

// fakeTierMover keeps "files" in an in-memory table so eviction can be
// exercised without touching a filesystem.
type fakeTierMover struct {
	files map[string]fakeFile
}

type fakeFile struct {
	data          []byte
	width, height int32
}

func newFakeTierMover() *fakeTierMover {
	return &fakeTierMover{files: make(map[string]fakeFile)}
}

func (m *fakeTierMover) writeToFile(keyHex string, width, height int32, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[keyHex] = fakeFile{data: buf, width: width, height: height}
	return nil
}

func (m *fakeTierMover) readFromFile(keyHex string) ([]byte, int32, int32, error) {
	f := m.files[keyHex]
	buf := make([]byte, len(f.data))
	copy(buf, f.data)
	return buf, f.width, f.height, nil
}

func (m *fakeTierMover) removeFile(keyHex string) {
	delete(m.files, keyHex)
}

func newTestCache(memoryCap, fileCap int64) (*Cache, *fakeTierMover) {
	mover := newFakeTierMover()
	c := &Cache{
		mover:     mover,
		entries:   make(map[string]*cacheEntry),
		lru:       list.New(),
		memoryCap: memoryCap,
		fileCap:   fileCap,
	}
	return c, mover
}
