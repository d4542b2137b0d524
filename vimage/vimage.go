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

// Package vimage is a read-only virtual file adapter over cache.Cache:
// a host media framework opens a synthetic "<16-hex>.<ext>" path and
// gets back a still-image "video" with one frame, backed by whatever
// BGRA bytes are cached under that 64-bit key.
package vimage

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ptk-tools/scripteditor/cache"
	"github.com/ptk-tools/scripteditor/ptkerr"
)

// stemPattern accepts a 16-hex-digit stem with any single extension,
// sitting at the very start of path or immediately after a path separator.
// The leading alternation is required, not optional, so a longer run of
// hex digits with an unrelated prefix (e.g. a 20-char stem) never matches
// on its trailing 16 characters. The extension itself is never inspected.
var stemPattern = regexp.MustCompile(`(?i)(?:^|[/\\])([0-9a-f]{16})\.[^./\\]+$`)

// BitmapInfo is the fixed bitmap descriptor every handle reports:
// 32 bits/pixel, BI_RGB (uncompressed), dimensions from the cache entry.
type BitmapInfo struct {
	Width        int32
	Height       int32
	BitsPerPixel int32
	Compression  string // always "BI_RGB"
}

// Handle owns a copy of the cached bytes plus the bitmap descriptor
// describing them. The content is a single still image; the handle
// carries no frame count, frame rate or audio fields.
type Handle struct {
	id     uuid.UUID
	data   []byte
	bitmap BitmapInfo
}

func (h *Handle) ID() uuid.UUID    { return h.id }
func (h *Handle) Info() BitmapInfo { return h.bitmap }

// VirtualImageInput is the read-only file handle provider backed by a
// single cache.Cache. Handle ids are counter+time based, cheap, and not
// cryptographically meaningful, because they only need to be unique
// within the host process.
type VirtualImageInput struct {
	cache *cache.Cache

	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
}

func New(c *cache.Cache) *VirtualImageInput {
	return &VirtualImageInput{cache: c, handles: make(map[uuid.UUID]*Handle)}
}

// Open validates path, resolves it to a cache key and opens a handle onto
// the cached bytes. A path whose stem isn't exactly 16 hex chars, or
// whose key misses in the cache, both fail.
func (v *VirtualImageInput) Open(path string) (*Handle, error) {
	m := stemPattern.FindStringSubmatch(path)
	if m == nil {
		return nil, ptkerr.InvalidArgument("path %q is not a valid virtual image name", path)
	}
	key, err := strconv.ParseUint(strings.ToLower(m[1]), 16, 64)
	if err != nil {
		return nil, ptkerr.InvalidArgument("path %q has an unparseable key stem", path)
	}

	data, width, height, ok, err := v.cache.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ptkerr.New(ptkerr.KindFail, "no such virtual image: "+path)
	}

	h := &Handle{
		id:   newHandleID(),
		data: data,
		bitmap: BitmapInfo{
			Width:        width,
			Height:       height,
			BitsPerPixel: 32,
			Compression:  "BI_RGB",
		},
	}
	v.mu.Lock()
	v.handles[h.id] = h
	v.mu.Unlock()
	return h, nil
}

// Info reports the bitmap descriptor for an open handle. It carries no
// frame count, frame rate or audio description.
func (v *VirtualImageInput) Info(h *Handle) BitmapInfo {
	return h.bitmap
}

// ReadVideo copies the handle's bytes into buf and returns the byte
// count. frame is ignored: content is a still image.
func (v *VirtualImageInput) ReadVideo(h *Handle, frame int, buf []byte) int {
	return copy(buf, h.data)
}

// Close frees the bytes backing h. Closing an already-closed or unknown
// handle is a no-op.
func (v *VirtualImageInput) Close(h *Handle) {
	if h == nil {
		return
	}
	v.mu.Lock()
	delete(v.handles, h.id)
	v.mu.Unlock()
	h.data = nil
}

