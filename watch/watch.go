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

// Package watch is an ambient, CLI-facing helper: it notices when the
// script file backing the currently open Doc changed on disk outside the
// editor, so the host can offer "reload?" instead of silently clobbering
// it on the next save. Doc, Cache and the transcoder stay
// single-threaded; this is the only goroutine-driven package in this
// module.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ptk-tools/scripteditor/ptkcfg"
	"github.com/ptk-tools/scripteditor/ptkerr"
)

// Watcher notifies a single callback whenever the watched file is
// written by something other than this process's own Save call.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	onChange func()
	ignore   chan struct{}
	done     chan struct{}
}

// New starts watching the directory containing path (fsnotify watches
// directories, not individual files, so renames-over and editors that
// write-then-rename are still caught). onChange is invoked from the
// watcher's own goroutine whenever path itself is written or renamed
// onto.
func New(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ptkerr.OS(err, "create file watcher")
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, ptkerr.OS(err, "watch directory %s", dir)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     filepath.Clean(path),
		onChange: onChange,
		ignore:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// SuppressNext tells the watcher to swallow the very next write event for
// path: call this immediately before the host's own Save, so a self-write
// doesn't trigger a spurious "changed on disk" notification.
func (w *Watcher) SuppressNext() {
	select {
	case w.ignore <- struct{}{}:
	default:
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case <-w.ignore:
				continue // this write was our own Save
			default:
			}
			w.onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			ptkcfg.Trace("watch: %v", err)
		}
	}
}

// Close stops the watcher and releases the underlying OS resources.
func (w *Watcher) Close() {
	w.fsw.Close()
	<-w.done
}
