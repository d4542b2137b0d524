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

// Package ptkcfg holds process-wide tunables: a single struct of defaults
// that every core package reads, plus a trace toggle wired to an onexit
// cleanup hook.
package ptkcfg

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/dc0d/onexit"
)

type SettingsT struct {
	Trace bool
	// MemoryCapBytes and FileCapBytes are the cache tier limits.
	MemoryCapBytes int64
	FileCapBytes   int64
}

var Settings = SettingsT{
	Trace:          false,
	MemoryCapBytes: 256 * 1024 * 1024,
	FileCapBytes:   256 * 1024 * 1024,
}

var (
	traceMu  sync.Mutex
	traceLog *log.Logger
	traceOut io.Closer
)

// InitSettings wires the trace toggle and registers its shutdown hook.
func InitSettings() {
	onexit.Register(func() { SetTrace(false) })
}

// SetTrace enables or disables the process-wide trace log.
func SetTrace(enabled bool) {
	traceMu.Lock()
	defer traceMu.Unlock()
	Settings.Trace = enabled
	if !enabled {
		if traceOut != nil {
			traceOut.Close()
			traceOut = nil
		}
		traceLog = nil
		return
	}
	if traceLog == nil {
		traceLog = log.New(os.Stderr, "ptk: ", log.LstdFlags|log.Lmicroseconds)
	}
}

// Trace emits a line to the trace log if tracing is enabled; a no-op otherwise.
func Trace(format string, a ...any) {
	traceMu.Lock()
	l := traceLog
	traceMu.Unlock()
	if l != nil {
		l.Printf(format, a...)
	}
}
