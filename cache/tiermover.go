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

package cache

// tierMover moves one entry's bytes between the memory tier and the file
// tier. Cache eviction is a pure function of (LRU order, tier limits,
// entry sizes) composed against this interface, so eviction logic can be
// unit tested without touching a filesystem by swapping in a fake.
type tierMover interface {
	// writeToFile persists data under keyHex and reports any failure.
	// Write failures are logged and swallowed by the caller: the entry
	// simply stays in memory.
	writeToFile(keyHex string, width, height int32, data []byte) error
	// readFromFile loads data back; failure propagates to the caller.
	readFromFile(keyHex string) (data []byte, width, height int32, err error)
	// removeFile deletes the backing file; best-effort.
	removeFile(keyHex string)
}
