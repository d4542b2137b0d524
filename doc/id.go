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

package doc

import "github.com/ptk-tools/scripteditor/ptkerr"

// idAllocator issues unique, monotonically increasing 32-bit ids. 0 is
// the "no id" sentinel and is never handed out; ids are never reused.
type idAllocator struct {
	next uint32
}

func newIDAllocator() idAllocator {
	return idAllocator{next: 1}
}

// allocate returns the next id, or a fatal out_of_memory error on overflow.
// Practical documents never come close to exhausting a 32-bit space.
func (a *idAllocator) allocate() (uint32, error) {
	if a.next == 0 {
		return 0, ptkerr.New(ptkerr.KindOutOfMemory, "id space exhausted")
	}
	id := a.next
	a.next++
	return id, nil
}
