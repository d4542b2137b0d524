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

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/ptk-tools/scripteditor/ptkerr"
)

// fileTierMover is the real tierMover: "<dir>/<keyHex>.bin" holding
// little-endian int32 width, int32 height, then width*height*4 raw BGRA
// bytes.
type fileTierMover struct {
	dir string
}

func (m *fileTierMover) path(keyHex string) string {
	return filepath.Join(m.dir, keyHex+".bin")
}

func (m *fileTierMover) writeToFile(keyHex string, width, height int32, data []byte) error {
	f, err := os.Create(m.path(keyHex))
	if err != nil {
		return ptkerr.OS(err, "create cache file for %s", keyHex)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, width); err != nil {
		return ptkerr.OS(err, "write width for %s", keyHex)
	}
	if err := binary.Write(f, binary.LittleEndian, height); err != nil {
		return ptkerr.OS(err, "write height for %s", keyHex)
	}
	if _, err := f.Write(data); err != nil {
		return ptkerr.OS(err, "write payload for %s", keyHex)
	}
	return nil
}

func (m *fileTierMover) readFromFile(keyHex string) ([]byte, int32, int32, error) {
	f, err := os.Open(m.path(keyHex))
	if err != nil {
		return nil, 0, 0, ptkerr.OS(err, "open cache file for %s", keyHex)
	}
	defer f.Close()

	var width, height int32
	if err := binary.Read(f, binary.LittleEndian, &width); err != nil {
		return nil, 0, 0, ptkerr.OS(err, "read width for %s", keyHex)
	}
	if err := binary.Read(f, binary.LittleEndian, &height); err != nil {
		return nil, 0, 0, ptkerr.OS(err, "read height for %s", keyHex)
	}
	data := make([]byte, int64(width)*int64(height)*4)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, 0, 0, ptkerr.OS(err, "read payload for %s", keyHex)
	}
	return data, width, height, nil
}

func (m *fileTierMover) removeFile(keyHex string) {
	os.Remove(m.path(keyHex))
}
