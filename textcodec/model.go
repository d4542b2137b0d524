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

// Package textcodec turns a Doc into the script body + embedded JSON
// metadata format a host expects on disk, and back. The metadata is one
// JSON object mirroring the whole document tree, plus a checksum over
// the non-JSON preamble.
package textcodec

// jsonParam, jsonItem, jsonSelector and jsonDoc together are the exact
// shape of the "--metadata:{...}" JSON payload. Field
// names are the wire contract: changing them changes the on-disk format.
type jsonParam struct {
	ID    uint32 `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type jsonItem struct {
	ID         uint32      `json:"id"`
	Kind       string      `json:"kind"` // "value" | "animation"
	Name       string      `json:"name"`
	Value      string      `json:"value,omitempty"`
	ScriptName string      `json:"script_name,omitempty"`
	Params     []jsonParam `json:"params,omitempty"`
}

type jsonSelector struct {
	ID    uint32     `json:"id"`
	Group string     `json:"group"`
	Items []jsonItem `json:"items"`
}

type jsonDoc struct {
	Version                 int            `json:"version"`
	Label                   string         `json:"label"`
	PSDPath                 string         `json:"psd_path"`
	ExclusiveSupportDefault bool           `json:"exclusive_support_default"`
	Information             *string        `json:"information"`
	Selectors               []jsonSelector `json:"selectors"`
	StoredChecksum          string         `json:"stored_checksum"`
}
