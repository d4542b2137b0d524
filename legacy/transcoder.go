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

// Package legacy rewrites old Shift_JIS PSDToolKit scripts into the
// current UTF-8 dialect. golang.org/x/text/encoding/japanese supplies
// the Shift_JIS codec.
package legacy

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ptk-tools/scripteditor/ptkerr"
)

// legacySentinel must be present in the raw Shift_JIS bytes for input to
// be accepted as a legacy script.
const legacySentinel = "PSD:addstate("

// substitution is one ordered, non-overlapping textual rewrite rule.
type substitution struct {
	find    string
	replace string
}

// Rules run in this exact order; each is applied globally over the whole
// buffer before the next rule starts, left to right.
var rules = []substitution{
	{`require("PSDToolKit").Blinker.new(`, `require("PSDToolKit.Blinker").new_legacy(`},
	{`require("PSDToolKit").LipSyncSimple.new(`, `require("PSDToolKit.LipSync").new_legacy(`},
	{`require("PSDToolKit").LipSyncLab.new(`, `require("PSDToolKit.LipSyncLab").new_legacy(`},
	{`PSD:addstate(`, `require("PSDToolKit").add_state_legacy(`},
}

// Transcode validates and converts legacy Shift_JIS bytes to the current
// UTF-8 dialect. Empty input always succeeds with empty output: no
// sentinel can appear in nothing, so no validation runs.
func Transcode(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if !bytes.Contains(input, []byte(legacySentinel)) {
		return nil, ptkerr.WithCode(ptkerr.KindNotLegacyScript, ptkerr.CodeNotLegacyScript,
			"input does not contain the legacy sentinel %q", legacySentinel)
	}

	utf8Bytes, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), input)
	if err != nil {
		return nil, ptkerr.Wrap(err, ptkerr.KindFail, "shift_jis to utf-8 conversion failed")
	}

	text := string(utf8Bytes)
	for _, r := range rules {
		text = strings.ReplaceAll(text, r.find, r.replace)
	}
	return []byte(text), nil
}
