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

package textcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ptk-tools/scripteditor/doc"
	"github.com/ptk-tools/scripteditor/ptkerr"
)

const metadataSentinel = "--metadata:"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Save renders d to the on-disk script format: the Lua-facing body first,
// then "--metadata:" followed by a compact JSON mirror of the whole tree
// carrying the checksum of the body that precedes it.
func Save(d *doc.Doc) ([]byte, error) {
	body := generateBody(d)
	checksum := fnv1a64(body)

	jd := jsonDoc{
		Version:                 d.Version(),
		Label:                   d.Label(),
		PSDPath:                 d.PSDPath(),
		ExclusiveSupportDefault: d.ExclusiveSupportDefault(),
		Information:             d.Information(),
		StoredChecksum:          fmt.Sprintf("%016x", checksum),
	}
	for i := 0; i < d.SelectorCount(); i++ {
		sel, err := d.Selector(i)
		if err != nil {
			return nil, err
		}
		jd.Selectors = append(jd.Selectors, toJSONSelector(sel))
	}

	payload, err := json.Marshal(jd)
	if err != nil {
		return nil, ptkerr.Wrap(err, ptkerr.KindFail, "marshal metadata")
	}

	out := make([]byte, 0, len(body)+len(metadataSentinel)+len(payload))
	out = append(out, body...)
	out = append(out, metadataSentinel...)
	out = append(out, payload...)
	return out, nil
}

// Load parses data and replaces d's entire contents, allocating fresh ids
// for every restored entity and resetting undo/redo. On any failure d
// is left untouched.
func Load(d *doc.Doc, data []byte) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimPrefix(data, []byte("@"))

	idx := sentinelIndex(data)
	if idx < 0 {
		return ptkerr.WithCode(ptkerr.KindInvalidFormat, ptkerr.CodeInvalidFormat, "missing --metadata: sentinel")
	}
	body := data[:idx]
	payload := data[idx+len(metadataSentinel):]

	var jd jsonDoc
	if err := json.Unmarshal(payload, &jd); err != nil {
		return ptkerr.WithCode(ptkerr.KindInvalidFormat, ptkerr.CodeInvalidFormat, "malformed metadata JSON: %v", err)
	}
	if jd.Version != 1 {
		return ptkerr.WithCode(ptkerr.KindInvalidFormat, ptkerr.CodeInvalidFormat, "unsupported version %d", jd.Version)
	}
	stored, err := strconv.ParseUint(strings.TrimSpace(jd.StoredChecksum), 16, 64)
	if err != nil {
		return ptkerr.WithCode(ptkerr.KindInvalidFormat, ptkerr.CodeInvalidFormat, "malformed stored_checksum: %v", err)
	}
	calculated := fnv1a64(body)

	nextID := uint32(1)
	selectors := make([]*doc.Selector, 0, len(jd.Selectors))
	for _, js := range jd.Selectors {
		sel, err := fromJSONSelector(js, &nextID)
		if err != nil {
			return err
		}
		selectors = append(selectors, sel)
	}

	meta := doc.Meta{
		Version:                 jd.Version,
		Label:                   jd.Label,
		PSDPath:                 jd.PSDPath,
		ExclusiveSupportDefault: jd.ExclusiveSupportDefault,
		Information:             jd.Information,
	}
	d.LoadState(meta, selectors, nextID, stored, calculated)
	return nil
}

// sentinelIndex finds the "--metadata:" sentinel occurring at the very
// start of data or at the start of a line.
func sentinelIndex(data []byte) int {
	if bytes.HasPrefix(data, []byte(metadataSentinel)) {
		return 0
	}
	marker := []byte("\n" + metadataSentinel)
	at := bytes.Index(data, marker)
	if at < 0 {
		return -1
	}
	return at + 1
}

func toJSONSelector(sel *doc.Selector) jsonSelector {
	js := jsonSelector{ID: sel.ID, Group: sel.Group}
	for _, it := range sel.Items {
		js.Items = append(js.Items, toJSONItem(it))
	}
	return js
}

func toJSONItem(it *doc.Item) jsonItem {
	ji := jsonItem{ID: it.ID, Kind: it.Kind.String(), Name: it.Name}
	if it.Kind == doc.ItemAnimation {
		ji.ScriptName = it.ScriptName
		for _, p := range it.Params {
			ji.Params = append(ji.Params, jsonParam{ID: p.ID, Key: p.Key, Value: p.Value})
		}
	} else {
		ji.Value = it.Value
	}
	return ji
}

func fromJSONSelector(js jsonSelector, nextID *uint32) (*doc.Selector, error) {
	sel := &doc.Selector{ID: *nextID, Group: js.Group}
	*nextID++
	for _, ji := range js.Items {
		it, err := fromJSONItem(ji, nextID)
		if err != nil {
			return nil, err
		}
		sel.Items = append(sel.Items, it)
	}
	return sel, nil
}

func fromJSONItem(ji jsonItem, nextID *uint32) (*doc.Item, error) {
	it := &doc.Item{ID: *nextID, Name: ji.Name}
	*nextID++
	switch ji.Kind {
	case "animation":
		it.Kind = doc.ItemAnimation
		it.ScriptName = ji.ScriptName
		for _, jp := range ji.Params {
			it.Params = append(it.Params, &doc.Param{ID: *nextID, Key: jp.Key, Value: jp.Value})
			*nextID++
		}
	case "value":
		it.Kind = doc.ItemValue
		it.Value = ji.Value
	default:
		return nil, ptkerr.WithCode(ptkerr.KindInvalidFormat, ptkerr.CodeInvalidFormat, "unknown item kind %q", ji.Kind)
	}
	return it, nil
}

// generateBody renders the Lua-facing script text: information/exclusive
// headers, one --select@sel<N>: line per non-empty selector (gaps from
// empty selectors preserved in N), and a single psdcall wrapper
// registering add_layer_selector for each non-empty selector in index
// order.
func generateBody(d *doc.Doc) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "--information:%s\n", informationText(d))
	exclusiveFlag := 0
	if d.ExclusiveSupportDefault() {
		exclusiveFlag = 1
	}
	fmt.Fprintf(&b, "--check@exclusive:%s,%d\n", d.Label(), exclusiveFlag)

	n := d.SelectorCount()
	nonEmpty := make([]int, 0, n)
	for i := 0; i < n; i++ {
		sel, err := d.Selector(i)
		if err != nil {
			continue
		}
		if len(sel.Items) == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, i)
		fmt.Fprintf(&b, "--select@sel%d:%s\n", i+1, sel.Group)
	}

	b.WriteString("psdcall(function(exclusive)\n")
	for _, i := range nonEmpty {
		sel, _ := d.Selector(i)
		fmt.Fprintf(&b, "  add_layer_selector(%d, function() return {\n", i+1)
		for _, it := range sel.Items {
			if it.Kind == doc.ItemAnimation {
				fmt.Fprintf(&b, "    [\"%s\"] = require(\"%s\").new({\n", escapeLua(it.Name), escapeLua(it.ScriptName))
				for _, p := range it.Params {
					fmt.Fprintf(&b, "      [\"%s\"] = \"%s\",\n", escapeLua(p.Key), escapeLua(p.Value))
				}
				b.WriteString("    }),\n")
			} else {
				fmt.Fprintf(&b, "    [\"%s\"] = \"%s\",\n", escapeLua(it.Name), escapeLua(it.Value))
			}
		}
		fmt.Fprintf(&b, "  } end, sel%d, {exclusive = exclusive ~= 0})\n", i+1)
	}
	b.WriteString("end)\n")

	return b.Bytes()
}

func informationText(d *doc.Doc) string {
	if info := d.Information(); info != nil {
		return *info
	}
	if d.PSDPath() != "" {
		base := filepath.Base(d.PSDPath())
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return d.Label()
}

func escapeLua(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
