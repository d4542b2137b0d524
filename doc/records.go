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

// Every record type below performs, in apply, exactly the action its name
// describes and returns the record that undoes that action, so the same
// apply method serves both undo (applied to a forward-recorded reverse
// op) and redo (applied to the inverse that undo just produced). Each
// record is constructed against already-validated state, so apply itself
// is total and cannot fail.

type setLabelRecord struct{ value string }

func (r setLabelRecord) apply(d *Doc) (record, Notification) {
	prev := d.meta.Label
	d.meta.Label = r.value
	return setLabelRecord{value: prev}, Notification{Type: OpSetLabel}
}

type setPsdPathRecord struct{ value string }

func (r setPsdPathRecord) apply(d *Doc) (record, Notification) {
	prev := d.meta.PSDPath
	d.meta.PSDPath = r.value
	return setPsdPathRecord{value: prev}, Notification{Type: OpSetPsdPath}
}

type setExclusiveSupportDefaultRecord struct{ value bool }

func (r setExclusiveSupportDefaultRecord) apply(d *Doc) (record, Notification) {
	prev := d.meta.ExclusiveSupportDefault
	d.meta.ExclusiveSupportDefault = r.value
	return setExclusiveSupportDefaultRecord{value: prev}, Notification{Type: OpSetExclusiveSupportDefault}
}

type setInformationRecord struct{ value *string }

func (r setInformationRecord) apply(d *Doc) (record, Notification) {
	prev := d.meta.Information
	d.meta.Information = r.value
	return setInformationRecord{value: prev}, Notification{Type: OpSetInformation}
}

// --- selectors ---

type selectorInsertRecord struct {
	idx int
	sel *Selector
}

func (r selectorInsertRecord) apply(d *Doc) (record, Notification) {
	d.selectors = append(d.selectors, nil)
	copy(d.selectors[r.idx+1:], d.selectors[r.idx:])
	d.selectors[r.idx] = r.sel
	return selectorRemoveRecord{idx: r.idx}, Notification{Type: OpSelectorInsert, SelIdx: r.idx}
}

type selectorRemoveRecord struct{ idx int }

func (r selectorRemoveRecord) apply(d *Doc) (record, Notification) {
	removed := d.selectors[r.idx]
	d.selectors = append(d.selectors[:r.idx], d.selectors[r.idx+1:]...)
	return selectorInsertRecord{idx: r.idx, sel: removed}, Notification{Type: OpSelectorRemove, SelIdx: r.idx}
}

type selectorSetGroupRecord struct {
	idx   int
	value string
}

func (r selectorSetGroupRecord) apply(d *Doc) (record, Notification) {
	sel := d.selectors[r.idx]
	prev := sel.Group
	sel.Group = r.value
	return selectorSetGroupRecord{idx: r.idx, value: prev}, Notification{Type: OpSelectorSetGroup, SelIdx: r.idx}
}

// selectorMoveRecord moves the selector at from to index to (after
// removal); its inverse is the same move with from/to swapped, which is
// self-symmetric regardless of direction.
type selectorMoveRecord struct{ from, to int }

func (r selectorMoveRecord) apply(d *Doc) (record, Notification) {
	sel := d.selectors[r.from]
	d.selectors = append(d.selectors[:r.from], d.selectors[r.from+1:]...)
	d.selectors = append(d.selectors, nil)
	copy(d.selectors[r.to+1:], d.selectors[r.to:])
	d.selectors[r.to] = sel
	return selectorMoveRecord{from: r.to, to: r.from}, Notification{Type: OpSelectorMove, SelIdx: r.from, ToSelIdx: r.to}
}

// --- items ---

type itemInsertRecord struct {
	selIdx, idx int
	item        *Item
}

func (r itemInsertRecord) apply(d *Doc) (record, Notification) {
	sel := d.selectors[r.selIdx]
	sel.Items = append(sel.Items, nil)
	copy(sel.Items[r.idx+1:], sel.Items[r.idx:])
	sel.Items[r.idx] = r.item
	return itemRemoveRecord{selIdx: r.selIdx, idx: r.idx}, Notification{Type: OpItemInsert, SelIdx: r.selIdx, ItemIdx: r.idx}
}

type itemRemoveRecord struct{ selIdx, idx int }

func (r itemRemoveRecord) apply(d *Doc) (record, Notification) {
	sel := d.selectors[r.selIdx]
	removed := sel.Items[r.idx]
	sel.Items = append(sel.Items[:r.idx], sel.Items[r.idx+1:]...)
	return itemInsertRecord{selIdx: r.selIdx, idx: r.idx, item: removed}, Notification{Type: OpItemRemove, SelIdx: r.selIdx, ItemIdx: r.idx}
}

type itemSetNameRecord struct {
	selIdx, idx int
	value       string
}

func (r itemSetNameRecord) apply(d *Doc) (record, Notification) {
	it := d.selectors[r.selIdx].Items[r.idx]
	prev := it.Name
	it.Name = r.value
	return itemSetNameRecord{selIdx: r.selIdx, idx: r.idx, value: prev}, Notification{Type: OpItemSetName, SelIdx: r.selIdx, ItemIdx: r.idx}
}

type itemSetValueRecord struct {
	selIdx, idx int
	value       string
}

func (r itemSetValueRecord) apply(d *Doc) (record, Notification) {
	it := d.selectors[r.selIdx].Items[r.idx]
	prev := it.Value
	it.Value = r.value
	return itemSetValueRecord{selIdx: r.selIdx, idx: r.idx, value: prev}, Notification{Type: OpItemSetValue, SelIdx: r.selIdx, ItemIdx: r.idx}
}

type itemSetScriptNameRecord struct {
	selIdx, idx int
	value       string
}

func (r itemSetScriptNameRecord) apply(d *Doc) (record, Notification) {
	it := d.selectors[r.selIdx].Items[r.idx]
	prev := it.ScriptName
	it.ScriptName = r.value
	return itemSetScriptNameRecord{selIdx: r.selIdx, idx: r.idx, value: prev}, Notification{Type: OpItemSetScriptName, SelIdx: r.selIdx, ItemIdx: r.idx}
}

// itemMoveRecord relocates an item, possibly across selectors.
type itemMoveRecord struct {
	fromSel, fromIdx int
	toSel, toIdx     int
}

func (r itemMoveRecord) apply(d *Doc) (record, Notification) {
	src := d.selectors[r.fromSel]
	it := src.Items[r.fromIdx]
	src.Items = append(src.Items[:r.fromIdx], src.Items[r.fromIdx+1:]...)

	dst := d.selectors[r.toSel]
	dst.Items = append(dst.Items, nil)
	copy(dst.Items[r.toIdx+1:], dst.Items[r.toIdx:])
	dst.Items[r.toIdx] = it

	inv := itemMoveRecord{fromSel: r.toSel, fromIdx: r.toIdx, toSel: r.fromSel, toIdx: r.fromIdx}
	return inv, Notification{Type: OpItemMove, SelIdx: r.fromSel, ItemIdx: r.fromIdx, ToSelIdx: r.toSel, ToIdx: r.toIdx}
}

// --- params ---

type paramInsertRecord struct {
	selIdx, itemIdx, idx int
	param                *Param
}

func (r paramInsertRecord) apply(d *Doc) (record, Notification) {
	it := d.selectors[r.selIdx].Items[r.itemIdx]
	it.Params = append(it.Params, nil)
	copy(it.Params[r.idx+1:], it.Params[r.idx:])
	it.Params[r.idx] = r.param
	inv := paramRemoveRecord{selIdx: r.selIdx, itemIdx: r.itemIdx, idx: r.idx}
	return inv, Notification{Type: OpParamInsert, SelIdx: r.selIdx, ItemIdx: r.itemIdx, ParamIdx: r.idx}
}

type paramRemoveRecord struct{ selIdx, itemIdx, idx int }

func (r paramRemoveRecord) apply(d *Doc) (record, Notification) {
	it := d.selectors[r.selIdx].Items[r.itemIdx]
	removed := it.Params[r.idx]
	it.Params = append(it.Params[:r.idx], it.Params[r.idx+1:]...)
	inv := paramInsertRecord{selIdx: r.selIdx, itemIdx: r.itemIdx, idx: r.idx, param: removed}
	return inv, Notification{Type: OpParamRemove, SelIdx: r.selIdx, ItemIdx: r.itemIdx, ParamIdx: r.idx}
}

type paramSetKeyRecord struct {
	selIdx, itemIdx, idx int
	value                string
}

func (r paramSetKeyRecord) apply(d *Doc) (record, Notification) {
	p := d.selectors[r.selIdx].Items[r.itemIdx].Params[r.idx]
	prev := p.Key
	p.Key = r.value
	return paramSetKeyRecord{selIdx: r.selIdx, itemIdx: r.itemIdx, idx: r.idx, value: prev}, Notification{Type: OpParamSetKey, SelIdx: r.selIdx, ItemIdx: r.itemIdx, ParamIdx: r.idx}
}

type paramSetValueRecord struct {
	selIdx, itemIdx, idx int
	value                string
}

func (r paramSetValueRecord) apply(d *Doc) (record, Notification) {
	p := d.selectors[r.selIdx].Items[r.itemIdx].Params[r.idx]
	prev := p.Value
	p.Value = r.value
	return paramSetValueRecord{selIdx: r.selIdx, itemIdx: r.itemIdx, idx: r.idx, value: prev}, Notification{Type: OpParamSetValue, SelIdx: r.selIdx, ItemIdx: r.itemIdx, ParamIdx: r.idx}
}
