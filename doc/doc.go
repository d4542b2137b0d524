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

// Doc owns the full selector/item/param tree plus its undo/redo log. It
// is single-threaded per instance: callers serialize their own access.
type Doc struct {
	meta      Meta
	selectors []*Selector
	ids       idAllocator
	log       *OpLog

	storedChecksum     uint64
	calculatedChecksum uint64
	hasChecksums       bool
}

// New returns an empty document: version 1, label "PSD", exclusive
// support on, no information override.
func New() *Doc {
	return &Doc{
		meta: defaultMeta(),
		log:  newOpLog(),
		ids:  newIDAllocator(),
	}
}

func (d *Doc) Log() *OpLog { return d.log }

func (d *Doc) Version() int                  { return d.meta.Version }
func (d *Doc) Label() string                 { return d.meta.Label }
func (d *Doc) PSDPath() string               { return d.meta.PSDPath }
func (d *Doc) ExclusiveSupportDefault() bool { return d.meta.ExclusiveSupportDefault }
func (d *Doc) Information() *string          { return d.meta.Information }
func (d *Doc) CanUndo() bool                 { return d.log.CanUndo() }
func (d *Doc) CanRedo() bool                 { return d.log.CanRedo() }
func (d *Doc) SelectorCount() int            { return len(d.selectors) }

func (d *Doc) Undo() error { return d.log.Undo(d) }
func (d *Doc) Redo() error { return d.log.Redo(d) }

func (d *Doc) BeginTransaction()     { d.log.BeginTransaction() }
func (d *Doc) EndTransaction() error { return d.log.EndTransaction() }

// --- metadata setters ---

func (d *Doc) SetLabel(s string) {
	d.log.record(setLabelRecord{value: d.meta.Label})
	d.meta.Label = s
	d.log.emit(Notification{Type: OpSetLabel})
}

func (d *Doc) SetPsdPath(s string) {
	d.log.record(setPsdPathRecord{value: d.meta.PSDPath})
	d.meta.PSDPath = s
	d.log.emit(Notification{Type: OpSetPsdPath})
}

func (d *Doc) SetExclusiveSupportDefault(b bool) {
	d.log.record(setExclusiveSupportDefaultRecord{value: d.meta.ExclusiveSupportDefault})
	d.meta.ExclusiveSupportDefault = b
	d.log.emit(Notification{Type: OpSetExclusiveSupportDefault})
}

// SetInformation sets the information override; pass nil to clear it back
// to "auto-derive from psd_path basename".
func (d *Doc) SetInformation(s *string) {
	d.log.record(setInformationRecord{value: d.meta.Information})
	d.meta.Information = s
	d.log.emit(Notification{Type: OpSetInformation})
}

// --- bounds helpers ---

func (d *Doc) selectorAt(idx int) (*Selector, error) {
	if idx < 0 || idx >= len(d.selectors) {
		return nil, ptkerr.InvalidArgument("selector index %d out of range [0,%d)", idx, len(d.selectors))
	}
	return d.selectors[idx], nil
}

func (d *Doc) itemAt(selIdx, itemIdx int) (*Selector, *Item, error) {
	sel, err := d.selectorAt(selIdx)
	if err != nil {
		return nil, nil, err
	}
	if itemIdx < 0 || itemIdx >= len(sel.Items) {
		return nil, nil, ptkerr.InvalidArgument("item index %d out of range [0,%d)", itemIdx, len(sel.Items))
	}
	return sel, sel.Items[itemIdx], nil
}

func (d *Doc) paramAt(selIdx, itemIdx, paramIdx int) (*Item, *Param, error) {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return nil, nil, err
	}
	if it.Kind != ItemAnimation {
		return nil, nil, ptkerr.InvalidArgument("item at (%d,%d) is not an animation item", selIdx, itemIdx)
	}
	if paramIdx < 0 || paramIdx >= len(it.Params) {
		return nil, nil, ptkerr.InvalidArgument("param index %d out of range [0,%d)", paramIdx, len(it.Params))
	}
	return it, it.Params[paramIdx], nil
}

// --- selectors ---

func (d *Doc) SelectorAdd(group string) (uint32, error) {
	return d.SelectorInsert(len(d.selectors), group)
}

func (d *Doc) SelectorInsert(idx int, group string) (uint32, error) {
	if idx < 0 || idx > len(d.selectors) {
		return 0, ptkerr.InvalidArgument("selector insert index %d out of range [0,%d]", idx, len(d.selectors))
	}
	id, err := d.ids.allocate()
	if err != nil {
		return 0, err
	}
	sel := &Selector{ID: id, Group: group}
	d.selectors = append(d.selectors, nil)
	copy(d.selectors[idx+1:], d.selectors[idx:])
	d.selectors[idx] = sel
	d.log.record(selectorRemoveRecord{idx: idx})
	d.log.emit(Notification{Type: OpSelectorInsert, SelIdx: idx})
	return id, nil
}

func (d *Doc) SelectorRemove(idx int) error {
	sel, err := d.selectorAt(idx)
	if err != nil {
		return err
	}
	d.selectors = append(d.selectors[:idx], d.selectors[idx+1:]...)
	d.log.record(selectorInsertRecord{idx: idx, sel: sel})
	d.log.emit(Notification{Type: OpSelectorRemove, SelIdx: idx})
	return nil
}

func (d *Doc) SelectorSetGroup(idx int, group string) error {
	sel, err := d.selectorAt(idx)
	if err != nil {
		return err
	}
	prev := sel.Group
	sel.Group = group
	d.log.record(selectorSetGroupRecord{idx: idx, value: prev})
	d.log.emit(Notification{Type: OpSelectorSetGroup, SelIdx: idx})
	return nil
}

func (d *Doc) SelectorMoveTo(from, to int) error {
	if _, err := d.selectorAt(from); err != nil {
		return err
	}
	if to < 0 || to >= len(d.selectors) {
		return ptkerr.InvalidArgument("selector move target %d out of range [0,%d)", to, len(d.selectors))
	}
	sel := d.selectors[from]
	d.selectors = append(d.selectors[:from], d.selectors[from+1:]...)
	d.selectors = append(d.selectors, nil)
	copy(d.selectors[to+1:], d.selectors[to:])
	d.selectors[to] = sel
	d.log.record(selectorMoveRecord{from: to, to: from})
	d.log.emit(Notification{Type: OpSelectorMove, SelIdx: from, ToSelIdx: to})
	return nil
}

// Selector returns a read-only snapshot of the selector at idx: a deep
// clone, not the live internal pointer, so a caller mutating the returned
// tree can't corrupt Doc state behind OpLog's back; mutations go through
// the recorded setters and inserters above.
func (d *Doc) Selector(idx int) (*Selector, error) {
	sel, err := d.selectorAt(idx)
	if err != nil {
		return nil, err
	}
	return sel.clone(), nil
}

// --- items ---

func (d *Doc) ItemAddValue(selIdx int, name, value string) (uint32, error) {
	sel, err := d.selectorAt(selIdx)
	if err != nil {
		return 0, err
	}
	return d.ItemInsertValue(selIdx, len(sel.Items), name, value)
}

func (d *Doc) ItemInsertValue(selIdx, idx int, name, value string) (uint32, error) {
	return d.itemInsert(selIdx, idx, &Item{Kind: ItemValue, Name: name, Value: value})
}

func (d *Doc) ItemAddAnimation(selIdx int, name, scriptName string) (uint32, error) {
	sel, err := d.selectorAt(selIdx)
	if err != nil {
		return 0, err
	}
	return d.ItemInsertAnimation(selIdx, len(sel.Items), name, scriptName)
}

func (d *Doc) ItemInsertAnimation(selIdx, idx int, name, scriptName string) (uint32, error) {
	return d.itemInsert(selIdx, idx, &Item{Kind: ItemAnimation, Name: name, ScriptName: scriptName})
}

func (d *Doc) itemInsert(selIdx, idx int, it *Item) (uint32, error) {
	sel, err := d.selectorAt(selIdx)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx > len(sel.Items) {
		return 0, ptkerr.InvalidArgument("item insert index %d out of range [0,%d]", idx, len(sel.Items))
	}
	id, err := d.ids.allocate()
	if err != nil {
		return 0, err
	}
	it.ID = id
	sel.Items = append(sel.Items, nil)
	copy(sel.Items[idx+1:], sel.Items[idx:])
	sel.Items[idx] = it
	d.log.record(itemRemoveRecord{selIdx: selIdx, idx: idx})
	d.log.emit(Notification{Type: OpItemInsert, SelIdx: selIdx, ItemIdx: idx})
	return id, nil
}

func (d *Doc) ItemRemove(selIdx, itemIdx int) error {
	sel, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return err
	}
	sel.Items = append(sel.Items[:itemIdx], sel.Items[itemIdx+1:]...)
	d.log.record(itemInsertRecord{selIdx: selIdx, idx: itemIdx, item: it})
	d.log.emit(Notification{Type: OpItemRemove, SelIdx: selIdx, ItemIdx: itemIdx})
	return nil
}

func (d *Doc) ItemSetName(selIdx, itemIdx int, name string) error {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return err
	}
	prev := it.Name
	it.Name = name
	d.log.record(itemSetNameRecord{selIdx: selIdx, idx: itemIdx, value: prev})
	d.log.emit(Notification{Type: OpItemSetName, SelIdx: selIdx, ItemIdx: itemIdx})
	return nil
}

func (d *Doc) ItemSetValue(selIdx, itemIdx int, value string) error {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return err
	}
	if it.Kind != ItemValue {
		return ptkerr.InvalidArgument("item at (%d,%d) is not a value item", selIdx, itemIdx)
	}
	prev := it.Value
	it.Value = value
	d.log.record(itemSetValueRecord{selIdx: selIdx, idx: itemIdx, value: prev})
	d.log.emit(Notification{Type: OpItemSetValue, SelIdx: selIdx, ItemIdx: itemIdx})
	return nil
}

func (d *Doc) ItemSetScriptName(selIdx, itemIdx int, scriptName string) error {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return err
	}
	if it.Kind != ItemAnimation {
		return ptkerr.InvalidArgument("item at (%d,%d) is not an animation item", selIdx, itemIdx)
	}
	prev := it.ScriptName
	it.ScriptName = scriptName
	d.log.record(itemSetScriptNameRecord{selIdx: selIdx, idx: itemIdx, value: prev})
	d.log.emit(Notification{Type: OpItemSetScriptName, SelIdx: selIdx, ItemIdx: itemIdx})
	return nil
}

func (d *Doc) ItemMoveTo(fromSel, fromItem, toSel, toItem int) error {
	if _, _, err := d.itemAt(fromSel, fromItem); err != nil {
		return err
	}
	dstSel, err := d.selectorAt(toSel)
	if err != nil {
		return err
	}
	// toItem is a position in dstSel.Items *after* the source item has
	// been removed, so the valid range includes one past the current end.
	limit := len(dstSel.Items)
	if fromSel == toSel {
		limit--
	}
	if toItem < 0 || toItem > limit {
		return ptkerr.InvalidArgument("item move target %d out of range [0,%d]", toItem, limit)
	}

	srcSel := d.selectors[fromSel]
	it := srcSel.Items[fromItem]
	srcSel.Items = append(srcSel.Items[:fromItem], srcSel.Items[fromItem+1:]...)

	dst := d.selectors[toSel]
	dst.Items = append(dst.Items, nil)
	copy(dst.Items[toItem+1:], dst.Items[toItem:])
	dst.Items[toItem] = it

	d.log.record(itemMoveRecord{fromSel: toSel, fromIdx: toItem, toSel: fromSel, toIdx: fromItem})
	d.log.emit(Notification{Type: OpItemMove, SelIdx: fromSel, ItemIdx: fromItem, ToSelIdx: toSel, ToIdx: toItem})
	return nil
}

// --- params ---

func (d *Doc) ParamAdd(selIdx, itemIdx int, key, value string) (uint32, error) {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return 0, err
	}
	return d.ParamInsert(selIdx, itemIdx, len(it.Params), key, value)
}

func (d *Doc) ParamInsert(selIdx, itemIdx, idx int, key, value string) (uint32, error) {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return 0, err
	}
	if it.Kind != ItemAnimation {
		return 0, ptkerr.InvalidArgument("item at (%d,%d) is not an animation item", selIdx, itemIdx)
	}
	if idx < 0 || idx > len(it.Params) {
		return 0, ptkerr.InvalidArgument("param insert index %d out of range [0,%d]", idx, len(it.Params))
	}
	id, err := d.ids.allocate()
	if err != nil {
		return 0, err
	}
	p := &Param{ID: id, Key: key, Value: value}
	it.Params = append(it.Params, nil)
	copy(it.Params[idx+1:], it.Params[idx:])
	it.Params[idx] = p
	d.log.record(paramRemoveRecord{selIdx: selIdx, itemIdx: itemIdx, idx: idx})
	d.log.emit(Notification{Type: OpParamInsert, SelIdx: selIdx, ItemIdx: itemIdx, ParamIdx: idx})
	return id, nil
}

func (d *Doc) ParamRemove(selIdx, itemIdx, paramIdx int) error {
	it, p, err := d.paramAt(selIdx, itemIdx, paramIdx)
	if err != nil {
		return err
	}
	it.Params = append(it.Params[:paramIdx], it.Params[paramIdx+1:]...)
	d.log.record(paramInsertRecord{selIdx: selIdx, itemIdx: itemIdx, idx: paramIdx, param: p})
	d.log.emit(Notification{Type: OpParamRemove, SelIdx: selIdx, ItemIdx: itemIdx, ParamIdx: paramIdx})
	return nil
}

func (d *Doc) ParamSetKey(selIdx, itemIdx, paramIdx int, key string) error {
	_, p, err := d.paramAt(selIdx, itemIdx, paramIdx)
	if err != nil {
		return err
	}
	prev := p.Key
	p.Key = key
	d.log.record(paramSetKeyRecord{selIdx: selIdx, itemIdx: itemIdx, idx: paramIdx, value: prev})
	d.log.emit(Notification{Type: OpParamSetKey, SelIdx: selIdx, ItemIdx: itemIdx, ParamIdx: paramIdx})
	return nil
}

func (d *Doc) ParamSetValue(selIdx, itemIdx, paramIdx int, value string) error {
	_, p, err := d.paramAt(selIdx, itemIdx, paramIdx)
	if err != nil {
		return err
	}
	prev := p.Value
	p.Value = value
	d.log.record(paramSetValueRecord{selIdx: selIdx, itemIdx: itemIdx, idx: paramIdx, value: prev})
	d.log.emit(Notification{Type: OpParamSetValue, SelIdx: selIdx, ItemIdx: itemIdx, ParamIdx: paramIdx})
	return nil
}

// --- user data ---
//
// user_data is opaque UI state: the setters
// below bypass OpLog entirely, so toggling it never dirties the undo
// stack and never clears redo.

func (d *Doc) SelectorUserData(idx int) (int64, error) {
	sel, err := d.selectorAt(idx)
	if err != nil {
		return 0, err
	}
	return sel.UserData, nil
}

func (d *Doc) SetSelectorUserData(idx int, v int64) error {
	sel, err := d.selectorAt(idx)
	if err != nil {
		return err
	}
	sel.UserData = v
	return nil
}

func (d *Doc) ItemUserData(selIdx, itemIdx int) (int64, error) {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return 0, err
	}
	return it.UserData, nil
}

func (d *Doc) SetItemUserData(selIdx, itemIdx int, v int64) error {
	_, it, err := d.itemAt(selIdx, itemIdx)
	if err != nil {
		return err
	}
	it.UserData = v
	return nil
}

func (d *Doc) ParamUserData(selIdx, itemIdx, paramIdx int) (int64, error) {
	_, p, err := d.paramAt(selIdx, itemIdx, paramIdx)
	if err != nil {
		return 0, err
	}
	return p.UserData, nil
}

func (d *Doc) SetParamUserData(selIdx, itemIdx, paramIdx int, v int64) error {
	_, p, err := d.paramAt(selIdx, itemIdx, paramIdx)
	if err != nil {
		return err
	}
	p.UserData = v
	return nil
}

// --- reverse lookup ---

// FindSelectorByID returns the live index of the selector with this id.
// id == 0 and ids of entities not currently in the document both resolve
// to (0, false). An entity restored by undo or redo keeps its original id
// and resolves again.
func (d *Doc) FindSelectorByID(id uint32) (int, bool) {
	if id == 0 {
		return 0, false
	}
	for i, s := range d.selectors {
		if s.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (d *Doc) FindItemByID(id uint32) (selIdx, itemIdx int, ok bool) {
	if id == 0 {
		return 0, 0, false
	}
	for si, s := range d.selectors {
		for ii, it := range s.Items {
			if it.ID == id {
				return si, ii, true
			}
		}
	}
	return 0, 0, false
}

func (d *Doc) FindParamByID(id uint32) (selIdx, itemIdx, paramIdx int, ok bool) {
	if id == 0 {
		return 0, 0, 0, false
	}
	for si, s := range d.selectors {
		for ii, it := range s.Items {
			for pi, p := range it.Params {
				if p.ID == id {
					return si, ii, pi, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// --- save/load support ---

// CanSave reports whether the document has a psd_path and at least one
// item somewhere. Save itself never refuses; this predicate is for the
// host UI to gate its save action on.
func (d *Doc) CanSave() bool {
	if d.meta.PSDPath == "" {
		return false
	}
	for _, s := range d.selectors {
		if len(s.Items) > 0 {
			return true
		}
	}
	return false
}

// Stats is a read-only introspection surface for the host UI. It never
// affects serialization or undo.
type Stats struct {
	SelectorCount int
	ItemCount     int
	ValueItems    int
	AnimationItems int
	ParamCount    int
}

func (d *Doc) Stats() Stats {
	var s Stats
	s.SelectorCount = len(d.selectors)
	for _, sel := range d.selectors {
		for _, it := range sel.Items {
			s.ItemCount++
			if it.Kind == ItemAnimation {
				s.AnimationItems++
				s.ParamCount += len(it.Params)
			} else {
				s.ValueItems++
			}
		}
	}
	return s
}

// VerifyChecksum reports whether the checksum stored in the file that was
// last loaded matches the checksum calculated from the body at load time.
func (d *Doc) VerifyChecksum() bool {
	return d.hasChecksums && d.storedChecksum == d.calculatedChecksum
}

func (d *Doc) StoredChecksum() (uint64, bool)     { return d.storedChecksum, d.hasChecksums }
func (d *Doc) CalculatedChecksum() (uint64, bool) { return d.calculatedChecksum, d.hasChecksums }

// LoadState fully replaces document contents (used by textcodec.Load)
// and resets undo/redo. The caller allocates fresh
// ids for every loaded entity before calling this and passes nextID, the
// smallest id guaranteed not yet used, so the allocator continues
// cleanly from there.
func (d *Doc) LoadState(meta Meta, selectors []*Selector, nextID uint32, storedChecksum, calculatedChecksum uint64) {
	d.meta = meta
	d.selectors = selectors
	d.ids = idAllocator{next: nextID}
	d.storedChecksum = storedChecksum
	d.calculatedChecksum = calculatedChecksum
	d.hasChecksums = true
	d.log.reset()
}
