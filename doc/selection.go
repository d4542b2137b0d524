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

// FocusKind distinguishes what a Selection's focus currently points at.
type FocusKind uint8

const (
	FocusNone FocusKind = iota
	FocusSelector
	FocusItem
)

// Selection tracks the treeview's focus/anchor/multi-select state
// alongside a Doc, independent of the undo/redo log. It is never itself
// undoable: structural mutations invalidate it via Refresh.
type Selection struct {
	focusKind FocusKind
	focusID   uint32
	anchorID  uint32
	itemIDs   []uint32 // selected item ids in insertion order, duplicates suppressed
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Clear drops focus, anchor and every selected item id.
func (s *Selection) Clear() {
	s.focusKind = FocusNone
	s.focusID = 0
	s.anchorID = 0
	s.itemIDs = nil
}

// addItem appends id to the selection unless it is already a member,
// keeping insertion order stable.
func (s *Selection) addItem(id uint32) {
	if !s.IsItemSelected(id) {
		s.itemIDs = append(s.itemIDs, id)
	}
}

func (s *Selection) removeItem(id uint32) {
	for i, v := range s.itemIDs {
		if v == id {
			s.itemIDs = append(s.itemIDs[:i], s.itemIDs[i+1:]...)
			return
		}
	}
}

// SetFocusSelector focuses a single selector and clears any item selection.
// id == 0 clears the selection entirely. Any other id must resolve a live
// selector in d, or SetFocusSelector returns an invalid_argument error and
// leaves the selection untouched.
func (s *Selection) SetFocusSelector(d *Doc, id uint32) error {
	if id == 0 {
		s.Clear()
		return nil
	}
	if _, ok := d.FindSelectorByID(id); !ok {
		return ptkerr.InvalidArgument("set_focus_selector: selector id %d does not resolve", id)
	}
	s.itemIDs = nil
	s.anchorID = 0
	s.focusKind = FocusSelector
	s.focusID = id
	return nil
}

// SetFocusItem focuses a single item, replacing any existing selection with
// just that item. id == 0 clears the selection entirely. Any other id must
// resolve a live item in d, or SetFocusItem returns an invalid_argument
// error and leaves the selection untouched. updateAnchor moves the anchor to
// id; a caller that only wants to move focus without disturbing an existing
// shift-click anchor passes false.
func (s *Selection) SetFocusItem(d *Doc, id uint32, updateAnchor bool) error {
	if id == 0 {
		s.Clear()
		return nil
	}
	if _, _, ok := d.FindItemByID(id); !ok {
		return ptkerr.InvalidArgument("set_focus_item: item id %d does not resolve", id)
	}
	s.itemIDs = []uint32{id}
	if updateAnchor {
		s.anchorID = id
	}
	s.focusKind = FocusItem
	s.focusID = id
	return nil
}

func (s *Selection) FocusKind() FocusKind { return s.focusKind }
func (s *Selection) FocusID() uint32      { return s.focusID }
func (s *Selection) AnchorID() uint32     { return s.anchorID }

// SelectedItemIDs returns a copy of the current item multi-selection in
// insertion order.
func (s *Selection) SelectedItemIDs() []uint32 {
	ids := make([]uint32, len(s.itemIDs))
	copy(ids, s.itemIDs)
	return ids
}

func (s *Selection) IsItemSelected(id uint32) bool {
	for _, v := range s.itemIDs {
		if v == id {
			return true
		}
	}
	return false
}

// ApplyTreeviewSelection implements the three-mode treeview click
// contract against d directly:
//
//   - selector target, ctrl held: change focus only, leaving any existing
//     item selection untouched.
//   - selector target, otherwise: exclusive focus on the selector (clears
//     the item selection).
//   - item target, shift held and an anchor already set: range-select from
//     anchor to id inclusive, scanning selector/item pairs in ascending
//     (selector, item) order with endpoints normalized so the direction of
//     the original shift-click doesn't matter; without ctrl the range
//     replaces the selection, with ctrl it augments it.
//   - item target, ctrl held (no shift, or no anchor yet): toggle id's
//     membership; removing it may leave focus on an id with nothing
//     selected, adding it sets anchor to id.
//   - item target, otherwise: exclusive focus on id.
//
// id == 0 clears the selection. A selector id that fails to resolve under
// ctrl is an invalid_argument error; an item id that fails to resolve as a
// range endpoint simply contributes nothing to the scan rather than
// failing the call.
func (s *Selection) ApplyTreeviewSelection(d *Doc, id uint32, isSelector, ctrl, shift bool) error {
	if id == 0 {
		s.Clear()
		return nil
	}

	if isSelector {
		if ctrl {
			if _, ok := d.FindSelectorByID(id); !ok {
				return ptkerr.InvalidArgument("apply_treeview_selection: selector id %d does not resolve", id)
			}
			s.focusKind = FocusSelector
			s.focusID = id
			return nil
		}
		return s.SetFocusSelector(d, id)
	}

	if shift && s.anchorID != 0 {
		rangeIDs := s.rangeItemIDs(d, s.anchorID, id)
		if !ctrl {
			s.itemIDs = nil
		}
		for _, rid := range rangeIDs {
			s.addItem(rid)
		}
		s.focusKind = FocusItem
		s.focusID = id
		return nil
	}

	if ctrl {
		s.focusKind = FocusItem
		s.focusID = id
		if s.IsItemSelected(id) {
			s.removeItem(id)
		} else {
			s.addItem(id)
			s.anchorID = id
		}
		return nil
	}

	return s.SetFocusItem(d, id, true)
}

// rangeItemIDs scans d's selector/item pairs in ascending (selector, item)
// order and returns every item id from anchorID to id inclusive, with the
// endpoints normalized so it does not matter which one comes first in
// document order. Either endpoint failing to resolve yields no ids.
func (s *Selection) rangeItemIDs(d *Doc, anchorID, id uint32) []uint32 {
	aSel, aItem, ok := d.FindItemByID(anchorID)
	if !ok {
		return nil
	}
	bSel, bItem, ok := d.FindItemByID(id)
	if !ok {
		return nil
	}
	if bSel < aSel || (bSel == aSel && bItem < aItem) {
		aSel, aItem, bSel, bItem = bSel, bItem, aSel, aItem
	}

	var ids []uint32
	for si := aSel; si <= bSel; si++ {
		sel, err := d.Selector(si)
		if err != nil {
			continue
		}
		start, end := 0, len(sel.Items)-1
		if si == aSel {
			start = aItem
		}
		if si == bSel {
			end = bItem
		}
		for ii := start; ii <= end && ii < len(sel.Items); ii++ {
			ids = append(ids, sel.Items[ii].ID)
		}
	}
	return ids
}

// ReplaceSelectedItems sets the item multi-selection directly (e.g. from a
// script-driven "select these ids" call) to ids, taking focusID and
// anchorID verbatim from the caller rather than deriving them from ids.
// focusID == 0 leaves the selection unfocused even if ids is non-empty.
func (s *Selection) ReplaceSelectedItems(ids []uint32, focusID, anchorID uint32) {
	s.itemIDs = nil
	for _, id := range ids {
		s.addItem(id)
	}
	s.anchorID = anchorID
	if focusID == 0 {
		s.focusKind = FocusNone
	} else {
		s.focusKind = FocusItem
	}
	s.focusID = focusID
}

// Refresh drops any focus/anchor/selected id that no longer resolves in d,
// called after structural mutations (selector/item removal) so a stale
// selection never points at a dead entity.
func (s *Selection) Refresh(d *Doc) {
	switch s.focusKind {
	case FocusSelector:
		if _, ok := d.FindSelectorByID(s.focusID); !ok {
			s.focusKind = FocusNone
			s.focusID = 0
		}
	case FocusItem:
		if _, _, ok := d.FindItemByID(s.focusID); !ok {
			s.focusKind = FocusNone
			s.focusID = 0
		}
	}
	if s.anchorID != 0 {
		if _, _, ok := d.FindItemByID(s.anchorID); !ok {
			if _, ok2 := d.FindSelectorByID(s.anchorID); !ok2 {
				s.anchorID = 0
			}
		}
	}
	live := s.itemIDs[:0]
	for _, id := range s.itemIDs {
		if _, _, ok := d.FindItemByID(id); ok {
			live = append(live, id)
		}
	}
	s.itemIDs = live
}
