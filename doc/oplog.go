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

// OpType enumerates every notification kind OpLog can emit, stable across
// a document's lifetime.
type OpType string

const (
	OpReset                      OpType = "reset"
	OpGroupBegin                 OpType = "group_begin"
	OpGroupEnd                   OpType = "group_end"
	OpSetLabel                   OpType = "set_label"
	OpSetPsdPath                 OpType = "set_psd_path"
	OpSetExclusiveSupportDefault OpType = "set_exclusive_support_default"
	OpSetInformation             OpType = "set_information"
	OpSelectorInsert             OpType = "selector_insert"
	OpSelectorRemove             OpType = "selector_remove"
	OpSelectorSetGroup           OpType = "selector_set_group"
	OpSelectorMove               OpType = "selector_move"
	OpItemInsert                 OpType = "item_insert"
	OpItemRemove                 OpType = "item_remove"
	OpItemSetName                OpType = "item_set_name"
	OpItemSetValue               OpType = "item_set_value"
	OpItemSetScriptName          OpType = "item_set_script_name"
	OpItemMove                   OpType = "item_move"
	OpParamInsert                OpType = "param_insert"
	OpParamRemove                OpType = "param_remove"
	OpParamSetKey                OpType = "param_set_key"
	OpParamSetValue              OpType = "param_set_value"
)

// Notification is what the change callback receives. Unused indices are 0.
type Notification struct {
	Type                      OpType
	SelIdx, ItemIdx, ParamIdx int
	ToSelIdx, ToIdx           int
}

// record is a self-contained, invertible mutation: Apply performs the
// action it describes against d, emits the notification for that action,
// and returns the record that undoes what it just did.
type record interface {
	apply(d *Doc) (inverse record, notif Notification)
}

// group is either a single ungrouped mutation (grouped == false) or the
// full chronological sequence of mutations bracketed by one top-level
// transaction (grouped == true). Keeping the grouping on the stack entry
// itself avoids scanning for matching boundary sentinels at undo/redo
// time while preserving the observable notification order.
type group struct {
	grouped bool
	records []record // forward chronological order
}

// ChangeFunc receives one notification per applied op, including the
// sentinel notifications for transaction boundaries.
type ChangeFunc func(Notification)

// OpLog holds the undo/redo stacks and transaction bookkeeping.
type OpLog struct {
	undo     []group
	redo     []group
	txDepth  int
	pending  []record // accumulates while txDepth > 0
	callback ChangeFunc
}

func newOpLog() *OpLog {
	return &OpLog{}
}

// SetCallback installs (or clears, with nil) the change-notification
// callback. Installing a new callback never alters undo/redo state.
func (l *OpLog) SetCallback(fn ChangeFunc) {
	l.callback = fn
}

func (l *OpLog) emit(n Notification) {
	if l.callback != nil {
		l.callback(n)
	}
}

func (l *OpLog) CanUndo() bool { return len(l.undo) > 0 }
func (l *OpLog) CanRedo() bool { return len(l.redo) > 0 }

// record appends a successfully-applied mutation's reverse op. It always
// clears the redo stack.
func (l *OpLog) record(rec record) {
	l.redo = nil
	if l.txDepth > 0 {
		l.pending = append(l.pending, rec)
		return
	}
	l.undo = append(l.undo, group{grouped: false, records: []record{rec}})
}

// reset clears both stacks and any in-flight transaction. Used on load,
// which fully replaces document contents and resets history.
func (l *OpLog) reset() {
	l.undo = nil
	l.redo = nil
	l.txDepth = 0
	l.pending = nil
	l.emit(Notification{Type: OpReset})
}

// BeginTransaction starts (or nests into) a transaction. Only the
// outermost begin/end pair emits sentinel notifications and clears redo;
// inner pairs are bookkeeping only.
func (l *OpLog) BeginTransaction() {
	if l.txDepth == 0 {
		l.redo = nil
		l.pending = nil
		l.emit(Notification{Type: OpGroupBegin})
	}
	l.txDepth++
}

// EndTransaction closes one nesting level; at depth 0 the accumulated
// mutations become one undoable group.
func (l *OpLog) EndTransaction() error {
	if l.txDepth == 0 {
		return ptkerr.InvalidState("end_transaction without matching begin_transaction")
	}
	l.txDepth--
	if l.txDepth == 0 {
		l.undo = append(l.undo, group{grouped: true, records: l.pending})
		l.pending = nil
		l.emit(Notification{Type: OpGroupEnd})
	}
	return nil
}

// Undo pops the most recent group and applies it in reverse-chronological
// order, emitting {group_end, ...reverse ops..., group_begin} for a
// transaction group, or a single notification for an ungrouped mutation.
func (l *OpLog) Undo(d *Doc) error {
	if len(l.undo) == 0 {
		return ptkerr.InvalidState("nothing to undo")
	}
	n := len(l.undo) - 1
	g := l.undo[n]
	l.undo = l.undo[:n]

	if g.grouped {
		l.emit(Notification{Type: OpGroupEnd})
	}
	inverses := make([]record, len(g.records))
	for i := len(g.records) - 1; i >= 0; i-- {
		inv, notif := g.records[i].apply(d)
		l.emit(notif)
		inverses[i] = inv
	}
	if g.grouped {
		l.emit(Notification{Type: OpGroupBegin})
	}
	l.redo = append(l.redo, group{grouped: g.grouped, records: inverses})
	return nil
}

// Redo pops the most recent redo group and applies it in forward
// (original) chronological order, emitting {group_end, ...forward
// ops..., group_begin} for a transaction group.
func (l *OpLog) Redo(d *Doc) error {
	if len(l.redo) == 0 {
		return ptkerr.InvalidState("nothing to redo")
	}
	n := len(l.redo) - 1
	g := l.redo[n]
	l.redo = l.redo[:n]

	if g.grouped {
		l.emit(Notification{Type: OpGroupEnd})
	}
	inverses := make([]record, len(g.records))
	for i := 0; i < len(g.records); i++ {
		inv, notif := g.records[i].apply(d)
		l.emit(notif)
		inverses[i] = inv
	}
	if g.grouped {
		l.emit(Notification{Type: OpGroupBegin})
	}
	l.undo = append(l.undo, group{grouped: g.grouped, records: inverses})
	return nil
}
