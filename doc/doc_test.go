package doc

import "testing"

func TestNewDocDefaults(t *testing.T) {
	d := New()
	if d.Version() != 1 {
		t.Fatalf("Version() = %d, want 1", d.Version())
	}
	if d.Label() != "PSD" {
		t.Fatalf("Label() = %q, want PSD", d.Label())
	}
	if d.PSDPath() != "" {
		t.Fatalf("PSDPath() = %q, want empty", d.PSDPath())
	}
	if d.SelectorCount() != 0 {
		t.Fatalf("SelectorCount() = %d, want 0", d.SelectorCount())
	}
	if d.CanUndo() || d.CanRedo() {
		t.Fatalf("fresh doc should not have undo/redo")
	}
	if !d.ExclusiveSupportDefault() {
		t.Fatalf("ExclusiveSupportDefault() should default true")
	}
	if d.Information() != nil {
		t.Fatalf("Information() should default nil")
	}
}

func TestGroupedUndoRedoNotificationOrder(t *testing.T) {
	d := New()
	d.BeginTransaction()
	if _, err := d.SelectorAdd("Group1"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SelectorAdd("Group2"); err != nil {
		t.Fatal(err)
	}
	if err := d.EndTransaction(); err != nil {
		t.Fatal(err)
	}

	var got []OpType
	d.Log().SetCallback(func(n Notification) { got = append(got, n.Type) })

	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	wantUndo := []OpType{OpGroupEnd, OpSelectorRemove, OpSelectorRemove, OpGroupBegin}
	assertOpSequence(t, "undo", got, wantUndo)

	got = nil
	if err := d.Redo(); err != nil {
		t.Fatal(err)
	}
	wantRedo := []OpType{OpGroupEnd, OpSelectorInsert, OpSelectorInsert, OpGroupBegin}
	assertOpSequence(t, "redo", got, wantRedo)

	if d.SelectorCount() != 2 {
		t.Fatalf("after redo SelectorCount() = %d, want 2", d.SelectorCount())
	}
}

func assertOpSequence(t *testing.T, label string, got, want []OpType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s sequence = %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s sequence = %v, want %v", label, got, want)
		}
	}
}

func TestUndoRedoRoundTripIsIdentity(t *testing.T) {
	d := New()
	id1, _ := d.SelectorAdd("A")
	d.SelectorAdd("B")
	d.ItemAddValue(0, "layer", "path/x")
	d.BeginTransaction()
	d.ItemAddAnimation(1, "blink", "PSDToolKit.Blinker")
	d.ParamAdd(1, 0, "k", "v")
	d.EndTransaction()

	type snapshot struct {
		selCount   int
		item0Name  string
		paramValue string
	}
	snap := func() snapshot {
		s1, _ := d.Selector(1)
		return snapshot{
			selCount:   d.SelectorCount(),
			item0Name:  mustItemName(d, 0, 0),
			paramValue: s1.Items[0].Params[0].Value,
		}
	}
	before := snap()

	for i := 0; i < 3; i++ {
		if err := d.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := d.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	after := snap()
	if before != after {
		t.Fatalf("undo∘redo not identity: before=%+v after=%+v", before, after)
	}

	if _, ok := d.FindSelectorByID(id1); !ok {
		t.Fatalf("selector id %d should still resolve", id1)
	}
}

func mustItemName(d *Doc, sel, item int) string {
	s, err := d.Selector(sel)
	if err != nil {
		return ""
	}
	if item >= len(s.Items) {
		return ""
	}
	return s.Items[item].Name
}

func TestStaleIDNeverResolves(t *testing.T) {
	d := New()
	id, _ := d.SelectorAdd("A")
	if err := d.SelectorRemove(0); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.FindSelectorByID(id); ok {
		t.Fatalf("removed selector id %d should never resolve", id)
	}
	if _, ok := d.FindSelectorByID(0); ok {
		t.Fatalf("id 0 should never resolve")
	}
}

func TestWrongVariantOperationsFail(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	d.ItemAddValue(0, "name", "value")
	if err := d.ItemSetScriptName(0, 0, "x"); err == nil {
		t.Fatal("set_script_name on a value item should fail")
	}
	d.ItemAddAnimation(0, "anim", "Script")
	if err := d.ItemSetValue(0, 1, "x"); err == nil {
		t.Fatal("set_value on an animation item should fail")
	}
	if _, err := d.ParamAdd(0, 0, "k", "v"); err == nil {
		t.Fatal("param_add on a value item should fail")
	}
}

func TestBoundsChecking(t *testing.T) {
	d := New()
	if _, err := d.Selector(0); err == nil {
		t.Fatal("selector index out of range should fail")
	}
	if err := d.SelectorRemove(5); err == nil {
		t.Fatal("selector_remove out of range should fail")
	}
}

func TestSelectorAccessorReturnsDefensiveCopy(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	d.ItemAddAnimation(0, "anim", "Script")
	d.ParamAdd(0, 0, "k", "v")

	sel, err := d.Selector(0)
	if err != nil {
		t.Fatal(err)
	}
	sel.Group = "mutated"
	sel.Items[0].Name = "mutated"
	sel.Items[0].Params[0].Value = "mutated"
	sel.Items = append(sel.Items, &Item{Kind: ItemValue, Name: "injected"})

	live, err := d.Selector(0)
	if err != nil {
		t.Fatal(err)
	}
	if live.Group != "A" {
		t.Fatalf("mutating the returned snapshot leaked into Doc state: Group = %q, want A", live.Group)
	}
	if len(live.Items) != 1 {
		t.Fatalf("mutating the returned snapshot's Items leaked into Doc state: len = %d, want 1", len(live.Items))
	}
	if live.Items[0].Name != "anim" {
		t.Fatalf("mutating a cloned item leaked into Doc state: Name = %q, want anim", live.Items[0].Name)
	}
	if live.Items[0].Params[0].Value != "v" {
		t.Fatalf("mutating a cloned param leaked into Doc state: Value = %q, want v", live.Items[0].Params[0].Value)
	}
}

func TestCanSavePredicate(t *testing.T) {
	d := New()
	if d.CanSave() {
		t.Fatal("empty doc with no psd_path should not be can_save")
	}
	d.SetPsdPath("C:/foo.psd")
	if d.CanSave() {
		t.Fatal("doc with psd_path but no items should not be can_save")
	}
	d.SelectorAdd("A")
	d.ItemAddValue(0, "n", "v")
	if !d.CanSave() {
		t.Fatal("doc with psd_path and an item should be can_save")
	}
}

func TestEmptyStackUndoRedoFails(t *testing.T) {
	d := New()
	if err := d.Undo(); err == nil {
		t.Fatal("undo with an empty stack should fail")
	}
	if err := d.Redo(); err == nil {
		t.Fatal("redo with an empty stack should fail")
	}
	if d.SelectorCount() != 0 {
		t.Fatal("failed undo/redo must not change state")
	}
}

func TestUserDataBypassesUndoHistory(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	d.ItemAddAnimation(0, "anim", "Script")
	d.ParamAdd(0, 0, "k", "v")

	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	if d.CanRedo() != true {
		t.Fatal("precondition: undo should have produced a redo entry")
	}

	if err := d.SetSelectorUserData(0, 7); err != nil {
		t.Fatal(err)
	}
	if err := d.SetItemUserData(0, 0, 8); err != nil {
		t.Fatal(err)
	}
	if !d.CanRedo() {
		t.Fatal("user_data writes must not clear the redo stack")
	}

	if err := d.Redo(); err != nil {
		t.Fatal(err)
	}
	if err := d.SetParamUserData(0, 0, 0, 9); err != nil {
		t.Fatal(err)
	}
	v, err := d.ParamUserData(0, 0, 0)
	if err != nil || v != 9 {
		t.Fatalf("ParamUserData = %d, %v, want 9", v, err)
	}
	iv, _ := d.ItemUserData(0, 0)
	if iv != 8 {
		t.Fatalf("ItemUserData = %d, want 8", iv)
	}
	if d.CanRedo() {
		t.Fatal("redo stack should be empty again after replaying everything")
	}
}

func TestSelectorMoveToUndo(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	d.SelectorAdd("B")
	d.SelectorAdd("C")

	if err := d.SelectorMoveTo(0, 2); err != nil {
		t.Fatal(err)
	}
	groups := func() [3]string {
		var g [3]string
		for i := 0; i < 3; i++ {
			sel, _ := d.Selector(i)
			g[i] = sel.Group
		}
		return g
	}
	if groups() != [3]string{"B", "C", "A"} {
		t.Fatalf("after move: %v", groups())
	}
	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	if groups() != [3]string{"A", "B", "C"} {
		t.Fatalf("after undo: %v", groups())
	}
	if err := d.Redo(); err != nil {
		t.Fatal(err)
	}
	if groups() != [3]string{"B", "C", "A"} {
		t.Fatalf("after redo: %v", groups())
	}
}

func TestItemMoveAcrossSelectorsUndo(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	d.SelectorAdd("B")
	id, _ := d.ItemAddValue(0, "n", "v")
	d.ItemAddValue(1, "other", "w")

	if err := d.ItemMoveTo(0, 0, 1, 0); err != nil {
		t.Fatal(err)
	}
	if si, ii, ok := d.FindItemByID(id); !ok || si != 1 || ii != 0 {
		t.Fatalf("after move, item at (%d,%d) ok=%v, want (1,0)", si, ii, ok)
	}
	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	if si, ii, ok := d.FindItemByID(id); !ok || si != 0 || ii != 0 {
		t.Fatalf("after undo, item at (%d,%d) ok=%v, want (0,0)", si, ii, ok)
	}
	if err := d.Redo(); err != nil {
		t.Fatal(err)
	}
	if si, ii, ok := d.FindItemByID(id); !ok || si != 1 || ii != 0 {
		t.Fatalf("after redo, item at (%d,%d) ok=%v, want (1,0)", si, ii, ok)
	}
}

func TestSelectionRefreshClearsFocusKindWhileOthersStaySelected(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	focused, _ := d.ItemAddValue(0, "gone", "v")
	kept, _ := d.ItemAddValue(0, "kept", "v")

	sel := NewSelection()
	if err := sel.ApplyTreeviewSelection(d, kept, false, true, false); err != nil {
		t.Fatal(err)
	}
	if err := sel.ApplyTreeviewSelection(d, focused, false, true, false); err != nil {
		t.Fatal(err)
	}

	if err := d.ItemRemove(0, 0); err != nil {
		t.Fatal(err)
	}
	sel.Refresh(d)

	if sel.FocusKind() != FocusNone || sel.FocusID() != 0 {
		t.Fatalf("stale focus must fully reset, got kind=%v id=%d", sel.FocusKind(), sel.FocusID())
	}
	if !sel.IsItemSelected(kept) {
		t.Fatal("refresh must keep still-live selected items")
	}
}

func TestSelectionRefreshDropsStaleIDs(t *testing.T) {
	d := New()
	d.SelectorAdd("A")
	id, _ := d.ItemAddValue(0, "n", "v")

	sel := NewSelection()
	if err := sel.SetFocusItem(d, id, true); err != nil {
		t.Fatal(err)
	}
	if err := d.ItemRemove(0, 0); err != nil {
		t.Fatal(err)
	}
	sel.Refresh(d)
	if sel.IsItemSelected(id) {
		t.Fatal("refresh should have dropped the stale item id")
	}
	if sel.FocusKind() != FocusNone {
		t.Fatalf("refresh should clear focus once nothing resolves, got %v", sel.FocusKind())
	}
}
