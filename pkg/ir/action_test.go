package ir

import "testing"

func TestNewActionHas16StackSlots(t *testing.T) {
	a := NewAction("foo", SourceLoc{Line: 1, Column: 2})
	for i, ref := range a.VirtualStack {
		if ref == nil {
			t.Fatalf("slot %d is nil", i)
		}
		if ref.Owner != a || ref.Slot != i {
			t.Errorf("slot %d has wrong owner/slot: owner=%v slot=%d", i, ref.Owner == a, ref.Slot)
		}
	}
}

func TestActionIDsAreMonotonicAndUnique(t *testing.T) {
	a := NewAction("a", SourceLoc{})
	b := NewAction("b", SourceLoc{})
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, got %d and %d", a.ID, b.ID)
	}
	if b.ID <= a.ID {
		t.Errorf("expected monotonically increasing ids, got %d then %d", a.ID, b.ID)
	}
}

func TestAddChildSetsParent(t *testing.T) {
	parent := NewAction("parent", SourceLoc{})
	child := NewAction("child", SourceLoc{})
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if child.Parent != parent {
		t.Errorf("child.Parent not set to parent")
	}
}

func TestAddChildRejectsReparenting(t *testing.T) {
	first := NewAction("first", SourceLoc{})
	second := NewAction("second", SourceLoc{})
	child := NewAction("child", SourceLoc{})

	if err := first.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if err := second.AddChild(child); err == nil {
		t.Errorf("expected error re-parenting an already-owned action")
	}
}

func TestAddChildIsIdempotentForSameParent(t *testing.T) {
	parent := NewAction("parent", SourceLoc{})
	child := NewAction("child", SourceLoc{})
	if err := parent.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if err := parent.AddChild(child); err != nil {
		t.Errorf("re-adopting by the same parent should not error: %v", err)
	}
}

func TestActionPointerStackRefsOrder(t *testing.T) {
	a := NewAction("foo", SourceLoc{})
	ptr := a.Pointer()
	refs := ptr.StackRefs()
	for i, r := range refs {
		if r.Slot != i {
			t.Errorf("stack ref %d has slot %d", i, r.Slot)
		}
	}
}

func TestActionEmpty(t *testing.T) {
	a := NewAction("foo", SourceLoc{})
	if !a.Empty() {
		t.Errorf("freshly constructed action should be empty")
	}
	a.Append(Op{})
	if a.Empty() {
		t.Errorf("action with an appended item should not be empty")
	}
}
