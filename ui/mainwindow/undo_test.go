package mainwindow

import "testing"

func TestUndoStackLIFO(t *testing.T) {
	u := newUndoStack()
	var order []int
	u.Push(func() { order = append(order, 1) })
	u.Push(func() { order = append(order, 2) })

	if !u.Pop() || !u.Pop() {
		t.Fatal("Pop failed on non-empty stack")
	}
	if u.Pop() {
		t.Error("Pop on empty stack should report false")
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("run order: got %v, want [2 1]", order)
	}
}

func TestUndoStackLimit(t *testing.T) {
	u := newUndoStack()
	for i := 0; i < undoLimit+20; i++ {
		u.Push(func() {})
	}
	if u.Len() != undoLimit {
		t.Errorf("depth: got %d, want %d", u.Len(), undoLimit)
	}
}

func TestUndoStackPushDuringPop(t *testing.T) {
	u := newUndoStack()
	u.Push(func() {
		u.Push(func() {})
	})
	if !u.Pop() {
		t.Fatal("Pop failed")
	}
	if u.Len() != 1 {
		t.Errorf("inverse entry not recorded: depth %d", u.Len())
	}
}
