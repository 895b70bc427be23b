package mainwindow

import "sync"

// undoLimit caps how many restore closures are kept.
const undoLimit = 100

// undoStack holds restore closures pushed by the measurement store.
type undoStack struct {
	mu  sync.Mutex
	fns []func()
}

func newUndoStack() *undoStack {
	return &undoStack{}
}

// Push implements measure.UndoSink.
func (u *undoStack) Push(fn func()) {
	u.mu.Lock()
	u.fns = append(u.fns, fn)
	if len(u.fns) > undoLimit {
		u.fns = u.fns[len(u.fns)-undoLimit:]
	}
	u.mu.Unlock()
}

// Pop runs the most recent restore closure. Returns false when the stack is
// empty.
func (u *undoStack) Pop() bool {
	u.mu.Lock()
	n := len(u.fns)
	if n == 0 {
		u.mu.Unlock()
		return false
	}
	fn := u.fns[n-1]
	u.fns = u.fns[:n-1]
	u.mu.Unlock()
	fn()
	return true
}

// Len reports the stack depth.
func (u *undoStack) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.fns)
}
