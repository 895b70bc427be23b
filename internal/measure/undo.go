package measure

// undoSnapshot captures the full mutable result state of one session before
// a mutation. Restores find the session by id; entries never hold an owning
// reference.
type undoSnapshot struct {
	sessionID   int
	results     []Measurement
	nextID      int64
	highlightID int64
}

func snapshotOf(sess *Session) undoSnapshot {
	results := make([]Measurement, len(sess.Results))
	copy(results, sess.Results)
	return undoSnapshot{
		sessionID:   sess.ID,
		results:     results,
		nextID:      sess.NextResultID,
		highlightID: sess.HighlightID,
	}
}

// recordUndoLocked registers a restore of the session's current state with
// the host undo stack. Caller holds the store lock.
func (st *Store) recordUndoLocked(sess *Session) {
	if st.undo == nil {
		return
	}
	snap := snapshotOf(sess)
	st.undo.Push(func() { st.restoreSnapshot(snap) })
}

// restoreSnapshot applies an undo entry. The inverse snapshot is pushed
// first, so undoing an undo redoes. Restoring schedules an autosave like any
// other mutation. A session that no longer exists makes this a no-op.
func (st *Store) restoreSnapshot(snap undoSnapshot) {
	st.mu.Lock()
	var sess *Session
	for _, s := range st.sessions {
		if s.ID == snap.sessionID {
			sess = s
			break
		}
	}
	if sess == nil {
		st.mu.Unlock()
		return
	}
	if st.undo != nil {
		inverse := snapshotOf(sess)
		st.undo.Push(func() { st.restoreSnapshot(inverse) })
	}
	sess.Results = make([]Measurement, len(snap.results))
	copy(sess.Results, snap.results)
	sess.NextResultID = snap.nextID
	sess.HighlightID = snap.highlightID
	st.mu.Unlock()

	st.emit(effects{changed: true, status: "Undone"})
}
