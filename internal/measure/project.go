package measure

import (
	"image"
	"time"

	"micro-measure/internal/project"
	"micro-measure/pkg/geometry"
)

// ImageDecoder re-decodes a session's backing image at restore time.
type ImageDecoder func(path string) (image.Image, error)

// Snapshot builds the portable project document from the current state.
// Safe to call from the autosave goroutine.
func (st *Store) Snapshot() project.Document {
	st.mu.RLock()
	defer st.mu.RUnlock()

	doc := project.Document{
		Version:     project.Version,
		ExportedAt:  time.Now(),
		ActiveIndex: st.active,
		Sessions:    make([]project.SessionState, 0, len(st.sessions)),
	}
	for _, sess := range st.sessions {
		state := project.SessionState{
			Name:               sess.Name,
			ImagePath:          sess.Path,
			Calibration:        sess.Calibration,
			Transform:          sess.Transform,
			HasCustomTransform: sess.HasCustomTransform,
			NextResultID:       sess.NextResultID,
			Results:            make([]project.Result, 0, len(sess.Results)),
		}
		for _, m := range sess.Results {
			state.Results = append(state.Results, project.Result{
				ID:          m.ID,
				P1:          m.P1,
				P2:          m.P2,
				PixelLength: m.PixelLength,
				CreatedAt:   m.CreatedAt,
			})
		}
		doc.Sessions = append(doc.Sessions, state)
	}
	return doc
}

// Restore replaces the store's sessions with the document's, re-decoding
// each image from its recorded path. Sessions whose backing file cannot be
// decoded are dropped; their names are returned so the caller can report
// them. The most recent surviving calibration becomes the inherited one.
func (st *Store) Restore(doc project.Document, decode ImageDecoder) (missing []string) {
	st.mu.Lock()

	sessions := make([]*Session, 0, len(doc.Sessions))
	active := -1
	for i, state := range doc.Sessions {
		img, err := decode(state.ImagePath)
		if err != nil {
			missing = append(missing, state.Name)
			continue
		}
		sess := newSession(st.nextSessionID, state.ImagePath, img)
		st.nextSessionID++
		if state.Name != "" {
			sess.Name = state.Name
		}
		sess.Calibration = state.Calibration
		sess.Transform = state.Transform
		sess.HasCustomTransform = state.HasCustomTransform
		sess.NextResultID = state.NextResultID
		if sess.NextResultID < 1 {
			sess.NextResultID = 1
		}
		for _, r := range state.Results {
			sess.Results = append(sess.Results, Measurement{
				ID:          r.ID,
				P1:          r.P1,
				P2:          r.P2,
				PixelLength: r.PixelLength,
				CreatedAt:   r.CreatedAt,
			})
		}
		if state.Calibration != nil {
			st.lastCalibration = state.Calibration
		}
		if i == doc.ActiveIndex {
			active = len(sessions)
		}
		sessions = append(sessions, sess)
	}
	if active < 0 && len(sessions) > 0 {
		active = 0
	}

	st.sessions = sessions
	st.active = active
	st.pending = nil
	st.pendingScalePixels = 0
	st.mode = ModeIdle

	sess := st.activeLocked()
	if sess != nil && !sess.HasCustomTransform && st.canvas.Width > 0 && st.canvas.Height > 0 {
		sess.Transform = geometry.Fit(sess.PixelSize, st.canvas)
	}
	st.mu.Unlock()

	st.emit(effects{view: true})
	return missing
}
