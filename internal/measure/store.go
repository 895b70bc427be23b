package measure

import (
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"micro-measure/internal/calib"
	"micro-measure/internal/snap"
	"micro-measure/pkg/geometry"
)

// Mode governs what a completed two-point commit produces.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMeasure
	ModeScale
)

func (m Mode) String() string {
	switch m {
	case ModeMeasure:
		return "measure"
	case ModeScale:
		return "scale"
	default:
		return "idle"
	}
}

// Two clicks closer than this count as the same point.
const degenerateDistance = 1e-4

// Preferences supplies the persisted user settings the engine consults.
type Preferences interface {
	RoundingMode() calib.RoundingMode
	ContinuousMeasure() bool
	EdgeSnap() bool
}

// UndoSink registers restore callbacks with the host's undo stack.
type UndoSink interface {
	Push(apply func())
}

// Options configures a Store. Every callback is optional.
type Options struct {
	Prefs    Preferences
	Undo     UndoSink
	Saver    *Autosaver
	Status   func(msg string)
	OnChange func()
	// OnScalePrompt fires when a scale-mode pair completes and the known
	// real-world length must be collected from the user.
	OnScalePrompt func(pixelDistance float64)
}

// Store owns the session list and drives the click/commit state machine.
// All public operations are serialized onto one owner goroutine; the mutex
// only guards the autosave goroutine's read snapshot.
type Store struct {
	mu sync.RWMutex

	sessions      []*Session
	active        int
	nextSessionID int

	mode               Mode
	pending            []geometry.Point2D
	pendingScalePixels float64
	lastCalibration    *calib.Calibration

	canvas geometry.Size

	prefs         Preferences
	undo          UndoSink
	saver         *Autosaver
	status        func(string)
	onChange      func()
	onScalePrompt func(float64)
}

// NewStore creates an empty store with no active session.
func NewStore(opts Options) *Store {
	return &Store{
		active:        -1,
		nextSessionID: 1,
		prefs:         opts.Prefs,
		undo:          opts.Undo,
		saver:         opts.Saver,
		status:        opts.Status,
		onChange:      opts.OnChange,
		onScalePrompt: opts.OnScalePrompt,
	}
}

// effects collects what a locked operation wants reported once the lock is
// released.
type effects struct {
	status      string
	changed     bool    // persisted state mutated: notify and schedule autosave
	view        bool    // transient state mutated: notify only
	scalePrompt float64 // > 0: ask the user for the known length
}

func (st *Store) emit(e effects) {
	if e.changed && st.saver != nil {
		st.saver.Bump()
	}
	if (e.changed || e.view) && st.onChange != nil {
		st.onChange()
	}
	if e.status != "" && st.status != nil {
		st.status(e.status)
	}
	if e.scalePrompt > 0 && st.onScalePrompt != nil {
		st.onScalePrompt(e.scalePrompt)
	}
}

// Accessors used by the UI and exporters. Sessions are owned by the store;
// callers must not mutate them.

// ActiveSession returns the active session, or nil.
func (st *Store) ActiveSession() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.activeLocked()
}

func (st *Store) activeLocked() *Session {
	if st.active < 0 || st.active >= len(st.sessions) {
		return nil
	}
	return st.sessions[st.active]
}

// Sessions returns the session list in order.
func (st *Store) Sessions() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, len(st.sessions))
	copy(out, st.sessions)
	return out
}

// ActiveIndex returns the index of the active session, -1 when empty.
func (st *Store) ActiveIndex() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.active
}

// Mode returns the current interaction mode.
func (st *Store) Mode() Mode {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.mode
}

// PendingPoints returns a copy of the in-progress pick points.
func (st *Store) PendingPoints() []geometry.Point2D {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]geometry.Point2D, len(st.pending))
	copy(out, st.pending)
	return out
}

// LastCalibration returns the most recently confirmed calibration.
func (st *Store) LastCalibration() *calib.Calibration {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastCalibration
}

func (st *Store) roundingMode() calib.RoundingMode {
	if st.prefs == nil {
		return calib.RoundNearest
	}
	return st.prefs.RoundingMode()
}

// SetMode switches the interaction mode, abandoning any in-progress pick and
// pending scale input.
func (st *Store) SetMode(next Mode) {
	st.mu.Lock()
	st.mode = next
	st.pending = nil
	st.pendingScalePixels = 0
	st.mu.Unlock()
	st.emit(effects{view: true})
}

// AddSession loads a decoded image as a new session and activates it.
func (st *Store) AddSession(path string, img image.Image) *Session {
	st.mu.Lock()
	sess := newSession(st.nextSessionID, path, img)
	st.nextSessionID++
	if st.canvas.Width > 0 && st.canvas.Height > 0 {
		sess.Transform = geometry.Fit(sess.PixelSize, st.canvas)
	}
	st.sessions = append(st.sessions, sess)
	st.active = len(st.sessions) - 1
	st.pending = nil
	st.mu.Unlock()

	st.emit(effects{changed: true, status: "Loaded " + sess.Name})
	return sess
}

// RemoveSession drops the session at the given index.
func (st *Store) RemoveSession(index int) {
	st.mu.Lock()
	if index < 0 || index >= len(st.sessions) {
		st.mu.Unlock()
		st.emit(effects{status: "No such image"})
		return
	}
	name := st.sessions[index].Name
	st.sessions = append(st.sessions[:index], st.sessions[index+1:]...)
	switch {
	case len(st.sessions) == 0:
		st.active = -1
	case st.active >= len(st.sessions):
		st.active = len(st.sessions) - 1
	case index < st.active:
		st.active--
	}
	st.pending = nil
	if s := st.activeLocked(); s != nil {
		s.HighlightID = 0
	}
	st.mu.Unlock()
	st.emit(effects{changed: true, status: "Closed " + name})
}

// ActivateSession makes the session at index active, clearing the pick in
// progress and the highlight. The view is re-fit unless the target carries a
// user-set transform. Results are never touched.
func (st *Store) ActivateSession(index int) {
	st.mu.Lock()
	if index < 0 || index >= len(st.sessions) {
		st.mu.Unlock()
		st.emit(effects{status: "No such image"})
		return
	}
	st.active = index
	st.pending = nil
	sess := st.sessions[index]
	sess.HighlightID = 0
	if !sess.HasCustomTransform && st.canvas.Width > 0 && st.canvas.Height > 0 {
		sess.Transform = geometry.Fit(sess.PixelSize, st.canvas)
	}
	st.mu.Unlock()
	st.emit(effects{changed: true, status: "Switched to " + sess.Name})
}

// SwitchSession moves the active session by delta, wrapping cyclically.
func (st *Store) SwitchSession(delta int) {
	st.mu.RLock()
	n := len(st.sessions)
	cur := st.active
	st.mu.RUnlock()
	if n == 0 {
		st.emit(effects{status: "No images loaded"})
		return
	}
	st.ActivateSession(((cur+delta)%n + n) % n)
}

// SetCanvasSize records the canvas dimensions and re-fits the active session
// while it has no custom transform.
func (st *Store) SetCanvasSize(size geometry.Size) {
	st.mu.Lock()
	st.canvas = size
	sess := st.activeLocked()
	if sess != nil && !sess.HasCustomTransform && size.Width > 0 && size.Height > 0 {
		sess.Transform = geometry.Fit(sess.PixelSize, size)
	}
	st.mu.Unlock()
	if sess != nil {
		st.emit(effects{view: true})
	}
}

// FitActive re-fits the active session's view and clears its custom
// transform flag.
func (st *Store) FitActive() {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil || st.canvas.Width <= 0 || st.canvas.Height <= 0 {
		st.mu.Unlock()
		return
	}
	sess.Transform = geometry.Fit(sess.PixelSize, st.canvas)
	sess.HasCustomTransform = false
	st.mu.Unlock()
	st.emit(effects{changed: true})
}

// Pan shifts the active view. Panning always marks the transform as
// user-set.
func (st *Store) Pan(dx, dy float64) {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		return
	}
	sess.Transform = sess.Transform.Pan(dx, dy)
	sess.HasCustomTransform = true
	st.mu.Unlock()
	st.emit(effects{changed: true})
}

// ZoomAt rescales the active view around a screen anchor. Non-finite or
// non-positive factors are ignored.
func (st *Store) ZoomAt(anchor geometry.Point2D, factor float64) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return
	}
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		return
	}
	sess.Transform = sess.Transform.ZoomAt(anchor, factor)
	sess.HasCustomTransform = true
	st.mu.Unlock()
	st.emit(effects{changed: true})
}

// CommitClick converts a screen-space click to image space, clamps it to the
// image, snaps it to a nearby edge when enabled, and feeds it to the state
// machine.
func (st *Store) CommitClick(screen geometry.Point2D) {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		st.emit(effects{status: "No image loaded"})
		return
	}
	p := sess.Transform.ImageFromScreen(screen)
	p = p.Clamp(sess.PixelSize.Width-1, sess.PixelSize.Height-1)

	snapped := false
	if st.prefs != nil && st.prefs.EdgeSnap() {
		sp, moved := snap.Snap(sess.Luma(), snap.Point{X: p.X, Y: p.Y}, sess.Transform.Scale)
		if moved {
			p = geometry.NewPoint2D(sp.X, sp.Y)
			snapped = true
		}
	}
	e := st.commitImagePointLocked(sess, p)
	st.mu.Unlock()
	if snapped && e.status != "" {
		e.status += " (snapped to edge)"
	}
	st.emit(e)
}

// CommitImagePoint feeds an already image-space point to the state machine.
func (st *Store) CommitImagePoint(p geometry.Point2D) {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		st.emit(effects{status: "No image loaded"})
		return
	}
	e := st.commitImagePointLocked(sess, p)
	st.mu.Unlock()
	st.emit(e)
}

func (st *Store) commitImagePointLocked(sess *Session, p geometry.Point2D) effects {
	st.pending = append(st.pending, p)

	if len(st.pending) == 1 {
		if st.mode == ModeIdle {
			st.mode = ModeMeasure
		}
		if st.mode == ModeScale {
			return effects{view: true, status: "Scale point set — click the far end of the known distance"}
		}
		return effects{view: true, status: "Point set — click the second point"}
	}

	p1, p2 := st.pending[0], st.pending[1]
	d := p1.Distance(p2)

	if d <= degenerateDistance {
		st.pending = nil
		return effects{view: true, status: "Points coincide — nothing measured"}
	}

	if st.mode == ModeScale {
		st.pending = nil
		st.pendingScalePixels = d
		return effects{
			view:        true,
			status:      fmt.Sprintf("Scale span %.1f px — enter the known length", d),
			scalePrompt: d,
		}
	}

	// Measure commit. A session without its own calibration adopts the
	// most recently confirmed one at this moment.
	if sess.Calibration == nil && st.lastCalibration != nil {
		sess.Calibration = st.lastCalibration
	}

	st.recordUndoLocked(sess)
	m := Measurement{
		ID:          sess.NextResultID,
		P1:          p1,
		P2:          p2,
		PixelLength: d,
		CreatedAt:   time.Now(),
	}
	sess.NextResultID++
	sess.Results = append([]Measurement{m}, sess.Results...)
	sess.HighlightID = m.ID

	if st.prefs != nil && st.prefs.ContinuousMeasure() {
		st.pending = []geometry.Point2D{p2}
	} else {
		st.pending = nil
	}

	value := calib.FormatWithUnit(d, sess.Calibration, st.roundingMode())
	return effects{changed: true, status: fmt.Sprintf("#%d: %s", m.ID, value)}
}

// ApplyScaleInput completes a scale-mode pick with the user-supplied unit
// and real length. Invalid input leaves the pending span intact so the user
// can retry.
func (st *Store) ApplyScaleInput(unit string, realLength float64) error {
	st.mu.Lock()
	if st.pendingScalePixels <= 0 {
		st.mu.Unlock()
		st.emit(effects{status: "No scale selection pending"})
		return fmt.Errorf("no scale selection pending")
	}
	sess := st.activeLocked()
	if sess == nil {
		st.pendingScalePixels = 0
		st.mu.Unlock()
		st.emit(effects{status: "No image loaded"})
		return fmt.Errorf("no active session")
	}
	cal, err := calib.New(unit, realLength, st.pendingScalePixels)
	if err != nil {
		st.mu.Unlock()
		st.emit(effects{status: "Invalid length — please retry"})
		return err
	}
	sess.Calibration = cal
	st.lastCalibration = cal
	st.pendingScalePixels = 0
	st.mu.Unlock()

	st.emit(effects{
		changed: true,
		status:  fmt.Sprintf("Calibrated: 1 px = %s %s", calib.FormatValue(cal.UnitsPerPixel, st.roundingMode()), cal.Unit),
	})
	return nil
}

// CancelScaleInput abandons a pending scale span without touching state.
func (st *Store) CancelScaleInput() {
	st.mu.Lock()
	had := st.pendingScalePixels > 0
	st.pendingScalePixels = 0
	st.mu.Unlock()
	if had {
		st.emit(effects{view: true, status: "Scale input cancelled"})
	}
}

// CancelAction cancels the pick in progress; with nothing pending it removes
// the newest measurement instead.
func (st *Store) CancelAction() {
	st.mu.Lock()
	if len(st.pending) > 0 {
		st.pending = nil
		st.mu.Unlock()
		st.emit(effects{view: true, status: "Cancelled"})
		return
	}
	sess := st.activeLocked()
	if sess == nil || len(sess.Results) == 0 {
		st.mu.Unlock()
		st.emit(effects{status: "Nothing to cancel"})
		return
	}
	st.recordUndoLocked(sess)
	removed := sess.Results[0]
	sess.Results = sess.Results[1:]
	if sess.HighlightID == removed.ID {
		sess.HighlightID = 0
	}
	st.mu.Unlock()
	st.emit(effects{changed: true, status: fmt.Sprintf("Removed #%d", removed.ID)})
}

// DeleteMeasurement removes one measurement by id from the active session.
// Other ids and the id counter are unaffected.
func (st *Store) DeleteMeasurement(id int64) {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		st.emit(effects{status: "No image loaded"})
		return
	}
	i := sess.findResult(id)
	if i < 0 {
		st.mu.Unlock()
		st.emit(effects{status: fmt.Sprintf("No measurement #%d", id)})
		return
	}
	st.recordUndoLocked(sess)
	sess.Results = append(sess.Results[:i], sess.Results[i+1:]...)
	if sess.HighlightID == id {
		sess.HighlightID = 0
	}
	st.mu.Unlock()
	st.emit(effects{changed: true, status: fmt.Sprintf("Deleted #%d", id)})
}

// ClearMeasurements removes every result from the active session and resets
// its id counter.
func (st *Store) ClearMeasurements() {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil || len(sess.Results) == 0 {
		st.mu.Unlock()
		st.emit(effects{status: "Nothing to clear"})
		return
	}
	st.recordUndoLocked(sess)
	n := len(sess.Results)
	sess.Results = nil
	sess.NextResultID = 1
	sess.HighlightID = 0
	st.mu.Unlock()
	st.emit(effects{changed: true, status: fmt.Sprintf("Cleared %d measurements", n)})
}

// SetHighlight marks one measurement as highlighted in the active session.
func (st *Store) SetHighlight(id int64) {
	st.mu.Lock()
	sess := st.activeLocked()
	if sess == nil {
		st.mu.Unlock()
		return
	}
	sess.HighlightID = id
	st.mu.Unlock()
	st.emit(effects{view: true})
}

// FormatResult renders a measurement of the given session using the current
// rounding preference.
func (st *Store) FormatResult(sess *Session, m Measurement) string {
	return calib.FormatWithUnit(m.PixelLength, sess.Calibration, st.roundingMode())
}
