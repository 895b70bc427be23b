// Package canvas provides the interactive measurement canvas.
package canvas

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"micro-measure/internal/measure"
	"micro-measure/pkg/geometry"
)

const wheelZoomStep = 1.25

// MeasureCanvas displays the active session's image through its view
// transform and forwards mouse interaction to the measurement store.
// Left click places a point, right click cancels, drag pans, and the
// wheel zooms around the cursor.
type MeasureCanvas struct {
	widget.BaseWidget

	store  *measure.Store
	raster *fynecanvas.Raster

	lastSize image.Point

	// Cursor position for the rubber-band preview, valid while hovering.
	cursor   geometry.Point2D
	hovering bool
}

// NewMeasureCanvas creates a canvas bound to the store.
func NewMeasureCanvas(store *measure.Store) *MeasureCanvas {
	mc := &MeasureCanvas{store: store}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.ExtendBaseWidget(mc)
	return mc
}

// Refresh redraws the canvas.
func (mc *MeasureCanvas) Refresh() {
	mc.raster.Refresh()
	mc.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (mc *MeasureCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

// Tapped places a measurement or scale point at the click position.
func (mc *MeasureCanvas) Tapped(ev *fyne.PointEvent) {
	mc.store.CommitClick(geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y)))
}

// TappedSecondary cancels the pick in progress, or removes the newest
// measurement when nothing is pending.
func (mc *MeasureCanvas) TappedSecondary(_ *fyne.PointEvent) {
	mc.store.CancelAction()
}

// Dragged pans the view.
func (mc *MeasureCanvas) Dragged(ev *fyne.DragEvent) {
	mc.store.Pan(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
}

// DragEnd implements fyne.Draggable.
func (mc *MeasureCanvas) DragEnd() {}

// Scrolled zooms around the cursor.
func (mc *MeasureCanvas) Scrolled(ev *fyne.ScrollEvent) {
	anchor := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	if ev.Scrolled.DY > 0 {
		mc.store.ZoomAt(anchor, wheelZoomStep)
	} else if ev.Scrolled.DY < 0 {
		mc.store.ZoomAt(anchor, 1/wheelZoomStep)
	}
}

// MouseIn implements desktop.Hoverable.
func (mc *MeasureCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.MouseMoved(ev)
}

// MouseMoved tracks the cursor for the rubber-band preview.
func (mc *MeasureCanvas) MouseMoved(ev *desktop.MouseEvent) {
	mc.cursor = geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	mc.hovering = true
	if len(mc.store.PendingPoints()) > 0 {
		mc.raster.Refresh()
	}
}

// MouseOut implements desktop.Hoverable.
func (mc *MeasureCanvas) MouseOut() {
	mc.hovering = false
}

// draw is the raster drawing function.
func (mc *MeasureCanvas) draw(w, h int) image.Image {
	if p := image.Pt(w, h); p != mc.lastSize && w > 0 && h > 0 {
		mc.lastSize = p
		mc.store.SetCanvasSize(geometry.Size{Width: float64(w), Height: float64(h)})
	}

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	fillBackground(output)

	sess := mc.store.ActiveSession()
	if sess == nil || sess.Image == nil {
		return output
	}

	tr := sess.Transform
	b := sess.Image.Bounds()
	aff := f64.Aff3{
		tr.Scale, 0, tr.TX - tr.Scale*float64(b.Min.X),
		0, tr.Scale, tr.TY - tr.Scale*float64(b.Min.Y),
	}
	xdraw.NearestNeighbor.Transform(output, aff, sess.Image, b, xdraw.Src, nil)

	mc.drawMeasurements(output, sess)
	mc.drawPending(output, sess)
	return output
}

func (mc *MeasureCanvas) drawMeasurements(output *image.RGBA, sess *measure.Session) {
	for _, m := range sess.Results {
		col := lineColor
		if m.ID == sess.HighlightID {
			col = highlightColor
		}
		p1 := sess.Transform.ScreenFromImage(m.P1)
		p2 := sess.Transform.ScreenFromImage(m.P2)
		drawLine(output, p1, p2, col)
		drawCross(output, p1, col)
		drawCross(output, p2, col)
		mid := geometry.NewPoint2D((p1.X+p2.X)/2, (p1.Y+p2.Y)/2)
		label := fmt.Sprintf("%d: %s", m.ID, mc.store.FormatResult(sess, m))
		drawLabel(output, label, int(mid.X)+6, int(mid.Y)-6)
	}
}

func (mc *MeasureCanvas) drawPending(output *image.RGBA, sess *measure.Session) {
	pending := mc.store.PendingPoints()
	for _, p := range pending {
		drawCross(output, sess.Transform.ScreenFromImage(p), pendingColor)
	}
	if len(pending) > 0 && mc.hovering {
		drawLine(output, sess.Transform.ScreenFromImage(pending[len(pending)-1]), mc.cursor, pendingColor)
	}
}
