package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"micro-measure/internal/imagefile"
	"micro-measure/internal/measure"
)

const thumbEdge = 96

// sessionStrip shows one thumbnail per loaded image, with the active one
// marked. Tapping a thumbnail activates its session.
type sessionStrip struct {
	store  *measure.Store
	box    *fyne.Container
	scroll *container.Scroll
}

func newSessionStrip(store *measure.Store) *sessionStrip {
	ss := &sessionStrip{
		store: store,
		box:   container.NewVBox(),
	}
	ss.scroll = container.NewVScroll(ss.box)
	ss.scroll.SetMinSize(fyne.NewSize(thumbEdge+24, 0))
	ss.Refresh()
	return ss
}

// Container returns the strip for embedding in the window layout.
func (ss *sessionStrip) Container() fyne.CanvasObject {
	return ss.scroll
}

// Refresh rebuilds the strip from the current session list.
func (ss *sessionStrip) Refresh() {
	sessions := ss.store.Sessions()
	active := ss.store.ActiveIndex()

	ss.box.Objects = nil
	for i, sess := range sessions {
		index := i
		name := sess.Name
		if len(sess.Results) > 0 {
			name = fmt.Sprintf("%s (%d)", sess.Name, len(sess.Results))
		}
		ss.box.Add(newSessionThumb(sess, name, i == active, func() {
			ss.store.ActivateSession(index)
		}))
	}
	ss.box.Refresh()
}

// sessionThumb is a tappable thumbnail with the session name below it.
type sessionThumb struct {
	widget.BaseWidget
	content fyne.CanvasObject
	onTap   func()
}

func newSessionThumb(sess *measure.Session, name string, active bool, onTap func()) *sessionThumb {
	img := fynecanvas.NewImageFromImage(imagefile.Thumbnail(sess.Image, thumbEdge))
	img.FillMode = fynecanvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(thumbEdge, thumbEdge))

	label := widget.NewLabel(name)
	label.Truncation = fyne.TextTruncateEllipsis
	if active {
		label.TextStyle = fyne.TextStyle{Bold: true}
	}

	st := &sessionThumb{
		content: container.NewVBox(img, label),
		onTap:   onTap,
	}
	st.ExtendBaseWidget(st)
	return st
}

func (st *sessionThumb) Tapped(_ *fyne.PointEvent) {
	if st.onTap != nil {
		st.onTap()
	}
}

func (st *sessionThumb) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(st.content)
}
