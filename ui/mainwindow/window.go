// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"micro-measure/internal/calib"
	"micro-measure/internal/export"
	"micro-measure/internal/imagefile"
	"micro-measure/internal/measure"
	"micro-measure/internal/project"
	"micro-measure/internal/version"
	"micro-measure/pkg/geometry"
	"micro-measure/ui/canvas"
	"micro-measure/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	prefs *prefs.Prefs

	store *measure.Store
	saver *measure.Autosaver
	undo  *undoStack

	canvas    *canvas.MeasureCanvas
	statusBar *widget.Label
	strip     *sessionStrip

	// Menu items whose labels track preference toggles
	continuousItem *fyne.MenuItem
	edgeSnapItem   *fyne.MenuItem
	roundItem      *fyne.MenuItem
	ceilItem       *fyne.MenuItem
	mainMenu       *fyne.MainMenu
}

// New creates the main window and the measurement store behind it.
func New(fyneApp fyne.App, appPrefs *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		Window: fyneApp.NewWindow("MicroMeasure"),
		app:    fyneApp,
		prefs:  appPrefs,
		undo:   newUndoStack(),
	}

	var store *measure.Store
	mw.saver = measure.NewAutosaver(measure.DefaultAutosaveDelay, func() error {
		return project.Save(project.AutosavePath(), store.Snapshot())
	})
	store = measure.NewStore(measure.Options{
		Prefs:         appPrefs,
		Undo:          mw.undo,
		Saver:         mw.saver,
		Status:        mw.setStatus,
		OnChange:      mw.onStoreChange,
		OnScalePrompt: mw.showScaleDialog,
	})
	mw.store = store

	mw.setupUI()
	mw.setupMenus()
	mw.Resize(fyne.NewSize(1100, 750))
	return mw
}

// Store exposes the measurement store for startup wiring.
func (mw *MainWindow) Store() *measure.Store {
	return mw.store
}

// Close flushes the autosaver.
func (mw *MainWindow) Close() {
	mw.saver.Close()
	mw.Window.Close()
}

// setupUI creates the main layout: session strip | canvas | status bar.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMeasureCanvas(mw.store)
	mw.statusBar = widget.NewLabel("Ready")
	mw.strip = newSessionStrip(mw.store)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		mw.strip.Container(),
		nil,
		mw.canvas,
	)
	mw.SetContent(content)
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Images...", mw.onOpenImages),
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy Results", mw.onCopyResults),
		fyne.NewMenuItem("Copy All Results", mw.onCopyAllResults),
		fyne.NewMenuItem("Export TSV...", mw.onExportTSV),
		fyne.NewMenuItem("Export Annotated Image...", mw.onExportAnnotated),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.continuousItem = fyne.NewMenuItem(toggleLabel("Continuous Measure", mw.prefs.ContinuousMeasure()), mw.onToggleContinuous)
	mw.edgeSnapItem = fyne.NewMenuItem(toggleLabel("Snap to Edge", mw.prefs.EdgeSnap()), mw.onToggleEdgeSnap)
	mw.roundItem = fyne.NewMenuItem("", func() { mw.setRounding(false) })
	mw.ceilItem = fyne.NewMenuItem("", func() { mw.setRounding(true) })
	mw.updateRoundingLabels()

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Cancel", mw.store.CancelAction),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Measure Mode", func() { mw.store.SetMode(measure.ModeMeasure) }),
		fyne.NewMenuItem("Set Scale Mode", func() { mw.store.SetMode(measure.ModeScale) }),
		fyne.NewMenuItemSeparator(),
		mw.continuousItem,
		mw.edgeSnapItem,
		fyne.NewMenuItemSeparator(),
		mw.roundItem,
		mw.ceilItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Measurements", mw.onClearMeasurements),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.zoomCentered(1.25) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.zoomCentered(1 / 1.25) }),
		fyne.NewMenuItem("Fit to Window", mw.store.FitActive),
	)

	sessionMenu := fyne.NewMenu("Image",
		fyne.NewMenuItem("Next Image", func() { mw.store.SwitchSession(1) }),
		fyne.NewMenuItem("Previous Image", func() { mw.store.SwitchSession(-1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Image", mw.onCloseImage),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, viewMenu, sessionMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// setStatus updates the status bar text.
func (mw *MainWindow) setStatus(text string) {
	mw.statusBar.SetText(text)
}

// onStoreChange redraws everything derived from store state.
func (mw *MainWindow) onStoreChange() {
	mw.canvas.Refresh()
	mw.strip.Refresh()
	if sess := mw.store.ActiveSession(); sess != nil {
		mw.SetTitle("MicroMeasure - " + sess.Name)
	} else {
		mw.SetTitle("MicroMeasure")
	}
}

// zoomCentered zooms around the middle of the canvas.
func (mw *MainWindow) zoomCentered(factor float64) {
	size := mw.canvas.Size()
	center := geometry.NewPoint2D(float64(size.Width)/2, float64(size.Height)/2)
	mw.store.ZoomAt(center, factor)
}

// Preference toggles

func toggleLabel(name string, on bool) string {
	if on {
		return "✓ " + name
	}
	return "  " + name
}

func (mw *MainWindow) onToggleContinuous() {
	next := !mw.prefs.ContinuousMeasure()
	mw.prefs.SetBool(prefs.KeyContinuousMeasure, next)
	mw.continuousItem.Label = toggleLabel("Continuous Measure", next)
	mw.mainMenu.Refresh()
	mw.savePrefs()
}

func (mw *MainWindow) onToggleEdgeSnap() {
	next := !mw.prefs.EdgeSnap()
	mw.prefs.SetBool(prefs.KeyEdgeSnap, next)
	mw.edgeSnapItem.Label = toggleLabel("Snap to Edge", next)
	mw.mainMenu.Refresh()
	mw.savePrefs()
}

func (mw *MainWindow) setRounding(ceil bool) {
	if ceil {
		mw.prefs.SetRoundingMode(calib.RoundCeil)
	} else {
		mw.prefs.SetRoundingMode(calib.RoundNearest)
	}
	mw.updateRoundingLabels()
	mw.mainMenu.Refresh()
	mw.savePrefs()
	mw.canvas.Refresh()
}

func (mw *MainWindow) updateRoundingLabels() {
	ceil := mw.prefs.RoundingMode() == calib.RoundCeil
	mw.roundItem.Label = toggleLabel("Round Results", !ceil)
	mw.ceilItem.Label = toggleLabel("Round Results Up", ceil)
}

func (mw *MainWindow) savePrefs() {
	if err := mw.prefs.Save(); err != nil {
		mw.setStatus("Failed to save preferences: " + err.Error())
	}
}

// File actions

func (mw *MainWindow) onOpenImages() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.loadImage(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imagefile.Extensions))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenFolder() {
	fd := dialog.NewFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		dir := list.Path()
		paths, err := imagefile.ListImages(dir)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if len(paths) == 0 {
			mw.setStatus("No images in " + dir)
			return
		}
		for _, p := range paths {
			mw.loadImage(p)
		}
	}, mw.Window)
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) loadImage(path string) {
	mw.saveLastDir(path)
	img, err := imagefile.Decode(path)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.store.AddSession(path, img)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		doc, err := project.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		missing := mw.store.Restore(doc, imagefile.Decode)
		if len(missing) > 0 {
			dialog.ShowInformation("Missing images",
				"These images could not be loaded:\n"+strings.Join(missing, "\n"), mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Ext}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != project.Ext {
			path += project.Ext
		}
		mw.saveLastDir(path)
		if err := project.Save(path, mw.store.Snapshot()); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.setStatus("Saved " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName("measurements" + project.Ext)
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onCopyResults() {
	sess := mw.store.ActiveSession()
	if sess == nil {
		mw.setStatus("No image loaded")
		return
	}
	mw.Clipboard().SetContent(export.SessionTSV(sess, mw.prefs.RoundingMode()))
	mw.setStatus("Results copied")
}

func (mw *MainWindow) onCopyAllResults() {
	sessions := mw.store.Sessions()
	if len(sessions) == 0 {
		mw.setStatus("No images loaded")
		return
	}
	mw.Clipboard().SetContent(export.AllSessionsTSV(sessions, mw.prefs.RoundingMode()))
	mw.setStatus("All results copied")
}

func (mw *MainWindow) onExportTSV() {
	sessions := mw.store.Sessions()
	if len(sessions) == 0 {
		mw.setStatus("No images loaded")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		text := export.AllSessionsTSV(sessions, mw.prefs.RoundingMode())
		if _, err := writer.Write([]byte(text)); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.setStatus("Exported " + filepath.Base(writer.URI().Path()))
	}, mw.Window)
	fd.SetFileName("measurements.tsv")
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportAnnotated() {
	sess := mw.store.ActiveSession()
	if sess == nil {
		mw.setStatus("No image loaded")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		img := export.Annotated(sess, mw.prefs.RoundingMode())
		if err := export.WritePNG(writer, img); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.setStatus("Exported " + filepath.Base(writer.URI().Path()))
	}, mw.Window)
	fd.SetFileName(sess.Name + "_annotated.png")
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Edit actions

func (mw *MainWindow) onUndo() {
	if !mw.undo.Pop() {
		mw.setStatus("Nothing to undo")
	}
}

func (mw *MainWindow) onClearMeasurements() {
	sess := mw.store.ActiveSession()
	if sess == nil || len(sess.Results) == 0 {
		return
	}
	dialog.ShowConfirm("Clear Measurements",
		fmt.Sprintf("Remove all %d measurements from %s?", len(sess.Results), sess.Name),
		func(ok bool) {
			if ok {
				mw.store.ClearMeasurements()
			}
		}, mw.Window)
}

func (mw *MainWindow) onCloseImage() {
	index := mw.store.ActiveIndex()
	if index < 0 {
		return
	}
	mw.store.RemoveSession(index)
}

// showScaleDialog asks for the real length of the picked span and feeds it
// back to the store. Invalid input reopens the dialog with the span intact.
func (mw *MainWindow) showScaleDialog(pixels float64) {
	lengthEntry := widget.NewEntry()
	lengthEntry.SetPlaceHolder("known length")
	unitEntry := widget.NewEntry()
	unitEntry.SetPlaceHolder("µm")

	items := []*widget.FormItem{
		widget.NewFormItem(fmt.Sprintf("Length of %.1f px span", pixels), lengthEntry),
		widget.NewFormItem("Unit", unitEntry),
	}
	dialog.ShowForm("Set Scale", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			mw.store.CancelScaleInput()
			return
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(lengthEntry.Text), 64)
		if err != nil {
			mw.setStatus("Invalid length: " + lengthEntry.Text)
			mw.showScaleDialog(pixels)
			return
		}
		if err := mw.store.ApplyScaleInput(strings.TrimSpace(unitEntry.Text), value); err != nil {
			mw.setStatus(err.Error())
			mw.showScaleDialog(pixels)
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About MicroMeasure",
		fmt.Sprintf("MicroMeasure v%s\n\n"+
			"Distance measurement for microscope and SEM captures.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir remembers the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
	mw.savePrefs()
}
