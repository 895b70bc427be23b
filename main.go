// Package main provides the entry point for the MicroMeasure application.
package main

import (
	"log"
	"os"

	"fyne.io/fyne/v2/app"

	"micro-measure/internal/imagefile"
	"micro-measure/internal/project"
	"micro-measure/internal/version"
	"micro-measure/ui/mainwindow"
	"micro-measure/ui/prefs"
)

const appTitle = "MicroMeasure"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := app.NewWithID("micro-measure")
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appPrefs)

	switch {
	case len(os.Args) > 1:
		// An explicit project path wins over the autosave.
		path := os.Args[1]
		doc, err := project.Load(path)
		if err != nil {
			log.Printf("Failed to load project %s: %v", path, err)
			break
		}
		if missing := win.Store().Restore(doc, imagefile.Decode); len(missing) > 0 {
			log.Printf("Project %s: %d images missing", path, len(missing))
		}
	default:
		restoreAutosave(win)
	}

	win.SetMaster()
	win.ShowAndRun()
}

// restoreAutosave picks up the last autosaved state, silently doing nothing
// when none exists.
func restoreAutosave(win *mainwindow.MainWindow) {
	doc, err := project.Load(project.AutosavePath())
	if err != nil {
		return
	}
	if missing := win.Store().Restore(doc, imagefile.Decode); len(missing) > 0 {
		log.Printf("Autosave: %d images missing", len(missing))
	}
}
