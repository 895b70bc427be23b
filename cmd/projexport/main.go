// Command projexport exports the measurements of a saved project as
// tab-separated text, optionally writing annotated copies of the images.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"micro-measure/internal/calib"
	"micro-measure/internal/export"
	"micro-measure/internal/imagefile"
	"micro-measure/internal/measure"
	"micro-measure/internal/project"
	"micro-measure/internal/version"
)

func main() {
	projectPath := flag.String("project", "", "Path to a "+project.Ext+" project file")
	outPath := flag.String("out", "", "Write TSV here instead of stdout")
	rounding := flag.String("rounding", "round", "Result rounding: round or ceil")
	stats := flag.Bool("stats", false, "Append per-image summary statistics")
	annotate := flag.Bool("annotate", false, "Write annotated PNGs next to the images")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("projexport v%s (%s)\n", version.Version, version.GitCommit)
		return
	}
	if *projectPath == "" {
		fmt.Println("Usage: projexport -project <path> [-out results.tsv] [-rounding round|ceil] [-stats] [-annotate]")
		os.Exit(1)
	}

	doc, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}

	store := measure.NewStore(measure.Options{})
	if missing := store.Restore(doc, imagefile.Decode); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d images could not be loaded:\n  %s\n",
			len(missing), strings.Join(missing, "\n  "))
	}

	sessions := store.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "Project contains no loadable images")
		os.Exit(1)
	}

	mode := calib.ParseRoundingMode(*rounding)

	var text string
	if *stats && len(sessions) == 1 {
		text = export.SessionTSVWithStats(sessions[0], mode)
	} else {
		text = export.AllSessionsTSV(sessions, mode)
		if *stats {
			for _, sess := range sessions {
				if len(sess.Results) == 0 {
					continue
				}
				text += "\n" + export.SessionTSVWithStats(sess, mode)
			}
		}
	}

	if *outPath == "" {
		fmt.Print(text)
	} else if err := os.WriteFile(*outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	if *annotate {
		for _, sess := range sessions {
			if len(sess.Results) == 0 {
				continue
			}
			if err := writeAnnotated(sess, mode); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to annotate %s: %v\n", sess.Name, err)
			}
		}
	}
}

// writeAnnotated renders the session with its measurements drawn in and
// saves it as <image>_annotated.png next to the original.
func writeAnnotated(sess *measure.Session, mode calib.RoundingMode) error {
	dir := filepath.Dir(sess.Path)
	out := filepath.Join(dir, sess.Name+"_annotated.png")

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WritePNG(f, export.Annotated(sess, mode)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
