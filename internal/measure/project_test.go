package measure

import (
	"fmt"
	"image"
	"testing"

	"micro-measure/internal/project"
	"micro-measure/pkg/geometry"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.addSession(t, "a")
	env.store.SetMode(ModeScale)
	env.store.CommitImagePoint(geometry.NewPoint2D(0, 0))
	env.store.CommitImagePoint(geometry.NewPoint2D(100, 0))
	if err := env.store.ApplyScaleInput("µm", 20); err != nil {
		t.Fatal(err)
	}
	env.store.SetMode(ModeMeasure)
	env.store.CommitImagePoint(geometry.NewPoint2D(0, 0))
	env.store.CommitImagePoint(geometry.NewPoint2D(30, 40))
	env.addSession(t, "b")
	env.store.Pan(12, 34)

	doc := env.store.Snapshot()
	if doc.ActiveIndex != 1 || len(doc.Sessions) != 2 {
		t.Fatalf("snapshot: active=%d sessions=%d", doc.ActiveIndex, len(doc.Sessions))
	}

	restored := newTestEnv(t)
	missing := restored.store.Restore(doc, func(path string) (image.Image, error) {
		return flatImage(200, 100), nil
	})
	if len(missing) != 0 {
		t.Fatalf("missing: %v", missing)
	}

	sessions := restored.store.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("sessions: got %d", len(sessions))
	}
	a, b := sessions[0], sessions[1]
	if len(a.Results) != 1 || a.Results[0].PixelLength != 50 {
		t.Errorf("session a results: %+v", a.Results)
	}
	if a.NextResultID != 2 {
		t.Errorf("session a next id: got %d", a.NextResultID)
	}
	if a.Calibration == nil || a.Calibration.UnitsPerPixel != 0.2 {
		t.Errorf("session a calibration: %+v", a.Calibration)
	}
	if !b.HasCustomTransform {
		t.Error("session b should keep its custom transform")
	}
	if restored.store.ActiveIndex() != 1 {
		t.Errorf("active: got %d, want 1", restored.store.ActiveIndex())
	}
	if restored.store.LastCalibration() == nil {
		t.Error("restore should rebuild the inherited calibration")
	}
}

func TestRestoreDropsMissingImages(t *testing.T) {
	env := newTestEnv(t)
	env.addSession(t, "keep")
	env.addSession(t, "gone")
	doc := env.store.Snapshot()
	doc.ActiveIndex = 1

	restored := newTestEnv(t)
	missing := restored.store.Restore(doc, func(path string) (image.Image, error) {
		if path == "/img/gone.png" {
			return nil, fmt.Errorf("decode %s: no such file", path)
		}
		return flatImage(10, 10), nil
	})

	if len(missing) != 1 || missing[0] != "gone" {
		t.Errorf("missing: got %v, want [gone]", missing)
	}
	sessions := restored.store.Sessions()
	if len(sessions) != 1 || sessions[0].Name != "keep" {
		t.Errorf("sessions: got %+v", sessions)
	}
	// The dropped session was the active one; restore falls back to the
	// first survivor.
	if restored.store.ActiveIndex() != 0 {
		t.Errorf("active: got %d, want 0", restored.store.ActiveIndex())
	}
}

func TestRestoreEmptyDocument(t *testing.T) {
	empty := newTestEnv(t)
	doc := project.Document{Version: project.Version, ActiveIndex: -1}
	missing := empty.store.Restore(doc, func(string) (image.Image, error) {
		return nil, fmt.Errorf("unreachable")
	})
	if len(missing) != 0 {
		t.Errorf("missing: %v", missing)
	}
	if empty.store.ActiveIndex() != -1 {
		t.Errorf("active: got %d, want -1", empty.store.ActiveIndex())
	}
}
