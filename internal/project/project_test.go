package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"micro-measure/internal/calib"
	"micro-measure/pkg/geometry"
)

func sampleDocument() Document {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return Document{
		Version:     Version,
		ExportedAt:  created,
		ActiveIndex: 1,
		Sessions: []SessionState{
			{
				Name:         "specimen-a",
				ImagePath:    "/data/specimen-a.png",
				Transform:    geometry.ViewTransform{Scale: 1.5, TX: 10, TY: -4},
				NextResultID: 3,
				Results: []Result{
					{ID: 2, P1: geometry.NewPoint2D(5, 5), P2: geometry.NewPoint2D(8, 9), PixelLength: 5, CreatedAt: created},
					{ID: 1, P1: geometry.NewPoint2D(0, 0), P2: geometry.NewPoint2D(3, 4), PixelLength: 5, CreatedAt: created},
				},
			},
			{
				Name:               "specimen-b",
				ImagePath:          "/data/specimen-b.tif",
				Calibration:        &calib.Calibration{Unit: "µm", UnitsPerPixel: 0.02},
				Transform:          geometry.ViewTransform{Scale: 0.5, TX: 0, TY: 0},
				HasCustomTransform: true,
				NextResultID:       1,
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip"+Ext)
	doc := sampleDocument()

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(doc, loaded) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", doc, loaded)
	}
}

func TestJSONKeyNames(t *testing.T) {
	data, err := json.Marshal(sampleDocument())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"version", "exportedAt", "activeIndex", "sessions"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	sessions := raw["sessions"].([]any)
	sess := sessions[1].(map[string]any)
	for _, key := range []string{"name", "imagePath", "calibration", "transform", "hasCustomTransform", "nextResultID", "results"} {
		if _, ok := sess[key]; !ok {
			t.Errorf("missing session key %q", key)
		}
	}
	cal := sess["calibration"].(map[string]any)
	if _, ok := cal["unitsPerPixel"]; !ok {
		t.Error(`missing calibration key "unitsPerPixel"`)
	}
	tr := sess["transform"].(map[string]any)
	for _, key := range []string{"scale", "tx", "ty"} {
		if _, ok := tr[key]; !ok {
			t.Errorf("missing transform key %q", key)
		}
	}
	result := sessions[0].(map[string]any)["results"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "p1", "p2", "pixelLength", "createdAt"} {
		if _, ok := result[key]; !ok {
			t.Errorf("missing result key %q", key)
		}
	}
	if p1 := result["p1"].(map[string]any); p1["x"] == nil || p1["y"] == nil {
		t.Error("point keys should be x and y")
	}
}

func TestLoadToleratesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future"+Ext)
	blob := `{"version": 9, "exportedAt": "2030-01-01T00:00:00Z", "activeIndex": -1,
	          "sessions": [], "futureField": {"nested": true}}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Version != 9 || doc.ActiveIndex != -1 {
		t.Errorf("got %+v", doc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent"+Ext)); err == nil {
		t.Error("expected error for a missing file")
	}
}
