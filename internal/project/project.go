// Package project defines the portable project document and its JSON file
// representation.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"micro-measure/internal/calib"
	"micro-measure/pkg/geometry"
)

// Version is the current project file format version.
const Version = 1

// Ext is the project file extension.
const Ext = ".mmproj"

// Document is the full persisted project: session list plus which one was
// active. Image bytes are not stored; each session references its source
// image by absolute path and is re-decoded at load time.
type Document struct {
	Version     int            `json:"version"`
	ExportedAt  time.Time      `json:"exportedAt"`
	ActiveIndex int            `json:"activeIndex"`
	Sessions    []SessionState `json:"sessions"`
}

// SessionState is one session's persisted form.
type SessionState struct {
	Name               string                 `json:"name"`
	ImagePath          string                 `json:"imagePath"`
	Calibration        *calib.Calibration     `json:"calibration,omitempty"`
	Transform          geometry.ViewTransform `json:"transform"`
	HasCustomTransform bool                   `json:"hasCustomTransform"`
	NextResultID       int64                  `json:"nextResultID"`
	Results            []Result               `json:"results"`
}

// Result is one persisted measurement.
type Result struct {
	ID          int64            `json:"id"`
	P1          geometry.Point2D `json:"p1"`
	P2          geometry.Point2D `json:"p2"`
	PixelLength float64          `json:"pixelLength"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Save writes the document as indented JSON, creating parent directories as
// needed.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}

// Load reads a project document. Unknown JSON fields are tolerated.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read project: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse project: %w", err)
	}
	return doc, nil
}

// AutosavePath returns the fixed recovery location under the user config
// directory.
func AutosavePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "micro-measure", "autosave"+Ext)
}
