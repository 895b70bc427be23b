// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"micro-measure/internal/calib"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyRoundingMode      = "roundingMode"      // "round" or "ceil"
	KeyContinuousMeasure = "continuousMeasure" // chain measurements from the last point
	KeyEdgeSnap          = "edgeSnap"          // snap clicks to the strongest nearby edge
	KeyLastDirectory     = "lastDirectory"     // starting directory for file dialogs
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/micro-measure/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "micro-measure", prefsFile))
}

// LoadFrom reads preferences from an explicit path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// The measurement store reads its options through this adapter.

// RoundingMode returns the configured result rounding mode.
func (p *Prefs) RoundingMode() calib.RoundingMode {
	return calib.ParseRoundingMode(p.String(KeyRoundingMode, "round"))
}

// SetRoundingMode stores the result rounding mode.
func (p *Prefs) SetRoundingMode(mode calib.RoundingMode) {
	if mode == calib.RoundCeil {
		p.SetString(KeyRoundingMode, "ceil")
	} else {
		p.SetString(KeyRoundingMode, "round")
	}
}

// ContinuousMeasure reports whether measurements chain from the last point.
func (p *Prefs) ContinuousMeasure() bool {
	return p.Bool(KeyContinuousMeasure, false)
}

// EdgeSnap reports whether clicks snap to the strongest nearby edge.
func (p *Prefs) EdgeSnap() bool {
	return p.Bool(KeyEdgeSnap, false)
}
