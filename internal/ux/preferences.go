package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fridgechat/internal/fridge"
)

// PreferencesVersion is the current schema version for preferences.json.
const PreferencesVersion = "1.0"

// NotificationPreferences controls which fridge alerts reach the user.
type NotificationPreferences struct {
	// Version is the schema version for migration detection
	Version string `json:"version"`

	// Enabled turns every notification on or off
	Enabled bool `json:"enabled"`

	// Types toggles individual notification types. Types missing from the
	// map are allowed.
	Types map[string]bool `json:"types,omitempty"`

	// MinUrgency drops notifications below this urgency
	MinUrgency fridge.Urgency `json:"min_urgency,omitempty"`

	// Proactive posts allowed notifications into the chat as assistant
	// messages
	Proactive bool `json:"proactive"`

	// Metrics tracks local usage statistics
	Metrics NotificationMetrics `json:"metrics"`
}

// NotificationMetrics counts what happened to notifications.
type NotificationMetrics struct {
	Shown      int    `json:"shown"`
	Suppressed int    `json:"suppressed"`
	LastShown  string `json:"last_shown,omitempty"`
}

// Allows reports whether n passes the preferences.
func (p *NotificationPreferences) Allows(n fridge.Notification) bool {
	if p == nil {
		return true
	}
	if !p.Enabled {
		return false
	}
	if on, ok := p.Types[n.Type]; ok && !on {
		return false
	}
	return n.Urgency.Rank() >= p.MinUrgency.Rank()
}

// PreferencesManager handles loading/saving preferences.
type PreferencesManager struct {
	mu          sync.RWMutex
	path        string
	preferences *NotificationPreferences
}

// NewPreferencesManager creates a preferences manager backed by path.
func NewPreferencesManager(path string) *PreferencesManager {
	return &PreferencesManager{path: path}
}

// DefaultPreferencesPath returns the preferences file of a workspace.
func DefaultPreferencesPath(workspace string) string {
	return filepath.Join(workspace, ".fridgechat", "preferences.json")
}

// Load reads preferences from disk, creating defaults if not exists.
func (pm *PreferencesManager) Load() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	data, err := os.ReadFile(pm.path)
	if err != nil {
		if os.IsNotExist(err) {
			pm.preferences = DefaultPreferences()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if prefs.Version == "" {
		prefs.Version = PreferencesVersion
	}

	pm.preferences = prefs
	return nil
}

// Save writes preferences to disk.
func (pm *PreferencesManager) Save() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}

	dir := filepath.Dir(pm.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(pm.preferences, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(pm.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	return nil
}

// Get returns a copy of the current preferences.
func (pm *PreferencesManager) Get() NotificationPreferences {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	p := pm.preferences
	if p == nil {
		p = DefaultPreferences()
	}
	out := *p
	out.Types = make(map[string]bool, len(p.Types))
	for k, v := range p.Types {
		out.Types[k] = v
	}
	return out
}

// SetType enables or disables one notification type.
func (pm *PreferencesManager) SetType(kind string, enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureLocked()
	pm.preferences.Types[kind] = enabled
}

// SetMinUrgency sets the lowest urgency that is shown.
func (pm *PreferencesManager) SetMinUrgency(u fridge.Urgency) error {
	if u != "" && u.Rank() == 0 {
		return fmt.Errorf("unknown urgency: %s", u)
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureLocked()
	pm.preferences.MinUrgency = u
	return nil
}

// SetEnabled turns notifications on or off.
func (pm *PreferencesManager) SetEnabled(enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureLocked()
	pm.preferences.Enabled = enabled
}

// SetProactive controls whether allowed notifications are posted into the
// chat.
func (pm *PreferencesManager) SetProactive(on bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureLocked()
	pm.preferences.Proactive = on
}

// Filter returns the notifications the preferences allow, in order, and
// updates the shown and suppressed counters.
func (pm *PreferencesManager) Filter(ns []fridge.Notification) []fridge.Notification {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureLocked()
	var out []fridge.Notification
	for _, n := range ns {
		if pm.preferences.Allows(n) {
			out = append(out, n)
			pm.preferences.Metrics.Shown++
			pm.preferences.Metrics.LastShown = time.Now().Format(time.RFC3339)
		} else {
			pm.preferences.Metrics.Suppressed++
		}
	}
	return out
}

func (pm *PreferencesManager) ensureLocked() {
	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}
	if pm.preferences.Types == nil {
		pm.preferences.Types = make(map[string]bool)
	}
}

// DefaultPreferences returns sensible defaults for new users.
func DefaultPreferences() *NotificationPreferences {
	return &NotificationPreferences{
		Version: PreferencesVersion,
		Enabled: true,
		Types: map[string]bool{
			fridge.TypeExpiring: true,
			fridge.TypeRecipe:   true,
			fridge.TypeLowStock: true,
		},
		MinUrgency: fridge.UrgencyLow,
		Proactive:  true,
	}
}
