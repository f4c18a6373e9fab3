package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// Settings holds the user-facing display settings.
type Settings struct {
	TimeRange string
	Timezone  string
}

// DefaultSettings returns the settings applied when nothing persisted is
// recognized.
func DefaultSettings() Settings {
	return Settings{TimeRange: model.DefaultTimeRange, Timezone: model.DefaultTimezone}
}

// SettingsStore persists settings as key=value lines. Unrecognized keys and
// values are silently ignored in favor of defaults; a malformed file is
// never fatal.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
	current  Settings
}

// NewSettingsStore loads settings from filePath, applying defaults for
// anything missing or unrecognized.
func NewSettingsStore(filePath string) *SettingsStore {
	s := &SettingsStore{filePath: filePath, current: DefaultSettings()}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return s
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "time_range":
			if model.ValidTimeRange(value) {
				s.current.TimeRange = value
			}
		case "timezone":
			if model.ValidTimezone(value) {
				s.current.Timezone = value
			}
		}
	}
	return s
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set validates, stores, and persists new settings. Invalid fields are
// rejected rather than silently defaulted: the caller chose them explicitly.
func (s *SettingsStore) Set(next Settings) error {
	if !model.ValidTimeRange(next.TimeRange) {
		return fmt.Errorf("unknown time range %q", next.TimeRange)
	}
	if !model.ValidTimezone(next.Timezone) {
		return fmt.Errorf("unknown timezone %q", next.Timezone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	return s.save()
}

func (s *SettingsStore) save() error {
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "time_range=%s\n", s.current.TimeRange)
	fmt.Fprintf(&b, "timezone=%s\n", s.current.Timezone)
	if err := os.WriteFile(s.filePath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
