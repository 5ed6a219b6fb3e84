package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// SettingsFile is the document name inside the catalog directory.
	SettingsFile = "settings.json"

	defaultRangeName = "DKP Sheet!B3:B"
	defaultAThresh   = 70
	defaultAPlus     = 300

	dateLayout = "2006-01-02"
)

// Settings is the user-editable document persisted next to the catalog.
// It remembers the roster source, the last scored window and the
// attendance thresholds between runs.
type Settings struct {
	SpreadsheetID  string `json:"spreadsheet_id"`
	RangeName      string `json:"range_name"`
	RosterFile     string `json:"roster_file,omitempty"`
	LastTimersPath string `json:"last_timers_path,omitempty"`
	UseAllEntries  bool   `json:"use_all_entries"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`

	// Weekly attendance grades.
	ActivityAThreshold     int `json:"activity_a_threshold"`
	ActivityAPlusThreshold int `json:"activity_aplus_threshold"`
}

// DefaultSettings returns the document used when none is saved yet.
func DefaultSettings() Settings {
	return Settings{
		RangeName:              defaultRangeName,
		UseAllEntries:          true,
		ActivityAThreshold:     defaultAThresh,
		ActivityAPlusThreshold: defaultAPlus,
	}
}

// LoadSettings reads the settings document under baseDir. A missing file
// yields the defaults. A corrupt file also yields the defaults, together
// with an ErrCorruptSettings so the caller can warn without aborting.
func LoadSettings(baseDir string) (Settings, error) {
	s := DefaultSettings()

	raw, err := os.ReadFile(filepath.Join(baseDir, SettingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("%w: %w", ErrCorruptSettings, err)
	}

	// Decoding over the defaults keeps them for any absent key.
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %w", ErrCorruptSettings, err)
	}
	return s, nil
}

// SaveSettings writes the document under baseDir, pretty-printed.
func SaveSettings(baseDir string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	path := filepath.Join(baseDir, SettingsFile)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Window parses the saved date range in the given location. Empty fields
// yield zero times, which callers treat as "unset".
func (s Settings) Window(loc *time.Location) (start, end time.Time, err error) {
	if s.StartDate != "" {
		start, err = time.ParseInLocation(dateLayout, s.StartDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing start_date: %w", err)
		}
	}
	if s.EndDate != "" {
		end, err = time.ParseInLocation(dateLayout, s.EndDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing end_date: %w", err)
		}
	}
	return start, end, nil
}
