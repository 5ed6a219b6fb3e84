package model

import "time"

// EventEntry is a single attendee's share of a boss event.
type EventEntry struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// EventRecord is one scored boss event as persisted in the run store.
// Inactive records are kept for audit and excluded from standings.
type EventRecord struct {
	RunID      string       `json:"run_id"`
	CreatedUTC time.Time    `json:"created_utc"`
	EventUTC   time.Time    `json:"event_time_utc"`
	Boss       string       `json:"boss"`
	Points     int          `json:"points"`
	Entries    []EventEntry `json:"entries"`
	SourceLine string       `json:"source_line"`
	Active     bool         `json:"active"`
	ReplacedBy *string      `json:"replaced_by"`
}

// RunMeta summarises one saved run.
type RunMeta struct {
	RunID      string    `json:"run_id"`
	CreatedUTC time.Time `json:"created_utc"`
	StartUTC   time.Time `json:"start_utc"`
	EndUTC     time.Time `json:"end_utc"`
	EventCount int       `json:"event_count"`
	SourcePath string    `json:"timers_path,omitempty"`
}

// PendingEvent is a scored event produced by a calculation before it is
// attached to a run.
type PendingEvent struct {
	EventTime  time.Time
	Boss       string
	Points     int
	Entries    []EventEntry
	SourceLine string
}
