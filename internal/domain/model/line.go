// Package model contains domain models passed between pipeline stages.
package model

// NotToken marks the names after it as subtractions rather than credits.
const NotToken = "not"

// MultiNotMarker is the structural token a host inserts to relax the shape
// rules for lines subtracting from several names. It never reaches the
// resolved output.
const MultiNotMarker = "__multinot__"

// Line is one sanitized source line paired with its 1-based position in the
// raw log. The index is stable across edits to other lines, so error reports
// and resolver prompts can point back at the exact input row.
type Line struct {
	Index int    // 1-based source position
	Text  string // sanitized line text
}

// FormattedLine is the validator's canonical tokenization of one good line.
// Tokens[0] is always a boss token the points resolver accepts; the rest are
// participant tokens plus any literal "not" markers.
type FormattedLine struct {
	Index  int
	Tokens []string
}

// SanityCheck summarizes the sliced batch so a host can confirm the date
// window grabbed the intended rows before committing to a full run.
type SanityCheck struct {
	FirstEntry string
	LastEntry  string
	TotalLines int
}
