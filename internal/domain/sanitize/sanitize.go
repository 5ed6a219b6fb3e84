// Package sanitize normalizes raw attendance log lines before validation:
// ASCII folding, typo rewrites, boss alias substitution, timestamp
// extraction, and date-window slicing.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"dkptally/internal/domain/model"
)

// AliasPair maps a written boss form to its canonical key. Pairs are applied
// in order and the first matching pattern wins.
type AliasPair struct {
	Pattern   string
	Canonical string
}

var (
	doublePointsRe = regexp.MustCompile(`\(double\s+points?\)`)
	slashSpaceRe   = regexp.MustCompile(`(^|\s)/\s+`)
	rootTimesRe    = regexp.MustCompile(`\brootx(\d+)\b`)
	aggySlashRe    = regexp.MustCompile(`\baggy/\s*`)
)

// typoRewrites are literal corrections for recurring boss-name misspellings,
// anchored to slash or word boundaries.
var typoRewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`/faction\b`), "/factions"},
	{regexp.MustCompile(`/nerco\b`), "/necro"},
	{regexp.MustCompile(`/hrugn\b`), "/hrung"},
	{regexp.MustCompile(`/mordis\b`), "/mord"},
	{regexp.MustCompile(`/mords\b`), "/mord"},
}

// Sanitizer normalizes raw lines using a fixed boss alias list.
type Sanitizer struct {
	aliases []AliasPair
}

// NewSanitizer creates a Sanitizer. Alias patterns and canonicals are folded
// to lower case so they match the normalized line text.
func NewSanitizer(aliases []AliasPair) *Sanitizer {
	folded := make([]AliasPair, len(aliases))
	for i, a := range aliases {
		folded[i] = AliasPair{
			Pattern:   strings.ToLower(a.Pattern),
			Canonical: strings.ToLower(a.Canonical),
		}
	}
	return &Sanitizer{aliases: folded}
}

// Line normalizes one raw line. It returns the empty string when nothing
// remains after normalization, in which case the caller drops the line.
// Sanitizing an already sanitized line yields the same line.
func (s *Sanitizer) Line(raw string) string {
	fields := strings.Fields(raw)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, asciiLower(f))
	}
	updated := strings.Join(tokens, " ")
	if updated == "" {
		return ""
	}

	updated = doublePointsRe.ReplaceAllString(updated, "(doublepoints)")
	updated = slashSpaceRe.ReplaceAllString(updated, "${1}/")
	updated = rootTimesRe.ReplaceAllString(updated, "root${1}")
	for _, tr := range typoRewrites {
		updated = tr.re.ReplaceAllString(updated, tr.repl)
	}
	updated = aggySlashRe.ReplaceAllString(updated, "/aggy ")

	// The boss token is the first token of the entry segment, which follows
	// the last ":" when one is present.
	if idx := strings.LastIndex(updated, ":"); idx >= 0 {
		prefix := updated[:idx]
		entry := strings.TrimSpace(updated[idx+1:])
		if entry != "" {
			parts := strings.Fields(entry)
			s.aliasFirst(parts)
			updated = prefix + ":" + strings.Join(parts, " ")
		}
	} else {
		parts := strings.Fields(updated)
		if len(parts) > 0 {
			s.aliasFirst(parts)
			updated = strings.Join(parts, " ")
		}
	}

	return strings.TrimSpace(updated)
}

// Lines sanitizes a whole batch, dropping lines that come out empty.
// Indices are 1-based source positions and are stable across the drop.
func (s *Sanitizer) Lines(raw []string) []model.Line {
	out := make([]model.Line, 0, len(raw))
	for i, line := range raw {
		text := s.Line(line)
		if text == "" {
			continue
		}
		out = append(out, model.Line{Index: i + 1, Text: text})
	}
	return out
}

// aliasFirst substitutes the boss alias on the first token, keeping any
// trailing parenthetical modifier attached to it.
func (s *Sanitizer) aliasFirst(parts []string) {
	if len(parts) == 0 {
		return
	}
	boss := parts[0]
	modifier := ""
	if strings.HasSuffix(boss, ")") {
		if p := strings.Index(boss, "("); p >= 0 {
			modifier = boss[p:]
			boss = boss[:p]
		}
	}
	for _, a := range s.aliases {
		if boss == a.Pattern {
			boss = a.Canonical
			break
		}
	}
	parts[0] = boss + modifier
}

// asciiLower strips non-ASCII runes and lower-cases the rest.
func asciiLower(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
