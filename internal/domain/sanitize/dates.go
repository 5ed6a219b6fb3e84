package sanitize

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a leading-timestamp matcher with its parse layout.
// Patterns are tried in order; a regexp match whose text fails to parse
// falls through to the next pattern.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`(?i)^(\d{1,2} [A-Za-z]{3} \d{4} at \d{2}:\d{2})`), "2 Jan 2006 at 15:04"},
	{regexp.MustCompile(`(?i)^([A-Za-z]{3} \d{1,2}, \d{4} at \d{1,2}:\d{2} [AP]M)`), "Jan 2, 2006 at 3:04 PM"},
	{regexp.MustCompile(`(?i)^([A-Za-z]+ \d{1,2}, \d{4} \d{1,2}:\d{2} [AP]M)`), "January 2, 2006 3:04 PM"},
	{regexp.MustCompile(`(?i)^([A-Za-z]{3} \d{1,2}, \d{4} \d{1,2}:\d{2} [AP]M)`), "Jan 2, 2006 3:04 PM"},
}

// Extractor parses the leading timestamp of a sanitized line.
type Extractor struct {
	loc *time.Location
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLocation sets the zone parsed timestamps are interpreted in.
func WithLocation(loc *time.Location) ExtractorOption {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewExtractor creates an Extractor. Timestamps carry no zone of their own,
// so they are interpreted in the local zone unless WithLocation overrides it.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract tries each supported timestamp grammar in priority order and
// returns the first successful parse. ok is false when none match.
func (e *Extractor) Extract(line string) (time.Time, bool) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		part := strings.TrimSpace(strings.TrimRight(m[1], ":"))
		t, err := time.ParseInLocation(p.layout, normalizeMeridiem(part), e.loc)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// normalizeMeridiem upper-cases a trailing am/pm. Parse matches month names
// ignoring case but wants the meridiem exactly as the layout spells it.
func normalizeMeridiem(part string) string {
	if len(part) < 2 {
		return part
	}
	tail := part[len(part)-2:]
	if strings.EqualFold(tail, "am") || strings.EqualFold(tail, "pm") {
		return part[:len(part)-2] + strings.ToUpper(tail)
	}
	return part
}
