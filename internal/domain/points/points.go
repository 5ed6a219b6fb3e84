// Package points resolves boss tokens to integer awards. A token is a boss
// key with an optional leading "/" and an optional parenthetical modifier
// suffix; bosses resolve through a flat table or through the ring, legacy
// and root family grammars.
package points

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Modifiers is the fixed vocabulary accepted as a parenthetical boss suffix.
var Modifiers = []string{"brucybonus", "double", "doublepoints", "fail", "comp"}

const (
	brucyBonusPoints = 5
	rootFlatPoints   = 4
)

var (
	ringRe   = regexp.MustCompile(`^/?rings([1-4])x([5-6])$`)
	legacyRe = regexp.MustCompile(`^/?legacy(\d+)\.([5-6])$`)
	rootRe   = regexp.MustCompile(`^/?root(\d*)$`)
)

// familyResolver pairs a family pattern with its points rule. The table is
// ordered; the first matching pattern resolves the token.
type familyResolver struct {
	re      *regexp.Regexp
	resolve func(s *Store, m []string) (int, bool)
}

var families = []familyResolver{
	{ringRe, (*Store).ringPoints},
	{legacyRe, (*Store).legacyPoints},
	{rootRe, (*Store).rootPoints},
}

// Store holds the points table and the priority substrings gating the comp
// modifier. It is immutable once built.
type Store struct {
	table map[string]Value
	prios []string
}

// NewStore builds a Store from a parsed points table and prio list.
func NewStore(table map[string]Value, prios []string) *Store {
	copied := make(map[string]Value, len(table))
	for key, value := range table {
		copied[key] = value
	}
	return &Store{table: copied, prios: append([]string(nil), prios...)}
}

// Bosses returns the table keys in sorted order.
func (s *Store) Bosses() []string {
	keys := make([]string, 0, len(s.table))
	for key := range s.table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Prios returns the comp-gate priority substrings.
func (s *Store) Prios() []string {
	return append([]string(nil), s.prios...)
}

// Points resolves a boss token to its award. ok is false when the token is
// not recognized, when a family lookup has no table backing, or when a comp
// modifier finds no priority substring in the token.
func (s *Store) Points(token string) (int, bool) {
	base, modifier := splitModifier(token)

	if modifier == "comp" && !s.prioMatch(token) {
		return 0, false
	}

	pts := 0
	if modifier == "brucybonus" {
		pts += brucyBonusPoints
	}

	if v, ok := s.lookup(base); ok {
		if v.Kind != KindScalar {
			return 0, false
		}
		pts += v.Scalar
	} else {
		family, ok := s.familyPoints(base)
		if !ok {
			return 0, false
		}
		pts += family
	}

	switch modifier {
	case "double", "doublepoints":
		pts *= 2
	case "fail":
		pts = (pts + 1) / 2
	}

	return pts, true
}

// lookup finds the table entry for a base token, accepting the key with or
// without its leading "/".
func (s *Store) lookup(base string) (Value, bool) {
	if v, ok := s.table[base]; ok {
		return v, true
	}
	if v, ok := s.table["/"+base]; ok {
		return v, true
	}
	if strings.HasPrefix(base, "/") {
		if v, ok := s.table[base[1:]]; ok {
			return v, true
		}
	}
	return Value{}, false
}

func (s *Store) familyPoints(base string) (int, bool) {
	for _, f := range families {
		m := f.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		return f.resolve(s, m)
	}
	return 0, false
}

func (s *Store) ringPoints(m []string) (int, bool) {
	count, _ := strconv.Atoi(m[1])
	star := m[2]
	v, ok := s.lookup("/rings")
	if !ok || v.Kind != KindRingBase {
		return 0, false
	}
	base, ok := v.RingBase[star]
	if !ok {
		return 0, false
	}
	return base * count, true
}

func (s *Store) legacyPoints(m []string) (int, bool) {
	level, _ := strconv.Atoi(m[1])
	star := m[2]
	v, ok := s.lookup("/legacy")
	if !ok || v.Kind != KindTiers {
		return 0, false
	}
	for _, tier := range v.Tiers {
		if level >= tier.Level {
			if star == "5" {
				return tier.Five, true
			}
			return tier.Six, true
		}
	}
	return 0, false
}

func (s *Store) rootPoints(_ []string) (int, bool) {
	return rootFlatPoints, true
}

func (s *Store) prioMatch(token string) bool {
	for _, p := range s.prios {
		if strings.Contains(token, p) {
			return true
		}
	}
	return false
}

// splitModifier strips a trailing "(modifier)" suffix when the modifier is
// part of the fixed vocabulary. Unknown suffixes stay attached to the base.
func splitModifier(token string) (base, modifier string) {
	if !strings.HasSuffix(token, ")") {
		return token, ""
	}
	p := strings.LastIndex(token, "(")
	if p < 0 {
		return token, ""
	}
	candidate := token[p+1 : len(token)-1]
	for _, m := range Modifiers {
		if candidate == m {
			return token[:p], candidate
		}
	}
	return token, ""
}

// IsModifier reports whether a bare word is part of the modifier vocabulary.
func IsModifier(word string) bool {
	for _, m := range Modifiers {
		if word == m {
			return true
		}
	}
	return false
}

// NormalizeKey strips a parenthetical suffix and a leading slash from a
// boss token, yielding the display key used by counters and saved events.
func NormalizeKey(token string) string {
	cleaned := strings.TrimSpace(token)
	if strings.HasSuffix(cleaned, ")") {
		if p := strings.Index(cleaned, "("); p >= 0 {
			cleaned = cleaned[:p]
		}
	}
	return strings.TrimPrefix(cleaned, "/")
}
