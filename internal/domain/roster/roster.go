// Package roster seeds the name-resolution state from a roster: the alias
// map of recognizable token spellings and the fuzzy suggestion index used
// for everything the alias map misses.
package roster

import (
	"strings"
	"unicode"
)

// BuildAliases expands roster entries into a token → display-name map,
// layered over aliases persisted from earlier runs. Multi-word names map
// from their first word and from the words joined together; trailing digits
// are also dropped so "bob12" finds "Bob12" and "bob" alike.
func BuildAliases(names []string, persisted map[string]string) map[string]string {
	aliases := make(map[string]string, len(persisted)+3*len(names))
	for alias, canonical := range persisted {
		aliases[strings.ToLower(alias)] = canonical
	}

	for _, name := range names {
		if name == "" {
			continue
		}
		if strings.ContainsRune(name, ' ') {
			parts := strings.Fields(name)
			aliases[strings.ToLower(parts[0])] = name
			joined := strings.ToLower(strings.Join(parts, ""))
			aliases[joined] = name
			aliases[trimTrailingDigits(joined)] = name
		} else {
			aliases[strings.ToLower(name)] = name
			if !isNumeric(name) {
				aliases[strings.ToLower(trimTrailingDigits(name))] = name
			}
		}
	}

	return aliases
}

// ExactLookup maps lower-cased roster names to their display form, used by
// strict tokens that bypass the alias map.
func ExactLookup(names []string) map[string]string {
	lookup := make(map[string]string, len(names))
	for _, name := range names {
		lookup[strings.ToLower(name)] = name
	}
	return lookup
}

func trimTrailingDigits(s string) string {
	return strings.TrimRight(s, "0123456789")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
