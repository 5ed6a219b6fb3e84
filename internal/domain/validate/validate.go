// Package validate classifies sanitized lines into canonical tokenized form
// or into structural error categories. Validation always runs to completion
// so the caller can present every problem in one pass.
package validate

import (
	"regexp"
	"strings"

	"dkptally/internal/domain/model"
	"dkptally/internal/domain/points"
	"dkptally/internal/domain/sanitize"
)

var (
	legacySuffixRe = regexp.MustCompile(`^\d+\.[56]$`)
	ringSuffixRe   = regexp.MustCompile(`^[1-4]x[5-6]$`)
	threeDigitRe   = regexp.MustCompile(`^\d{3}$`)
	fourDigitRe    = regexp.MustCompile(`^\d{4}\.?$`)
)

// Validator turns sanitized lines into FormattedLines, recording every
// structural problem it finds along the way.
type Validator struct {
	ext   *sanitize.Extractor
	store *points.Store
}

// New creates a Validator over the given date extractor and points store.
func New(ext *sanitize.Extractor, store *points.Store) *Validator {
	return &Validator{ext: ext, store: store}
}

// Validate checks a batch and returns the well-formed lines plus the full
// error bag. A line can contribute to several categories; errors never stop
// the scan.
func (v *Validator) Validate(lines []model.Line) ([]model.FormattedLine, *Errors) {
	errs := &Errors{UnknownBosses: map[string][]int{}}

	for _, line := range lines {
		if _, ok := v.ext.Extract(line.Text); !ok {
			errs.DateLines = append(errs.DateLines, line.Index)
		}
	}

	type segmented struct {
		index  int
		tokens []string
	}
	segments := make([]segmented, 0, len(lines))
	for _, line := range lines {
		colon := strings.LastIndex(line.Text, ":")
		if colon < 0 {
			errs.GeneralLines = append(errs.GeneralLines, line.Index)
			continue
		}
		entry := strings.TrimSpace(line.Text[colon+1:])
		if entry == "" {
			errs.GeneralLines = append(errs.GeneralLines, line.Index)
			continue
		}
		segments = append(segments, segmented{line.Index, strings.Fields(entry)})
	}

	var formatted []model.FormattedLine
	for _, seg := range segments {
		tokens := append([]string(nil), seg.tokens...)
		if len(tokens) < 2 {
			errs.GeneralLines = append(errs.GeneralLines, seg.index)
			continue
		}

		// A parenthetical modifier written as its own second token belongs
		// on the boss.
		if isParenModifier(tokens[1]) {
			tokens[0] += tokens[1]
			tokens = append(tokens[:1], tokens[2:]...)
		}

		boss := tokens[0]
		rest := tokens[1:]

		allowMultiNot := false
		if containsToken(rest, model.MultiNotMarker) {
			allowMultiNot = true
			kept := rest[:0]
			for _, t := range rest {
				if t != model.MultiNotMarker {
					kept = append(kept, t)
				}
			}
			rest = kept
		}

		boss, rest = v.foldBossQualifiers(boss, rest)

		if _, ok := v.store.Points(boss); !ok {
			if containsToken(rest, model.NotToken) {
				errs.AmbiguousNotBossLines = append(errs.AmbiguousNotBossLines, seg.index)
				errs.UnknownBosses[boss] = append(errs.UnknownBosses[boss], seg.index)
				continue
			}
			// Fallback for a missing leading token: when the next token is
			// itself a boss, reinterpret the line with the unresolved token
			// shifted into the participant list.
			if len(rest) > 0 {
				if _, altOK := v.store.Points(rest[0]); altOK {
					out := make([]string, 0, len(rest)+1)
					out = append(out, rest[0], boss)
					out = append(out, rest[1:]...)
					formatted = append(formatted, model.FormattedLine{Index: seg.index, Tokens: out})
					continue
				}
			}
			errs.UnknownBosses[boss] = append(errs.UnknownBosses[boss], seg.index)
			errs.BossLines = append(errs.BossLines, seg.index)
			continue
		}

		if containsToken(rest, "at") {
			errs.AtLines = append(errs.AtLines, seg.index)
		}

		if containsToken(rest, model.NotToken) && !notShapeValid(rest, allowMultiNot) {
			errs.IncorrectNotLines = append(errs.IncorrectNotLines, seg.index)
		}

		for _, name := range rest {
			if len(name) == 1 {
				errs.SingleCharLines = append(errs.SingleCharLines, seg.index)
			}
		}

		out := make([]string, 0, len(rest)+1)
		out = append(out, boss)
		out = append(out, rest...)
		formatted = append(formatted, model.FormattedLine{Index: seg.index, Tokens: out})
	}

	return formatted, errs
}

// foldBossQualifiers merges family suffixes and dotted-numeral fragments
// into the boss token.
func (v *Validator) foldBossQualifiers(boss string, rest []string) (string, []string) {
	if (boss == "/legacy" || boss == "legacy") && len(rest) > 0 && legacySuffixRe.MatchString(rest[0]) {
		boss += rest[0]
		rest = rest[1:]
	}

	if (boss == "/rings" || boss == "rings") && len(rest) > 0 && ringSuffixRe.MatchString(rest[0]) {
		boss += rest[0]
		rest = rest[1:]
	}

	if threeDigitRe.MatchString(boss) && len(rest) > 0 {
		if rest[0] == "4" || rest[0] == "5" || rest[0] == "6" {
			candidate := boss + "." + rest[0]
			if _, ok := v.store.Points(candidate); ok {
				boss = candidate
				rest = rest[1:]
			}
		}
	}

	if fourDigitRe.MatchString(boss) {
		candidate := boss[:3] + "." + boss[3:4]
		if _, ok := v.store.Points(candidate); ok {
			boss = candidate
		}
	}

	return boss, rest
}

// notShapeValid checks the allowed token shapes for a line carrying "not".
// Without the multi-not marker the only shapes are [name, not, name] and
// [not, name]; the marker relaxes both to open-ended tails.
func notShapeValid(rest []string, allowMultiNot bool) bool {
	if allowMultiNot {
		return (len(rest) >= 3 && rest[1] == model.NotToken) ||
			(len(rest) >= 2 && rest[0] == model.NotToken)
	}
	return (len(rest) == 3 && rest[1] == model.NotToken) ||
		(len(rest) == 2 && rest[0] == model.NotToken)
}

func isParenModifier(word string) bool {
	for _, m := range points.Modifiers {
		if word == "("+m+")" {
			return true
		}
	}
	return false
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
