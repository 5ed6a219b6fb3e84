// Package resolve maps participant tokens to canonical roster names. Tokens
// the alias map cannot place are handed to an external resolver, and the
// returned decision may rewrite the token stream itself, so the engine scans
// with a mutable buffer and cursor rather than a plain loop.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"dkptally/internal/domain/model"
	"dkptally/internal/domain/roster"
)

// strictPrefix tags a token that must match the roster exactly instead of
// going through the alias map. Reprocessed tokens carry it so a host's
// free-text entry cannot loop forever through fuzzy resolution.
const strictPrefix = "__strict__"

// AliasPersister records a token → name alias durably for future runs.
type AliasPersister interface {
	AddNameAlias(alias, canonical string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithAliasPersister sets the sink used when a Resolution asks for its
// alias to be persisted. Without one the alias lives for this run only.
func WithAliasPersister(p AliasPersister) Option {
	return func(e *Engine) {
		e.persist = p
	}
}

// Engine holds the mutable resolution state for one pipeline invocation:
// the alias map, the discard set and the suggestion index. Build a fresh
// Engine per invocation; state never leaks between runs.
type Engine struct {
	aliases     map[string]string
	rosterExact map[string]string
	suggester   *roster.Suggester
	discard     map[string]struct{}
	persist     AliasPersister
	resolve     Func
}

// NewEngine seeds resolution state from the roster names and any persisted
// aliases. fn is consulted for every token nothing else can place.
func NewEngine(names []string, persisted map[string]string, fn Func, opts ...Option) *Engine {
	e := &Engine{
		aliases:     roster.BuildAliases(names, persisted),
		rosterExact: roster.ExactLookup(names),
		suggester:   roster.NewSuggester(names),
		discard:     make(map[string]struct{}),
		resolve:     fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SuggestionCount exposes the size of the suggestion index.
func (e *Engine) SuggestionCount() int {
	return e.suggester.Len()
}

// LineContext carries the surroundings of the line being resolved, used to
// build resolver prompts.
type LineContext struct {
	Boss     string
	Prefix   string // line text before the entry segment, without its ":"
	PrevLine string
	NextLine string
}

// ResolveLine maps one line's participant tokens to canonical names,
// keeping literal "not" markers in place. Tokens is the FormattedLine tail
// after the boss; it is not modified.
func (e *Engine) ResolveLine(ctx context.Context, tokens []string, lc LineContext) ([]string, error) {
	buf := append([]string(nil), tokens...)
	var resolved []string

	// lastAppended is the raw token behind the most recent appended name.
	// A backward merge is offered only when the previous token is still
	// "fresh", meaning it produced that very name.
	lastAppended := ""

	i := 0
	for i < len(buf) {
		raw := buf[i]
		strict := strings.HasPrefix(raw, strictPrefix)
		name := strings.TrimPrefix(raw, strictPrefix)

		if name == model.MultiNotMarker {
			i++
			continue
		}
		if name == model.NotToken {
			resolved = append(resolved, model.NotToken)
			lastAppended = ""
			i++
			continue
		}
		if _, skip := e.discard[name]; skip || len(name) <= 1 {
			i++
			continue
		}
		if canonical, ok := e.aliases[name]; ok {
			resolved = append(resolved, canonical)
			lastAppended = name
			i++
			continue
		}
		if strict {
			if display, ok := e.rosterExact[name]; ok {
				resolved = append(resolved, display)
				lastAppended = name
				i++
				continue
			}
		}

		prevMerge, nextMerge := e.mergeCandidates(buf, i, lastAppended)

		res, err := e.resolve(ctx, Request{
			Token:       name,
			Suggestions: e.suggester.Suggest(name),
			Line:        renderLine(lc, buf),
			PrevMerge:   prevMerge,
			NextMerge:   nextMerge,
			PrevLine:    lc.PrevLine,
			NextLine:    lc.NextLine,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve token %q: %w", name, err)
		}
		if res == nil {
			e.discard[name] = struct{}{}
			i++
			continue
		}

		if res.Reprocess {
			replacements := make([]string, 0, len(res.Names))
			for _, n := range res.Names {
				if n != "" {
					replacements = append(replacements, strictPrefix+strings.ToLower(n))
				}
			}
			if len(replacements) == 0 {
				e.discard[name] = struct{}{}
				i++
				continue
			}
			switch {
			case res.MergeWithPrev && prevMerge != "":
				if len(resolved) > 0 {
					resolved = resolved[:len(resolved)-1]
				}
				buf = splice(buf, i-1, i+1, replacements)
				i--
			case res.MergeWithNext && nextMerge != "":
				buf = splice(buf, i, i+2, replacements)
			default:
				buf = splice(buf, i, i+1, replacements)
			}
			lastAppended = ""
			continue
		}

		if res.MergeWithPrev && prevMerge != "" && len(resolved) > 0 {
			resolved = resolved[:len(resolved)-1]
		}

		if res.AddNew && len(res.Names) > 0 {
			newName := res.Names[0]
			e.aliases[name] = newName
			e.aliases[strings.ToLower(newName)] = newName
			e.suggester.Add(newName)
			resolved = append(resolved, newName)
			lastAppended = mergedToken(name, prevMerge, nextMerge, res)
			if res.PersistAlias && e.persist != nil {
				if err := e.persist.AddNameAlias(name, newName); err != nil {
					return nil, fmt.Errorf("persist alias %q: %w", name, err)
				}
			}
			i = advance(i, nextMerge, res)
			continue
		}

		appended := false
		for _, correction := range res.Names {
			key := strings.ToLower(correction)
			canonical, ok := e.aliases[key]
			if !ok {
				e.aliases[key] = correction
				e.suggester.Add(correction)
				canonical = correction
			}
			if res.CacheOriginal {
				e.aliases[name] = canonical
				if res.PersistAlias && len(res.Names) == 1 && e.persist != nil {
					if err := e.persist.AddNameAlias(name, canonical); err != nil {
						return nil, fmt.Errorf("persist alias %q: %w", name, err)
					}
				}
			}
			resolved = append(resolved, canonical)
			appended = true
		}
		if appended {
			lastAppended = mergedToken(name, prevMerge, nextMerge, res)
		}
		i = advance(i, nextMerge, res)
	}

	return resolved, nil
}

// mergeCandidates inspects the neighbours of buf[i] and returns the
// fragments eligible for a backward and forward merge. A neighbour is
// eligible when it is a real name token of useful length and not already
// discarded; the previous one additionally has to be the source of the most
// recently appended name.
func (e *Engine) mergeCandidates(buf []string, i int, lastAppended string) (prevMerge, nextMerge string) {
	prevRaw, nextRaw := "", ""
	if i-1 >= 0 {
		prevRaw = strings.TrimPrefix(buf[i-1], strictPrefix)
	}
	if i+1 < len(buf) {
		nextRaw = strings.TrimPrefix(buf[i+1], strictPrefix)
	}

	if prevRaw != "" && prevRaw != model.NotToken && prevRaw != model.MultiNotMarker &&
		len(prevRaw) > 1 && !e.discarded(prevRaw) && lastAppended == prevRaw {
		prevMerge = prevRaw
	}
	if nextRaw != "" && nextRaw != model.NotToken && nextRaw != model.MultiNotMarker &&
		len(nextRaw) > 1 && !e.discarded(nextRaw) {
		nextMerge = nextRaw
	}
	return prevMerge, nextMerge
}

func (e *Engine) discarded(token string) bool {
	_, ok := e.discard[token]
	return ok
}

// mergedToken is the raw-token identity recorded for prev-merge freshness
// after a resolution lands.
func mergedToken(name, prevMerge, nextMerge string, res *Resolution) string {
	switch {
	case res.MergeWithPrev && prevMerge != "":
		return prevMerge + name
	case res.MergeWithNext && nextMerge != "":
		return name + nextMerge
	default:
		return name
	}
}

// advance moves the cursor past the current token, and past the next one
// too when it was consumed by a forward merge.
func advance(i int, nextMerge string, res *Resolution) int {
	if res.MergeWithNext && nextMerge != "" {
		return i + 2
	}
	return i + 1
}

// renderLine rebuilds the display form of the line from the live token
// buffer, strict tags stripped.
func renderLine(lc LineContext, buf []string) string {
	display := make([]string, 0, len(buf)+1)
	display = append(display, lc.Boss)
	for _, t := range buf {
		display = append(display, strings.TrimPrefix(t, strictPrefix))
	}
	entry := strings.Join(display, " ")
	if lc.Prefix != "" {
		return lc.Prefix + ":" + entry
	}
	return entry
}

// splice replaces buf[start:end] with replacement, growing or shrinking the
// buffer as needed.
func splice(buf []string, start, end int, replacement []string) []string {
	out := make([]string, 0, len(buf)-(end-start)+len(replacement))
	out = append(out, buf[:start]...)
	out = append(out, replacement...)
	out = append(out, buf[end:]...)
	return out
}
