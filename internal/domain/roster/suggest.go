package roster

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// MaxSuggestions caps the ranked candidate list handed to a resolver.
const MaxSuggestions = 5

// Suggester ranks known names by string similarity to a misspelled token.
// Similarity is Sorensen-Dice over character unigrams, so letter frequency
// dominates and ordering barely matters, which suits short name typos.
type Suggester struct {
	vocab  map[string]string // lower-cased key → display form
	order  []string          // keys in insertion order for stable ranking
	metric *metrics.SorensenDice
}

// NewSuggester indexes the given names.
func NewSuggester(names []string) *Suggester {
	m := metrics.NewSorensenDice()
	m.CaseSensitive = false
	m.NgramSize = 1
	s := &Suggester{vocab: make(map[string]string, len(names)), metric: m}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add indexes one more name. Blank or already known names are ignored.
func (s *Suggester) Add(name string) {
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if _, ok := s.vocab[key]; ok {
		return
	}
	s.vocab[key] = name
	s.order = append(s.order, key)
}

// Len returns the number of indexed names.
func (s *Suggester) Len() int {
	return len(s.order)
}

// Suggest returns up to MaxSuggestions display names ranked by similarity
// to the token, highest first.
func (s *Suggester) Suggest(token string) []string {
	token = strings.ToLower(token)

	type scored struct {
		key   string
		score float64
	}
	ranked := make([]scored, 0, len(s.order))
	for _, key := range s.order {
		ranked = append(ranked, scored{key, strutil.Similarity(key, token, s.metric)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, 0, MaxSuggestions)
	for _, r := range ranked {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, s.vocab[r.key])
	}
	return out
}
