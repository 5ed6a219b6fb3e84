// Package testlog produces synthetic raid logs for exercising the
// pipeline without real data.
package testlog

import (
	"math/rand"
	"strings"
	"time"
)

// Default generation parameters.
const (
	defaultLines    = 50
	defaultTypoRate = 0.15
	defaultNotRate  = 0.10
	defaultModRate  = 0.15

	minGap = 10 * time.Minute
	maxGap = 2 * time.Hour

	maxNamesPerLine = 6
)

// Default pools used when the caller supplies none.
var (
	defaultBosses = []string{
		"/mord", "/necro", "/hrung", "/aggy", "/gele", "/bt", "/prot",
		"/dino", "rings2x5", "rings3x6", "legacy70.5", "legacy155.6",
		"root2", "root",
	}

	defaultNames = []string{
		"Aelric", "Brynja", "Caldor", "Dreya", "Edwyn", "Fenrick",
		"Grimna", "Haldis", "Isolde", "Jorvik", "Kaelth", "Lunara",
		"Morwenna", "Nyxen", "Oswin", "Petra", "Quillon", "Ragnvald",
		"Sif", "Torvald", "Ulfhild", "Vexa", "Wynmar", "Ysolde",
	}

	modifierSuffixes = []string{
		"(doublepoints)", "(brucybonus)", "(fail)", " (double points)",
	}

	// Known misspellings the sanitizer corrects; emitted at a low rate so
	// generated logs exercise the rewrite table.
	bossTypos = map[string]string{
		"/necro": "/nerco",
		"/hrung": "/hrugn",
		"/mord":  "/mordis",
	}
)

// Config holds generation parameters for a synthetic log.
type Config struct {
	Lines        int      // number of log lines to produce
	Seed         int64    // random seed; 0 derives one from the clock
	Bosses       []string // boss tokens to draw from
	Names        []string // roster names to draw from
	TypoRate     float64  // chance a name is misspelled
	NotRate      float64  // chance a line uses a subtraction shape
	ModifierRate float64  // chance a boss carries a modifier suffix
}

// Stats counts what one generation pass injected.
type Stats struct {
	Lines      int
	NotLines   int
	Modifiers  int
	Misspelled int
}

// Generator produces raid-log lines with realistic noise: rotating date
// grammars, boss typos, modifier suffixes and misspelled names.
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	stats Stats
}

// New creates a Generator, filling unset Config fields with defaults.
func New(cfg Config) *Generator {
	if cfg.Lines <= 0 {
		cfg.Lines = defaultLines
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if len(cfg.Bosses) == 0 {
		cfg.Bosses = append([]string(nil), defaultBosses...)
	}
	if len(cfg.Names) == 0 {
		cfg.Names = append([]string(nil), defaultNames...)
	}
	if cfg.TypoRate <= 0 {
		cfg.TypoRate = defaultTypoRate
	}
	if cfg.NotRate <= 0 {
		cfg.NotRate = defaultNotRate
	}
	if cfg.ModifierRate <= 0 {
		cfg.ModifierRate = defaultModRate
	}

	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Lines generates the configured number of log lines in chronological
// order, ending near the current time.
func (g *Generator) Lines() []string {
	g.stats = Stats{}

	// Walk backward first so the log ends "now".
	span := time.Duration(g.cfg.Lines) * maxGap
	when := time.Now().Add(-span)

	lines := make([]string, 0, g.cfg.Lines)
	for i := 0; i < g.cfg.Lines; i++ {
		gap := minGap + time.Duration(g.rng.Int63n(int64(maxGap-minGap)))
		when = when.Add(gap)
		lines = append(lines, g.line(when))
	}

	g.stats.Lines = len(lines)
	return lines
}

// Stats reports what the last Lines call injected.
func (g *Generator) Stats() Stats {
	return g.stats
}

func (g *Generator) line(when time.Time) string {
	var b strings.Builder
	b.WriteString(g.date(when))
	b.WriteString(": ")
	b.WriteString(g.boss())
	b.WriteString(" ")
	b.WriteString(g.entry())
	return b.String()
}

// date renders the timestamp in one of the four recognized grammars.
func (g *Generator) date(when time.Time) string {
	switch g.rng.Intn(4) {
	case 0:
		return when.Format("2 Jan 2006 at 15:04")
	case 1:
		return when.Format("Jan 2, 2006 at 3:04 PM")
	case 2:
		return when.Format("January 2, 2006 3:04 PM")
	default:
		return when.Format("Jan 2, 2006 3:04 PM")
	}
}

func (g *Generator) boss() string {
	boss := g.cfg.Bosses[g.rng.Intn(len(g.cfg.Bosses))]

	if typo, ok := bossTypos[boss]; ok && g.chance(g.cfg.TypoRate) {
		boss = typo
	}
	if g.chance(g.cfg.ModifierRate) {
		boss += modifierSuffixes[g.rng.Intn(len(modifierSuffixes))]
		g.stats.Modifiers++
	}
	return boss
}

func (g *Generator) entry() string {
	if g.chance(g.cfg.NotRate) {
		g.stats.NotLines++
		if g.rng.Intn(2) == 0 {
			return g.name() + " not " + g.name()
		}
		return "not " + g.name()
	}

	count := 1 + g.rng.Intn(maxNamesPerLine)
	names := make([]string, count)
	for i := range names {
		names[i] = g.name()
	}
	return strings.Join(names, " ")
}

func (g *Generator) name() string {
	name := g.cfg.Names[g.rng.Intn(len(g.cfg.Names))]
	if g.chance(g.cfg.TypoRate) {
		name = g.misspell(name)
		g.stats.Misspelled++
	}
	return name
}

// misspell applies one of three mutations: swap adjacent letters, drop a
// letter, or double one.
func (g *Generator) misspell(name string) string {
	if len(name) < 3 {
		return name
	}
	runes := []rune(name)
	i := 1 + g.rng.Intn(len(runes)-2)

	switch g.rng.Intn(3) {
	case 0:
		runes[i], runes[i+1] = runes[i+1], runes[i]
		return string(runes)
	case 1:
		return string(runes[:i]) + string(runes[i+1:])
	default:
		return string(runes[:i]) + string(runes[i]) + string(runes[i:])
	}
}

func (g *Generator) chance(rate float64) bool {
	return g.rng.Float64() < rate
}
