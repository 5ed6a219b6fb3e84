package validate

// Errors collects line indices per structural error category. The pipeline
// scores nothing while any category is non-empty; the whole bag is reported
// so every problem can be fixed in one editing pass.
type Errors struct {
	DateLines             []int
	BossLines             []int
	AtLines               []int
	SingleCharLines       []int
	IncorrectNotLines     []int
	AmbiguousNotBossLines []int
	GeneralLines          []int

	// UnknownBosses maps each unresolvable boss token to the lines it
	// appeared on. Populated alongside BossLines and AmbiguousNotBossLines.
	UnknownBosses map[string][]int
}

// Any reports whether any error category holds at least one line.
func (e *Errors) Any() bool {
	return len(e.DateLines) > 0 ||
		len(e.BossLines) > 0 ||
		len(e.AtLines) > 0 ||
		len(e.SingleCharLines) > 0 ||
		len(e.IncorrectNotLines) > 0 ||
		len(e.AmbiguousNotBossLines) > 0 ||
		len(e.GeneralLines) > 0
}

// Category is one named error bucket, used for reporting.
type Category struct {
	Name  string
	Lines []int
}

// Categories returns the non-empty buckets in a fixed reporting order.
// UnknownBosses is reported separately since it is keyed by token.
func (e *Errors) Categories() []Category {
	all := []Category{
		{"missing or invalid date", e.DateLines},
		{"unknown boss", e.BossLines},
		{"stray 'at' token", e.AtLines},
		{"single character name", e.SingleCharLines},
		{"malformed 'not' usage", e.IncorrectNotLines},
		{"ambiguous boss before 'not'", e.AmbiguousNotBossLines},
		{"unparseable line", e.GeneralLines},
	}
	out := make([]Category, 0, len(all))
	for _, c := range all {
		if len(c.Lines) > 0 {
			out = append(out, c)
		}
	}
	return out
}
