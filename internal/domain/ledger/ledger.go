// Package ledger turns resolved lines into signed point deltas, running
// totals, and per-boss occurrence counters, and aggregates saved events
// into weekly activity reports.
package ledger

import (
	"sort"
	"strings"
	"time"

	"dkptally/internal/domain/model"
)

// Entries determines the signed contribution per participant for one line.
// The shapes are:
//
//	[name, not, n1, n2, ...]  name is credited, the tail is debited
//	[not, n1, n2, ...]        the tail is debited
//	anything else             every distinct name is credited once
//
// Literal "not" markers never receive a delta.
func Entries(names []string, pts int) []model.EventEntry {
	n := len(names)

	if n >= 3 && names[1] == model.NotToken {
		out := make([]model.EventEntry, 0, n-1)
		if names[0] != model.NotToken && names[0] != "" {
			out = append(out, model.EventEntry{Name: names[0], Delta: pts})
		}
		for _, name := range names[2:] {
			if name == model.NotToken || name == "" {
				continue
			}
			out = append(out, model.EventEntry{Name: name, Delta: -pts})
		}
		return out
	}

	if n >= 2 && names[0] == model.NotToken {
		out := make([]model.EventEntry, 0, n-1)
		for _, name := range names[1:] {
			if name == model.NotToken || name == "" {
				continue
			}
			out = append(out, model.EventEntry{Name: name, Delta: -pts})
		}
		return out
	}

	seen := make(map[string]struct{}, n)
	out := make([]model.EventEntry, 0, n)
	for _, name := range names {
		if name == model.NotToken || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, model.EventEntry{Name: name, Delta: pts})
	}
	return out
}

// Total is one participant's positive net outcome.
type Total struct {
	Name   string
	Points int
}

// Builder accumulates one calculation's outcome across lines. Construct a
// fresh Builder per invocation.
type Builder struct {
	dkp        map[string]int
	bossCounts map[string]map[string]int
	bossSet    map[string]struct{}
	events     []model.PendingEvent
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		dkp:        make(map[string]int),
		bossCounts: make(map[string]map[string]int),
		bossSet:    make(map[string]struct{}),
	}
}

// Apply folds one line's entries into the totals and boss counters. The
// line becomes a pending event only when it carried a timestamp and
// produced at least one entry.
func (b *Builder) Apply(ev model.PendingEvent, hasTime bool) {
	if len(ev.Entries) == 0 {
		return
	}

	positive := false
	for _, entry := range ev.Entries {
		if entry.Name == "" {
			continue
		}
		b.dkp[entry.Name] += entry.Delta
		if entry.Delta > 0 {
			positive = true
		}
		b.countBoss(entry.Name, ev.Boss, entry.Delta)
	}
	if positive && ev.Boss != "" {
		b.bossSet[ev.Boss] = struct{}{}
	}

	if hasTime {
		b.events = append(b.events, ev)
	}
}

// countBoss maintains the per-(name, boss) occurrence counter: credits
// increment, debits decrement with a floor at zero. Emptied keys are
// dropped, and so is the participant entry once no boss keys remain.
func (b *Builder) countBoss(name, boss string, delta int) {
	if boss == "" {
		return
	}
	counts, ok := b.bossCounts[name]
	if !ok {
		counts = make(map[string]int)
		b.bossCounts[name] = counts
	}
	current := counts[boss]
	switch {
	case delta > 0:
		counts[boss] = current + 1
	case delta < 0 && current > 0:
		if current-1 > 0 {
			counts[boss] = current - 1
		} else {
			delete(counts, boss)
			if len(counts) == 0 {
				delete(b.bossCounts, name)
			}
		}
	}
}

// Totals reports every participant with a strictly positive net total,
// sorted case-insensitively by name.
func (b *Builder) Totals() []Total {
	out := make([]Total, 0, len(b.dkp))
	for name, pts := range b.dkp {
		if pts > 0 {
			out = append(out, Total{Name: name, Points: pts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BossCounts returns the per-participant occurrence counters.
func (b *Builder) BossCounts() map[string]map[string]int {
	return b.bossCounts
}

// BossList returns the bosses that were credited at least once, sorted
// case-insensitively.
func (b *Builder) BossList() []string {
	out := make([]string, 0, len(b.bossSet))
	for boss := range b.bossSet {
		out = append(out, boss)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

// PendingEvents returns the dated, entry-bearing lines in input order.
func (b *Builder) PendingEvents() []model.PendingEvent {
	return b.events
}

// Records stamps pending events into durable EventRecords belonging to the
// given run.
func Records(events []model.PendingEvent, runID string, createdUTC time.Time) []model.EventRecord {
	records := make([]model.EventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, model.EventRecord{
			RunID:      runID,
			CreatedUTC: createdUTC.UTC(),
			EventUTC:   ev.EventTime.UTC(),
			Boss:       ev.Boss,
			Points:     ev.Points,
			Entries:    ev.Entries,
			SourceLine: ev.SourceLine,
			Active:     true,
			ReplacedBy: nil,
		})
	}
	return records
}
