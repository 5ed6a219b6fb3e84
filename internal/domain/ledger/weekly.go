package ledger

import (
	"sort"
	"strings"
	"time"

	"dkptally/internal/domain/model"
	"dkptally/internal/domain/points"
)

// WeekStartUTC truncates a timestamp to the start of its UTC week. Weeks
// begin Sunday 00:00 UTC.
func WeekStartUTC(t time.Time) time.Time {
	u := t.UTC()
	u = u.AddDate(0, 0, -int(u.Weekday()))
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekEnd returns the last day of the week starting at start.
func WeekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, 6)
}

// WeekBucket is one player's aggregate inside one week.
type WeekBucket struct {
	Points     int
	BossCounts map[string]int
}

// WeeklyReport buckets saved events into UTC weeks.
type WeeklyReport struct {
	Weeks   []time.Time // ascending week starts
	Players []string    // every player seen in any week, case-insensitive order
	Bosses  []string    // bosses credited at least once, case-insensitive order
	ByWeek  map[time.Time]map[string]*WeekBucket
}

// Streak counts consecutive qualifying weeks ending at the latest week.
type Streak struct {
	A     int
	APlus int
}

// BuildWeekly aggregates events into weekly per-player buckets. Pass only
// still-active events; superseded ones would double-count their window.
// Events without a timestamp are skipped.
func BuildWeekly(events []model.EventRecord) *WeeklyReport {
	byWeek := make(map[time.Time]map[string]*WeekBucket)
	bossSet := make(map[string]struct{})

	for _, ev := range events {
		if ev.EventUTC.IsZero() {
			continue
		}
		week := WeekStartUTC(ev.EventUTC)
		bucket, ok := byWeek[week]
		if !ok {
			bucket = make(map[string]*WeekBucket)
			byWeek[week] = bucket
		}

		bossKey := points.NormalizeKey(ev.Boss)
		hasPositive := false
		for _, entry := range ev.Entries {
			if entry.Name == "" {
				continue
			}
			player, ok := bucket[entry.Name]
			if !ok {
				player = &WeekBucket{BossCounts: make(map[string]int)}
				bucket[entry.Name] = player
			}
			player.Points += entry.Delta
			if bossKey == "" {
				continue
			}
			current := player.BossCounts[bossKey]
			switch {
			case entry.Delta > 0:
				player.BossCounts[bossKey] = current + 1
				hasPositive = true
			case entry.Delta < 0 && current > 0:
				if current-1 > 0 {
					player.BossCounts[bossKey] = current - 1
				} else {
					delete(player.BossCounts, bossKey)
				}
			}
		}
		if bossKey != "" && hasPositive {
			bossSet[bossKey] = struct{}{}
		}
	}

	report := &WeeklyReport{ByWeek: byWeek}

	report.Weeks = make([]time.Time, 0, len(byWeek))
	for week := range byWeek {
		report.Weeks = append(report.Weeks, week)
	}
	sort.Slice(report.Weeks, func(i, j int) bool {
		return report.Weeks[i].Before(report.Weeks[j])
	})

	playerSet := make(map[string]struct{})
	for _, bucket := range byWeek {
		for name := range bucket {
			playerSet[name] = struct{}{}
		}
	}
	report.Players = sortedCaseInsensitive(playerSet)
	report.Bosses = sortedCaseInsensitive(bossSet)

	return report
}

// Bucket returns one player's aggregate for a week, zero when absent.
func (r *WeeklyReport) Bucket(week time.Time, player string) WeekBucket {
	if players, ok := r.ByWeek[week]; ok {
		if b, ok := players[player]; ok {
			return *b
		}
	}
	return WeekBucket{}
}

// Streaks walks the full week sequence backward from the latest bucket and
// counts, per player, the consecutive weeks whose net points met each
// threshold. Weeks with no saved events count as zero and break streaks.
func (r *WeeklyReport) Streaks(thresholdA, thresholdAPlus int) map[string]Streak {
	if len(r.Weeks) == 0 {
		return map[string]Streak{}
	}

	full := r.fullWeeks()
	out := make(map[string]Streak, len(r.Players))
	for _, player := range r.Players {
		out[player] = Streak{
			A:     r.streak(full, player, thresholdA),
			APlus: r.streak(full, player, thresholdAPlus),
		}
	}
	return out
}

// fullWeeks is the gap-free week sequence from the first to the last bucket.
func (r *WeeklyReport) fullWeeks() []time.Time {
	first := r.Weeks[0]
	last := r.Weeks[len(r.Weeks)-1]
	var full []time.Time
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		full = append(full, w)
	}
	return full
}

func (r *WeeklyReport) streak(full []time.Time, player string, threshold int) int {
	n := 0
	for i := len(full) - 1; i >= 0; i-- {
		if r.Bucket(full[i], player).Points < threshold {
			break
		}
		n++
	}
	return n
}

func sortedCaseInsensitive(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
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
