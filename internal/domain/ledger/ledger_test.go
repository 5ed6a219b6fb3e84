package ledger_test

import (
	"testing"
	"time"

	ledger "dkptally/internal/domain/ledger"
	"dkptally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntries(t *testing.T) {
	Convey("Given resolved name lists", t, func() {
		Convey("When the list is plain names", func() {
			got := ledger.Entries([]string{"Bob", "Alice", "Bob"}, 4)

			Convey("Then each distinct name is credited once", func() {
				So(got, ShouldResemble, []model.EventEntry{
					{Name: "Bob", Delta: 4},
					{Name: "Alice", Delta: 4},
				})
			})
		})

		Convey("When a name guards a subtraction", func() {
			got := ledger.Entries([]string{"Bob", "not", "Alice", "Carl"}, 4)

			Convey("Then the guard is credited and the tail debited", func() {
				So(got, ShouldResemble, []model.EventEntry{
					{Name: "Bob", Delta: 4},
					{Name: "Alice", Delta: -4},
					{Name: "Carl", Delta: -4},
				})
			})
		})

		Convey("When the subtraction is unguarded", func() {
			got := ledger.Entries([]string{"not", "Alice"}, 4)

			So(got, ShouldResemble, []model.EventEntry{
				{Name: "Alice", Delta: -4},
			})
		})

		Convey("When the guard position holds another not", func() {
			got := ledger.Entries([]string{"not", "not", "Alice"}, 4)

			Convey("Then no phantom credit appears", func() {
				So(got, ShouldResemble, []model.EventEntry{
					{Name: "Alice", Delta: -4},
				})
			})
		})

		Convey("When names are empty strings", func() {
			So(ledger.Entries([]string{"", "Bob", ""}, 4), ShouldResemble,
				[]model.EventEntry{{Name: "Bob", Delta: 4}})
		})
	})
}

func TestBuilder(t *testing.T) {
	when := time.Date(2025, time.December, 25, 21, 41, 0, 0, time.UTC)

	Convey("Given a fresh builder", t, func() {
		b := ledger.NewBuilder()

		Convey("When applying credited lines", func() {
			b.Apply(model.PendingEvent{
				EventTime: when, Boss: "mord", Points: 4,
				Entries: ledger.Entries([]string{"Bob", "alice"}, 4),
			}, true)
			b.Apply(model.PendingEvent{
				EventTime: when.Add(time.Hour), Boss: "necro", Points: 4,
				Entries: ledger.Entries([]string{"Bob"}, 4),
			}, true)

			Convey("Then totals accumulate per name, sorted case-insensitively", func() {
				So(b.Totals(), ShouldResemble, []ledger.Total{
					{Name: "alice", Points: 4},
					{Name: "Bob", Points: 8},
				})
			})

			Convey("And boss counters track occurrences", func() {
				So(b.BossCounts()["Bob"], ShouldResemble, map[string]int{"mord": 1, "necro": 1})
			})

			Convey("And the boss list holds every credited boss", func() {
				So(b.BossList(), ShouldResemble, []string{"mord", "necro"})
			})

			Convey("And both lines became pending events", func() {
				So(b.PendingEvents(), ShouldHaveLength, 2)
			})
		})

		Convey("When debits drag a total to zero", func() {
			b.Apply(model.PendingEvent{
				EventTime: when, Boss: "mord", Points: 4,
				Entries: ledger.Entries([]string{"Bob"}, 4),
			}, true)
			b.Apply(model.PendingEvent{
				EventTime: when, Boss: "mord", Points: 4,
				Entries: ledger.Entries([]string{"not", "Bob"}, 4),
			}, true)

			Convey("Then the name disappears from the totals", func() {
				So(b.Totals(), ShouldBeEmpty)
			})

			Convey("And the emptied boss counter is dropped with it", func() {
				_, ok := b.BossCounts()["Bob"]
				So(ok, ShouldBeFalse)
			})

			Convey("And further debits keep the counter floored", func() {
				b.Apply(model.PendingEvent{
					EventTime: when, Boss: "mord", Points: 4,
					Entries: ledger.Entries([]string{"not", "Bob"}, 4),
				}, true)
				So(b.BossCounts()["Bob"]["mord"], ShouldEqual, 0)
			})
		})

		Convey("When a line carries no timestamp", func() {
			b.Apply(model.PendingEvent{
				Boss: "mord", Points: 4,
				Entries: ledger.Entries([]string{"Bob"}, 4),
			}, false)

			Convey("Then it scores but produces no event", func() {
				So(b.Totals(), ShouldHaveLength, 1)
				So(b.PendingEvents(), ShouldBeEmpty)
			})
		})

		Convey("When a line resolves to no entries", func() {
			b.Apply(model.PendingEvent{EventTime: when, Boss: "mord", Points: 4}, true)

			Convey("Then nothing is recorded at all", func() {
				So(b.Totals(), ShouldBeEmpty)
				So(b.PendingEvents(), ShouldBeEmpty)
				So(b.BossList(), ShouldBeEmpty)
			})
		})

		Convey("When only debits touch a boss", func() {
			b.Apply(model.PendingEvent{
				EventTime: when, Boss: "gele", Points: 6,
				Entries: ledger.Entries([]string{"not", "Bob"}, 6),
			}, true)

			Convey("Then the boss list stays empty", func() {
				So(b.BossList(), ShouldBeEmpty)
			})
		})
	})
}

func TestRecords(t *testing.T) {
	Convey("Given pending events from a scoring pass", t, func() {
		loc := time.FixedZone("rally", 2*60*60)
		events := []model.PendingEvent{
			{
				EventTime:  time.Date(2025, time.December, 25, 21, 41, 0, 0, loc),
				Boss:       "mord",
				Points:     4,
				Entries:    []model.EventEntry{{Name: "Bob", Delta: 4}},
				SourceLine: "25 dec 2025 at 21:41: /mord bob",
			},
		}

		Convey("When stamping them into a run", func() {
			created := time.Date(2025, time.December, 26, 8, 0, 0, 0, loc)
			records := ledger.Records(events, "run-1", created)

			Convey("Then records carry the run identity in UTC", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].RunID, ShouldEqual, "run-1")
				So(records[0].CreatedUTC.Equal(created.UTC()), ShouldBeTrue)
				So(records[0].CreatedUTC.Location(), ShouldEqual, time.UTC)
				So(records[0].EventUTC.Hour(), ShouldEqual, 19)
			})

			Convey("And start out active and unreplaced", func() {
				So(records[0].Active, ShouldBeTrue)
				So(records[0].ReplacedBy, ShouldBeNil)
			})
		})
	})
}
