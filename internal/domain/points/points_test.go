package points_test

import (
	"testing"

	points "dkptally/internal/domain/points"
	. "github.com/smartystreets/goconvey/convey"
)

func testStore() *points.Store {
	return points.NewStore(map[string]points.Value{
		"/mord":    points.ScalarValue(4),
		"/necro":   points.ScalarValue(4),
		"/gele":    points.ScalarValue(6),
		"factions": points.ScalarValue(2),
		"/rings": points.RingBaseValue(map[string]int{
			"5": 5,
			"6": 6,
		}),
		"/legacy": points.TierValue([]points.Tier{
			{Level: 70, Five: 2, Six: 3},
			{Level: 150, Five: 4, Six: 6},
		}),
	}, []string{"prio", "gele"})
}

func TestStore_Points(t *testing.T) {
	Convey("Given a populated points table", t, func() {
		s := testStore()

		Convey("When resolving a scalar boss", func() {
			pts, ok := s.Points("/mord")
			So(ok, ShouldBeTrue)
			So(pts, ShouldEqual, 4)
		})

		Convey("When the token omits the slash the table carries", func() {
			pts, ok := s.Points("mord")
			So(ok, ShouldBeTrue)
			So(pts, ShouldEqual, 4)
		})

		Convey("When the token carries a slash the table omits", func() {
			pts, ok := s.Points("/factions")
			So(ok, ShouldBeTrue)
			So(pts, ShouldEqual, 2)
		})

		Convey("When the boss is unknown", func() {
			_, ok := s.Points("/unknownboss")
			So(ok, ShouldBeFalse)
		})

		Convey("When resolving ring tokens", func() {
			Convey("Then points are the star base times the ring count", func() {
				pts, ok := s.Points("rings3x5")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 15)

				pts, ok = s.Points("/rings2x6")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 12)
			})

			Convey("And the bare family key does not score", func() {
				_, ok := s.Points("/rings")
				So(ok, ShouldBeFalse)
			})

			Convey("And counts outside 1-4 do not match", func() {
				_, ok := s.Points("rings5x5")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When resolving legacy tokens", func() {
			Convey("Then the highest band at or below the level applies", func() {
				pts, ok := s.Points("legacy155.6")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 6)

				pts, ok = s.Points("legacy150.5")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 4)

				pts, ok = s.Points("legacy80.5")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 2)
			})

			Convey("And a level below every band does not score", func() {
				_, ok := s.Points("legacy60.5")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When resolving root tokens", func() {
			Convey("Then any variant awards the flat rate", func() {
				for _, tok := range []string{"root", "/root", "root2", "root4"} {
					pts, ok := s.Points(tok)
					So(ok, ShouldBeTrue)
					So(pts, ShouldEqual, 4)
				}
			})
		})

		Convey("When a modifier is attached", func() {
			Convey("Then doublepoints doubles the award", func() {
				pts, ok := s.Points("/mord(doublepoints)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 8)

				pts, ok = s.Points("/mord(double)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 8)
			})

			Convey("Then brucybonus adds its flat bonus before doubling rules", func() {
				pts, ok := s.Points("/mord(brucybonus)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 9)
			})

			Convey("Then fail halves rounding up", func() {
				pts, ok := s.Points("/mord(fail)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 2)

				pts, ok = s.Points("/rings3x5(fail)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 8)
			})

			Convey("Then comp requires a priority substring in the token", func() {
				pts, ok := s.Points("/gele(comp)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 6)

				_, ok = s.Points("/mord(comp)")
				So(ok, ShouldBeFalse)
			})

			Convey("Then an unknown suffix stays part of the base and fails", func() {
				_, ok := s.Points("/mord(legend)")
				So(ok, ShouldBeFalse)
			})

			Convey("Then modifiers compose with families", func() {
				pts, ok := s.Points("rings2x5(doublepoints)")
				So(ok, ShouldBeTrue)
				So(pts, ShouldEqual, 20)
			})
		})
	})
}

func TestStore_Bosses(t *testing.T) {
	Convey("Given a populated points table", t, func() {
		s := testStore()

		Convey("When listing bosses", func() {
			keys := s.Bosses()

			Convey("Then keys come back sorted", func() {
				So(keys, ShouldHaveLength, 6)
				So(keys[0], ShouldEqual, "/gele")
			})
		})

		Convey("When listing prios", func() {
			So(s.Prios(), ShouldResemble, []string{"prio", "gele"})
		})
	})
}

func TestNormalizeKey(t *testing.T) {
	Convey("Given boss tokens in written form", t, func() {
		Convey("Then the slash and modifier are stripped", func() {
			So(points.NormalizeKey("/mord"), ShouldEqual, "mord")
			So(points.NormalizeKey("/mord(doublepoints)"), ShouldEqual, "mord")
			So(points.NormalizeKey("rings2x5"), ShouldEqual, "rings2x5")
			So(points.NormalizeKey(" /gele(fail) "), ShouldEqual, "gele")
		})
	})
}

func TestIsModifier(t *testing.T) {
	Convey("Given the modifier vocabulary", t, func() {
		So(points.IsModifier("doublepoints"), ShouldBeTrue)
		So(points.IsModifier("brucybonus"), ShouldBeTrue)
		So(points.IsModifier("fail"), ShouldBeTrue)
		So(points.IsModifier("comp"), ShouldBeTrue)
		So(points.IsModifier("bob"), ShouldBeFalse)
	})
}
