package validate_test

import (
	"testing"
	"time"

	"dkptally/internal/domain/model"
	"dkptally/internal/domain/points"
	"dkptally/internal/domain/sanitize"
	validate "dkptally/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

const stamp = "25 dec 2025 at 21:41"

func newValidator() *validate.Validator {
	store := points.NewStore(map[string]points.Value{
		"/mord":  points.ScalarValue(4),
		"/necro": points.ScalarValue(4),
		"180.5":  points.ScalarValue(5),
		"/rings": points.RingBaseValue(map[string]int{"5": 5, "6": 6}),
		"/legacy": points.TierValue([]points.Tier{
			{Level: 70, Five: 2, Six: 3},
			{Level: 150, Five: 4, Six: 6},
		}),
	}, nil)
	ext := sanitize.NewExtractor(sanitize.WithLocation(time.UTC))
	return validate.New(ext, store)
}

func batch(texts ...string) []model.Line {
	lines := make([]model.Line, len(texts))
	for i, t := range texts {
		lines[i] = model.Line{Index: i + 1, Text: t}
	}
	return lines
}

func TestValidator_Validate(t *testing.T) {
	Convey("Given a validator over a small points table", t, func() {
		v := newValidator()

		Convey("When the batch is well formed", func() {
			formatted, errs := v.Validate(batch(
				stamp + ": /mord bob alice",
				stamp + ": /necro carl",
			))

			Convey("Then no category collects anything", func() {
				So(errs.Any(), ShouldBeFalse)
			})

			Convey("And lines come back tokenized boss-first", func() {
				So(formatted, ShouldHaveLength, 2)
				So(formatted[0].Tokens, ShouldResemble, []string{"/mord", "bob", "alice"})
				So(formatted[1].Index, ShouldEqual, 2)
			})
		})

		Convey("When a line is missing its timestamp", func() {
			_, errs := v.Validate(batch("/mord: bob alice"))

			So(errs.DateLines, ShouldResemble, []int{1})
		})

		Convey("When a line has no entry segment", func() {
			_, errs := v.Validate(batch(
				"no colon at all",
				stamp + ":",
				stamp + ": /mord",
			))

			Convey("Then all three land in the general bucket", func() {
				So(errs.GeneralLines, ShouldResemble, []int{1, 2, 3})
			})
		})

		Convey("When a modifier is written as its own token", func() {
			formatted, errs := v.Validate(batch(stamp + ": /mord (doublepoints) bob"))

			Convey("Then it folds onto the boss", func() {
				So(errs.Any(), ShouldBeFalse)
				So(formatted[0].Tokens, ShouldResemble, []string{"/mord(doublepoints)", "bob"})
			})
		})

		Convey("When family qualifiers trail the boss", func() {
			formatted, errs := v.Validate(batch(
				stamp + ": legacy 155.6 bob",
				stamp + ": rings 2x5 alice",
				stamp + ": 180 5 carl",
				stamp + ": 1805 dave",
			))

			Convey("Then they fold into a single boss token", func() {
				So(errs.Any(), ShouldBeFalse)
				So(formatted[0].Tokens[0], ShouldEqual, "legacy155.6")
				So(formatted[1].Tokens[0], ShouldEqual, "rings2x5")
				So(formatted[2].Tokens, ShouldResemble, []string{"180.5", "carl"})
				So(formatted[3].Tokens, ShouldResemble, []string{"180.5", "dave"})
			})
		})

		Convey("When the boss is unknown", func() {
			_, errs := v.Validate(batch(stamp + ": /dragon bob"))

			So(errs.BossLines, ShouldResemble, []int{1})
			So(errs.UnknownBosses["/dragon"], ShouldResemble, []int{1})
		})

		Convey("When an unknown leading token precedes a real boss", func() {
			formatted, errs := v.Validate(batch(stamp + ": xyz /mord bob"))

			Convey("Then the line is reinterpreted instead of rejected", func() {
				So(errs.Any(), ShouldBeFalse)
				So(formatted[0].Tokens, ShouldResemble, []string{"/mord", "xyz", "bob"})
			})
		})

		Convey("When an unknown boss guards a subtraction", func() {
			_, errs := v.Validate(batch(stamp + ": /dragon not bob"))

			Convey("Then the ambiguity is its own category", func() {
				So(errs.AmbiguousNotBossLines, ShouldResemble, []int{1})
				So(errs.BossLines, ShouldBeEmpty)
				So(errs.UnknownBosses["/dragon"], ShouldResemble, []int{1})
			})
		})

		Convey("When a stray 'at' survives sanitization", func() {
			_, errs := v.Validate(batch(stamp + ": /mord bob at alice"))

			So(errs.AtLines, ShouldResemble, []int{1})
		})

		Convey("When subtraction shapes are checked", func() {
			Convey("Then name not name passes", func() {
				_, errs := v.Validate(batch(stamp + ": /mord bob not alice"))
				So(errs.IncorrectNotLines, ShouldBeEmpty)
			})

			Convey("Then not name passes", func() {
				_, errs := v.Validate(batch(stamp + ": /mord not alice"))
				So(errs.IncorrectNotLines, ShouldBeEmpty)
			})

			Convey("Then longer tails fail without the marker", func() {
				_, errs := v.Validate(batch(stamp + ": /mord bob alice not carl"))
				So(errs.IncorrectNotLines, ShouldResemble, []int{1})
			})

			Convey("Then a dangling not fails", func() {
				_, errs := v.Validate(batch(stamp + ": /mord not"))
				So(errs.IncorrectNotLines, ShouldResemble, []int{1})
			})

			Convey("Then the marker relaxes the shape to open tails", func() {
				_, errs := v.Validate(batch(
					stamp + ": /mord " + model.MultiNotMarker + " bob not alice carl",
					stamp + ": /necro " + model.MultiNotMarker + " not alice carl",
				))
				So(errs.IncorrectNotLines, ShouldBeEmpty)
			})
		})

		Convey("When a single character poses as a name", func() {
			formatted, errs := v.Validate(batch(stamp + ": /mord b alice"))

			Convey("Then the line is flagged but still tokenized", func() {
				So(errs.SingleCharLines, ShouldResemble, []int{1})
				So(formatted, ShouldHaveLength, 1)
			})
		})
	})
}

func TestErrors_Categories(t *testing.T) {
	Convey("Given an error bag with mixed categories", t, func() {
		errs := &validate.Errors{
			DateLines:    []int{3},
			BossLines:    []int{5, 7},
			GeneralLines: []int{9},
		}

		Convey("When listing categories", func() {
			cats := errs.Categories()

			Convey("Then only non-empty buckets appear, in reporting order", func() {
				So(cats, ShouldHaveLength, 3)
				So(cats[0].Name, ShouldEqual, "missing or invalid date")
				So(cats[1].Name, ShouldEqual, "unknown boss")
				So(cats[1].Lines, ShouldResemble, []int{5, 7})
				So(cats[2].Name, ShouldEqual, "unparseable line")
			})
		})

		Convey("And Any reports accordingly", func() {
			So(errs.Any(), ShouldBeTrue)
			So((&validate.Errors{}).Any(), ShouldBeFalse)
		})
	})
}
