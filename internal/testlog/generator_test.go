package testlog_test

import (
	"strings"
	"testing"
	"time"

	"dkptally/internal/domain/sanitize"
	testlog "dkptally/internal/testlog"
	. "github.com/smartystreets/goconvey/convey"
)

// entrySuffix drops the timestamp so runs generated at different wall
// times still compare equal.
func entrySuffix(line string) string {
	return line[strings.LastIndex(line, ":"):]
}

func TestGenerator_Lines(t *testing.T) {
	Convey("Given a generator with a fixed seed", t, func() {
		cfg := testlog.Config{Seed: 42, Lines: 30}

		Convey("When generating twice from the same seed", func() {
			first := testlog.New(cfg).Lines()
			second := testlog.New(cfg).Lines()

			Convey("Then both runs draw the same content", func() {
				So(first, ShouldHaveLength, 30)
				So(second, ShouldHaveLength, 30)
				for i := range first {
					So(entrySuffix(first[i]), ShouldEqual, entrySuffix(second[i]))
				}
			})
		})

		Convey("When generating from a different seed", func() {
			first := testlog.New(cfg).Lines()
			other := testlog.New(testlog.Config{Seed: 43, Lines: 30}).Lines()

			var a, b strings.Builder
			for i := range first {
				a.WriteString(entrySuffix(first[i]))
				b.WriteString(entrySuffix(other[i]))
			}

			Convey("Then the content differs", func() {
				So(a.String(), ShouldNotEqual, b.String())
			})
		})
	})

	Convey("Given generated lines", t, func() {
		lines := testlog.New(testlog.Config{Seed: 11, Lines: 40}).Lines()
		san := sanitize.NewSanitizer(nil)
		ext := sanitize.NewExtractor()

		Convey("When pushing them through sanitization", func() {
			var prev time.Time
			for _, raw := range lines {
				text := san.Line(raw)
				So(text, ShouldNotBeEmpty)

				ts, ok := ext.Extract(text)
				So(ok, ShouldBeTrue)
				So(ts.Before(prev), ShouldBeFalse)
				prev = ts
			}
		})
	})

	Convey("Given a restricted boss pool", t, func() {
		lines := testlog.New(testlog.Config{
			Seed:   7,
			Lines:  25,
			Bosses: []string{"/mord"},
			Names:  []string{"Bob", "Alice"},
		}).Lines()

		Convey("Then every line draws from the pool", func() {
			for _, line := range lines {
				So(line, ShouldContainSubstring, "/mord")
			}
		})
	})
}

func TestGenerator_Stats(t *testing.T) {
	Convey("Given a generator with every rate forced on", t, func() {
		g := testlog.New(testlog.Config{
			Seed:         7,
			Lines:        20,
			NotRate:      1,
			ModifierRate: 1,
			TypoRate:     1,
		})

		Convey("When generating", func() {
			lines := g.Lines()
			st := g.Stats()

			Convey("Then the stats count every injection", func() {
				So(st.Lines, ShouldEqual, 20)
				So(st.NotLines, ShouldEqual, 20)
				So(st.Modifiers, ShouldEqual, 20)
				So(st.Misspelled, ShouldBeGreaterThanOrEqualTo, 20)
			})

			Convey("And every line carries a subtraction", func() {
				for _, line := range lines {
					So(line, ShouldContainSubstring, "not ")
				}
			})
		})
	})

	Convey("Given an unconfigured generator", t, func() {
		g := testlog.New(testlog.Config{Seed: 3})

		Convey("When generating with defaults", func() {
			lines := g.Lines()

			Convey("Then the default line count applies", func() {
				So(lines, ShouldHaveLength, 50)
				So(g.Stats().Lines, ShouldEqual, 50)
			})
		})
	})
}
