package roster_test

import (
	"testing"

	roster "dkptally/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildAliases(t *testing.T) {
	Convey("Given roster names and persisted aliases", t, func() {
		names := []string{"Bob", "Alice12", "Big Karl", "12345"}
		persisted := map[string]string{"Bobby": "Bob"}

		Convey("When building the alias map", func() {
			aliases := roster.BuildAliases(names, persisted)

			Convey("Then plain names map from their lower-cased form", func() {
				So(aliases["bob"], ShouldEqual, "Bob")
			})

			Convey("And trailing digits are dropped as an extra spelling", func() {
				So(aliases["alice12"], ShouldEqual, "Alice12")
				So(aliases["alice"], ShouldEqual, "Alice12")
			})

			Convey("And multi-word names map from first word and joined form", func() {
				So(aliases["big"], ShouldEqual, "Big Karl")
				So(aliases["bigkarl"], ShouldEqual, "Big Karl")
			})

			Convey("And purely numeric names keep only their exact form", func() {
				So(aliases["12345"], ShouldEqual, "12345")
				_, ok := aliases[""]
				So(ok, ShouldBeFalse)
			})

			Convey("And persisted aliases resolve by lower-cased key", func() {
				So(aliases["bobby"], ShouldEqual, "Bob")
			})
		})

		Convey("When a roster name collides with a persisted alias", func() {
			aliases := roster.BuildAliases([]string{"Bobby"}, persisted)

			Convey("Then the roster spelling wins", func() {
				So(aliases["bobby"], ShouldEqual, "Bobby")
			})
		})
	})
}

func TestExactLookup(t *testing.T) {
	Convey("Given roster names", t, func() {
		lookup := roster.ExactLookup([]string{"Bob", "Big Karl"})

		Convey("Then display forms are found by lower-cased key", func() {
			So(lookup["bob"], ShouldEqual, "Bob")
			So(lookup["big karl"], ShouldEqual, "Big Karl")
			_, ok := lookup["karl"]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSuggester(t *testing.T) {
	Convey("Given a suggester over a small roster", t, func() {
		s := roster.NewSuggester([]string{"Jonathan", "Bobby", "Alice", "Roberta", "Karl", "Mina", "Zed"})

		Convey("When suggesting for a near miss", func() {
			got := s.Suggest("bobyy")

			Convey("Then the closest name ranks first", func() {
				So(got, ShouldNotBeEmpty)
				So(got[0], ShouldEqual, "Bobby")
			})

			Convey("And the list is capped", func() {
				So(len(got), ShouldBeLessThanOrEqualTo, roster.MaxSuggestions)
			})
		})

		Convey("When adding names later", func() {
			before := s.Len()
			s.Add("Newcomer")
			s.Add("Newcomer")
			s.Add("")

			Convey("Then only the new distinct name is indexed", func() {
				So(s.Len(), ShouldEqual, before+1)
			})

			Convey("And it becomes suggestible", func() {
				got := s.Suggest("newcomr")
				So(got[0], ShouldEqual, "Newcomer")
			})
		})
	})
}
