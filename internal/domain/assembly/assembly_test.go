package assembly

import (
	"context"
	"testing"

	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func candidate(username string, strengths ...model.StrengthEntry) model.EnrichedCandidate {
	if strengths == nil {
		strengths = []model.StrengthEntry{}
	}
	return model.EnrichedCandidate{RawCandidate: model.RawCandidate{Username: username}, Strengths: strengths}
}

func strength(name, proficiency string) model.StrengthEntry {
	return model.StrengthEntry{Name: name, Proficiency: proficiency}
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()

	Convey("Given A, B and C where C has no strengths", t, func() {
		pool := []model.EnrichedCandidate{
			candidate("A", strength("python", scoring.Expert), strength("sql", scoring.Novice)),
			candidate("B", strength("python", scoring.Master)),
			candidate("C"),
		}
		a := New()

		Convey("When assembling a team of 2 for python and sql", func() {
			res := a.Assemble(ctx, pool, []string{"python", "sql"}, 2)

			Convey("Then A is picked first and B wins the zero-score tie", func() {
				So(res.Team.Usernames(), ShouldResemble, []string{"A", "B"})
				So(res.Rounds[0].Score, ShouldEqual, 6)
				So(res.Rounds[0].Covered, ShouldResemble, []string{"python", "sql"})
				So(res.Rounds[1].Score, ShouldEqual, 0)
				So(res.Uncovered, ShouldBeEmpty)
			})

			Convey("Then the input is left untouched", func() {
				So(pool[0].Username, ShouldEqual, "A")
				So(pool[1].Username, ShouldEqual, "B")
				So(pool[2].Username, ShouldEqual, "C")
			})
		})

		Convey("When the team size exceeds the pool", func() {
			res := a.Assemble(ctx, pool, []string{"python"}, 5)

			Convey("Then every candidate is picked once", func() {
				So(len(res.Team), ShouldEqual, 3)
				So(res.Team.Usernames(), ShouldResemble, []string{"B", "A", "C"})
			})
		})

		Convey("When assembled twice", func() {
			first := a.Assemble(ctx, pool, []string{"sql", "python"}, 3)
			second := a.Assemble(ctx, pool, []string{"sql", "python"}, 3)

			Convey("Then the teams are identical", func() {
				So(second.Team.Usernames(), ShouldResemble, first.Team.Usernames())
			})
		})
	})

	Convey("Given requested skills nobody has", t, func() {
		pool := []model.EnrichedCandidate{
			candidate("x", strength("go", scoring.Master)),
			candidate("y", strength("rust", scoring.Master)),
		}
		res := New().Assemble(ctx, pool, []string{"Cobol"}, 1)

		Convey("Then the first candidate is still picked and the skill stays uncovered", func() {
			So(res.Team.Usernames(), ShouldResemble, []string{"x"})
			So(res.Uncovered, ShouldResemble, []string{"cobol"})
		})
	})

	Convey("Given a strength with an unknown proficiency", t, func() {
		pool := []model.EnrichedCandidate{
			candidate("p", strength("go", "guru")),
			candidate("q", strength("sql", scoring.Novice)),
		}
		res := New().Assemble(ctx, pool, []string{"go", "sql"}, 2)

		Convey("Then it scores zero but still covers the skill", func() {
			So(res.Team.Usernames(), ShouldResemble, []string{"q", "p"})
			So(res.Rounds[1].Covered, ShouldResemble, []string{"go"})
			So(res.Uncovered, ShouldBeEmpty)
		})
	})

	Convey("Given an empty pool", t, func() {
		res := New().Assemble(ctx, nil, []string{"go"}, 3)

		Convey("Then the team is empty but not nil", func() {
			So(res.Team, ShouldNotBeNil)
			So(len(res.Team), ShouldEqual, 0)
		})
	})

	Convey("Given a custom scale", t, func() {
		pool := []model.EnrichedCandidate{
			candidate("m", strength("go", scoring.Master)),
			candidate("n", strength("go", scoring.Novice)),
		}
		res := New(WithScale(scoring.Scale{scoring.Novice: 10})).Assemble(ctx, pool, []string{"go"}, 1)

		Convey("Then its weights decide", func() {
			So(res.Team.Usernames(), ShouldResemble, []string{"n"})
		})
	})
}

func TestSelectionScoreIsMaximal(t *testing.T) {
	Convey("Given a larger pool", t, func() {
		labels := []string{scoring.Master, scoring.Expert, scoring.Proficient, scoring.Novice, scoring.NoExperienceInterested, "unknown"}
		skills := []string{"a", "b", "c", "d"}
		var pool []model.EnrichedCandidate
		for i := 0; i < 12; i++ {
			var st []model.StrengthEntry
			for j, s := range skills {
				if (i+j)%3 != 0 {
					st = append(st, strength(s, labels[(i*j+i)%len(labels)]))
				}
			}
			pool = append(pool, candidate(string(rune('a'+i))+"-user", st...))
		}
		res := New().Assemble(context.Background(), pool, skills, 4)

		Convey("Then no round score is beaten by a candidate left behind at that round", func() {
			So(len(res.Team), ShouldEqual, 4)
			scale := scoring.DefaultScale()
			uncovered := map[string]bool{"a": true, "b": true, "c": true, "d": true}
			picked := map[string]bool{}
			for r, member := range res.Team {
				for _, c := range pool {
					if picked[c.Username] {
						continue
					}
					score := 0
					for _, s := range c.Strengths {
						if uncovered[s.Name] {
							score += scale.Weight(s.Proficiency)
						}
					}
					So(score, ShouldBeLessThanOrEqualTo, res.Rounds[r].Score)
				}
				picked[member.Username] = true
				for _, s := range member.Strengths {
					delete(uncovered, s.Name)
				}
			}
		})
	})
}
