// Package scoring maps proficiency labels to weights and computes the
// marginal score a candidate contributes toward still-uncovered skills.
package scoring

import (
	"strings"

	"github.com/okian/dreamteam/internal/domain/model"
)

// Proficiency labels reported by the genome service.
const (
	Master                 = "master"
	Expert                 = "expert"
	Proficient             = "proficient"
	Novice                 = "novice"
	NoExperienceInterested = "no-experience-interested"
)

// Scale is a closed proficiency label -> weight table. Labels that are not
// in the table weigh 0.
type Scale map[string]int

// DefaultScale returns the proficiency weights used for team assembly.
func DefaultScale() Scale {
	return Scale{
		Master:                 5,
		Expert:                 4,
		Proficient:             3,
		Novice:                 2,
		NoExperienceInterested: 1,
	}
}

// Weight returns the weight of a proficiency label, 0 when unknown.
// Labels match exactly.
func (s Scale) Weight(label string) int {
	return s[label]
}

// Covers is the set of skill names still to be covered.
type Covers interface {
	Has(skill string) bool
}

// SkillKey normalizes a skill or strength name for set membership.
func SkillKey(name string) string {
	return strings.ToLower(name)
}

// Marginal sums the weights of the strengths whose skill is still uncovered.
// Strengths for covered skills contribute nothing.
func (s Scale) Marginal(strengths []model.StrengthEntry, uncovered Covers) int {
	score := 0
	for _, st := range strengths {
		if uncovered.Has(SkillKey(st.Name)) {
			score += s.Weight(st.Proficiency)
		}
	}
	return score
}
