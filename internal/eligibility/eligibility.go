// Package eligibility decides which criteria still need answers and which courses a stage may pick.
package eligibility

import (
	"strings"

	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/types"
)

var (
	undergraduateLevels = []string{"BA", "BSc", "BEng"}
	postgraduateLevels  = []string{"MSc", "MA", "PhD"}
)

var stageLevels = map[types.AcademicStage][]string{
	types.StageFoundationYear:          undergraduateLevels,
	types.StageFirstYearUndergraduate:  undergraduateLevels,
	types.StageSecondYearUndergraduate: undergraduateLevels,
	types.StageThirdYearUndergraduate:  undergraduateLevels,
	types.StageFinalYearUndergraduate:  undergraduateLevels,
	types.StagePlacementYear:           undergraduateLevels,
	types.StageMasters:                 postgraduateLevels,
	types.StagePhD:                     postgraduateLevels,
}

// AllowedLevels returns the course-level prefixes a stage may choose from.
// Unknown stages get nil.
func AllowedLevels(stage types.AcademicStage) []string {
	levels, ok := stageLevels[stage]
	if !ok {
		return nil
	}
	return append([]string(nil), levels...)
}

// FilterCoursesByStage keeps the courses whose name contains one of the
// stage's levels. Matching is case-sensitive and preserves input order.
func FilterCoursesByStage(courses []types.Course, stage types.AcademicStage) []types.Course {
	levels := stageLevels[stage]
	out := []types.Course{}
	if len(levels) == 0 {
		return out
	}
	for _, c := range courses {
		for _, level := range levels {
			if strings.Contains(c.Name, level) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// VisibleCriteria returns the criteria that must be collected this session:
// weight above zero and not already answered by the profile. Types without a
// registered descriptor stay visible so validation can report them.
func VisibleCriteria(configured []types.ProgrammeYearCriterion, profile *types.Profile) []types.CriterionType {
	out := []types.CriterionType{}
	seen := make(map[types.CriterionType]bool, len(configured))
	for _, c := range configured {
		if c.Weight <= 0 || seen[c.CriterionType] {
			continue
		}
		seen[c.CriterionType] = true

		d, ok := criteria.Lookup(c.CriterionType)
		if ok && d.IsSatisfiedByProfile(profile) {
			continue
		}
		out = append(out, c.CriterionType)
	}
	return out
}

// IsVisible reports whether t is in the visible list
func IsVisible(visible []types.CriterionType, t types.CriterionType) bool {
	for _, v := range visible {
		if v == t {
			return true
		}
	}
	return false
}
