// Package types provides type definitions for structured data used throughout the matching-guru intake service.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CriterionType identifies a matching criterion dimension
type CriterionType string

// Supported matching criteria
const (
	CriterionField             CriterionType = "FIELD"
	CriterionAvailability      CriterionType = "AVAILABILITY"
	CriterionPersonality       CriterionType = "PERSONALITY"
	CriterionLivingArrangement CriterionType = "LIVING_ARRANGEMENT"
	CriterionSkills            CriterionType = "SKILLS"
	CriterionGender            CriterionType = "GENDER"
	CriterionAge               CriterionType = "AGE"
	CriterionNationality       CriterionType = "NATIONALITY"
)

// ProgrammeYearCriterion is one weighted criterion configured for a programme year
type ProgrammeYearCriterion struct {
	ID            int           `json:"id"`
	CriterionType CriterionType `json:"criterionType"`
	Weight        int           `json:"weight"`
}

// Course is an eligible course offered by a programme
type Course struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Duration int    `json:"duration,omitempty"`
	GroupID  *int   `json:"groupId,omitempty"`
}

// WeightFor returns the weight configured for t, or 0 when t is not configured.
func WeightFor(criteria []ProgrammeYearCriterion, t CriterionType) int {
	for _, c := range criteria {
		if c.CriterionType == t {
			return c.Weight
		}
	}
	return 0
}
