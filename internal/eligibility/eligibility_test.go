package eligibility

import (
	"testing"

	"github.com/jonathan/matching-guru/internal/types"
	"github.com/stretchr/testify/assert"
)

func names(courses []types.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Name)
	}
	return out
}

func TestFilterCoursesByStage(t *testing.T) {
	courses := []types.Course{
		{ID: 1, Name: "BSc Computing"},
		{ID: 2, Name: "MSc AI"},
		{ID: 3, Name: "BA History"},
	}

	tests := []struct {
		name  string
		stage types.AcademicStage
		want  []string
	}{
		{"first year undergraduate", types.StageFirstYearUndergraduate, []string{"BSc Computing", "BA History"}},
		{"placement year", types.StagePlacementYear, []string{"BSc Computing", "BA History"}},
		// "MSc AI" contains neither "MA" nor "PhD" but does contain "MSc".
		{"masters", types.StageMasters, []string{"MSc AI"}},
		{"phd", types.StagePhD, []string{"MSc AI"}},
		{"unknown stage", types.AcademicStage("Sabbatical"), []string{}},
		{"empty stage", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterCoursesByStage(courses, tt.stage)))
		})
	}
}

func TestFilterCoursesByStage_CaseSensitive(t *testing.T) {
	courses := []types.Course{{ID: 1, Name: "bsc computing"}, {ID: 2, Name: "BEng Civil"}}
	got := FilterCoursesByStage(courses, types.StageFinalYearUndergraduate)
	assert.Equal(t, []string{"BEng Civil"}, names(got))
}

func TestAllowedLevels(t *testing.T) {
	assert.Equal(t, []string{"BA", "BSc", "BEng"}, AllowedLevels(types.StageFoundationYear))
	assert.Equal(t, []string{"MSc", "MA", "PhD"}, AllowedLevels(types.StagePhD))
	assert.Nil(t, AllowedLevels("Gap Year"))

	levels := AllowedLevels(types.StageMasters)
	levels[0] = "changed"
	assert.Equal(t, "MSc", AllowedLevels(types.StageMasters)[0])
}

func TestVisibleCriteria_PrefillSkip(t *testing.T) {
	course := 3
	profile := &types.Profile{CourseID: &course, Gender: "MALE"}
	configured := []types.ProgrammeYearCriterion{
		{ID: 1, CriterionType: types.CriterionField, Weight: 30},
		{ID: 2, CriterionType: types.CriterionGender, Weight: 20},
		{ID: 3, CriterionType: types.CriterionSkills, Weight: 25},
		{ID: 4, CriterionType: types.CriterionAvailability, Weight: 25},
	}

	got := VisibleCriteria(configured, profile)
	assert.Equal(t, []types.CriterionType{types.CriterionSkills, types.CriterionAvailability}, got)
}

func TestVisibleCriteria_WeightGating(t *testing.T) {
	configured := []types.ProgrammeYearCriterion{
		{ID: 1, CriterionType: types.CriterionNationality, Weight: 0},
		{ID: 2, CriterionType: types.CriterionPersonality, Weight: 100},
		{ID: 3, CriterionType: types.CriterionAge, Weight: -5},
	}

	for _, profile := range []*types.Profile{nil, {}, {Nationality: "French"}} {
		got := VisibleCriteria(configured, profile)
		assert.Equal(t, []types.CriterionType{types.CriterionPersonality}, got)
	}
}

func TestVisibleCriteria_UnknownTypeStaysVisible(t *testing.T) {
	configured := []types.ProgrammeYearCriterion{
		{ID: 1, CriterionType: "HOBBIES", Weight: 40},
		{ID: 2, CriterionType: types.CriterionSkills, Weight: 60},
	}
	got := VisibleCriteria(configured, &types.Profile{})
	assert.Equal(t, []types.CriterionType{"HOBBIES", types.CriterionSkills}, got)
	assert.True(t, IsVisible(got, "HOBBIES"))
	assert.False(t, IsVisible(got, types.CriterionGender))
}

func TestVisibleCriteria_Empty(t *testing.T) {
	assert.Empty(t, VisibleCriteria(nil, nil))
}
