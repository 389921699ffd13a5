package wizard

import (
	"strings"

	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/eligibility"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
)

// ParticipantRequest maps answers to the upstream participant DTO.
// Criterion answers are only sent for criteria the participant was asked,
// so weight-0 criteria and those the profile already answers (including
// the course) are left out. Placement fields follow the placement step.
func ParticipantRequest(programmeYearID int, answers types.WizardAnswers, profile *types.Profile, configured []types.ProgrammeYearCriterion) types.ParticipantCreateRequest {
	a := answers.Clone()
	req := types.ParticipantCreateRequest{
		ProgrammeYearID:  programmeYearID,
		Role:             string(a.Role),
		AcademicStage:    string(a.AcademicStage),
		GenderPreference: criteria.NormalizeOption(a.GenderPreference),
	}

	if a.Role == types.RoleMentor {
		req.MenteesNumber = a.MenteesNumber
	}
	if steps.PlacementVisible(a.Role, a.AcademicStage) {
		req.HadPlacement = a.HadPlacement
		req.PlacementDescription = a.PlacementDescription
		req.PlacementInterest = a.PlacementInterest
	}

	asked := eligibility.VisibleCriteria(configured, profile)
	for _, t := range asked {
		switch t {
		case types.CriterionField:
			req.CourseID = a.CourseID
		case types.CriterionAvailability:
			req.MeetingFrequency = criteria.NormalizeOption(a.Availability.MeetingFrequency)
			req.AvailableDays = normalizeAll(a.Availability.AvailableDays)
			req.TimeRange = criteria.NormalizeOption(a.Availability.TimeRange)
		case types.CriterionPersonality:
			req.PersonalityType = criteria.NormalizeOption(a.PersonalityType)
		case types.CriterionLivingArrangement:
			req.LivingArrangement = criteria.NormalizeOption(a.LivingArrangement)
		case types.CriterionSkills:
			req.Skills = normalizeAll(a.Skills)
		case types.CriterionGender:
			req.Gender = criteria.NormalizeOption(a.Gender)
		case types.CriterionAge:
			req.AgeGroup = criteria.NormalizeOption(a.AgeGroup)
		case types.CriterionNationality:
			req.Nationality = strings.TrimSpace(a.Nationality)
		}
	}
	return req
}

// normalizeAll upper-cases option values and drops repeats
func normalizeAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := criteria.NormalizeOption(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
