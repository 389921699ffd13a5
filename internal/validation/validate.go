package validation

import (
	"fmt"
	"strings"

	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/eligibility"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
)

// Bounds for the number of mentees a mentor can take
const (
	MinMentees = 1
	MaxMentees = 3
)

// Messages for role, stage and placement rules
const (
	MsgRoleRequired             = "Please select whether you are joining as a mentor or a mentee"
	MsgMenteesNumberRequired    = "Please enter how many mentees you would like to mentor"
	MsgMenteesNumberRange       = "Mentors can take between 1 and 3 mentees"
	MsgStageRequired            = "Please select your academic stage"
	MsgPlacementDescriptionReqd = "Please describe your placement"
	msgUnknownStage             = "%q is not a recognised academic stage"
	msgUnknownCriterion         = "Matching criterion %s is not supported; contact the programme coordinator"
	msgWeightSum                = "Matching criteria weights for this programme year add up to %d instead of 100; contact the programme coordinator"
)

// Issue is one failed rule, tied to the step and answer field it belongs to
type Issue struct {
	Step    steps.ID `json:"step"`
	Field   string   `json:"field,omitempty"`
	Message string   `json:"message"`
}

// Result is the outcome of one validation pass
type Result struct {
	Errors                []string `json:"errors"`
	FirstFailingStepIndex *int     `json:"firstFailingStepIndex"`
	Issues                []Issue  `json:"issues"`
}

// Valid reports whether no rule failed
func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Validate runs every rule in fixed order and collects all failures.
// courses is the programme's full course list; it is filtered by the
// answers' academic stage here so the FIELD rule sees the eligible set.
func Validate(answers types.WizardAnswers, configured []types.ProgrammeYearCriterion, profile *types.Profile, courses []types.Course) Result {
	visible := steps.ComputeVisibleSteps(answers.Role, answers.AcademicStage)

	var issues []Issue
	issues = append(issues, checkRoleAndStage(answers)...)
	if steps.IndexOf(visible, steps.Placement) >= 0 {
		issues = append(issues, checkPlacement(answers)...)
	}
	issues = append(issues, checkCriteria(answers, configured, profile, courses)...)

	return newResult(issues, visible)
}

// ValidateStep runs the full rule set but keeps only the failures of step.
func ValidateStep(step steps.ID, answers types.WizardAnswers, configured []types.ProgrammeYearCriterion, profile *types.Profile, courses []types.Course) Result {
	full := Validate(answers, configured, profile, courses)

	var issues []Issue
	for _, issue := range full.Issues {
		if issue.Step == step {
			issues = append(issues, issue)
		}
	}
	return newResult(issues, steps.ComputeVisibleSteps(answers.Role, answers.AcademicStage))
}

func newResult(issues []Issue, visible []steps.ID) Result {
	r := Result{Errors: []string{}, Issues: []Issue{}}
	for _, issue := range issues {
		r.Errors = append(r.Errors, issue.Message)
		r.Issues = append(r.Issues, issue)
	}
	if len(issues) > 0 {
		if idx := steps.IndexOf(visible, issues[0].Step); idx >= 0 {
			r.FirstFailingStepIndex = &idx
		}
	}
	return r
}

func checkRoleAndStage(a types.WizardAnswers) []Issue {
	var issues []Issue
	add := func(field, msg string) {
		issues = append(issues, Issue{Step: steps.RoleAndStage, Field: field, Message: msg})
	}

	switch a.Role {
	case types.RoleMentor:
		switch {
		case a.MenteesNumber == nil:
			add("menteesNumber", MsgMenteesNumberRequired)
		case *a.MenteesNumber < MinMentees || *a.MenteesNumber > MaxMentees:
			add("menteesNumber", MsgMenteesNumberRange)
		}
	case types.RoleMentee:
	default:
		add("role", MsgRoleRequired)
	}

	stage := strings.TrimSpace(string(a.AcademicStage))
	switch {
	case stage == "":
		add("academicStage", MsgStageRequired)
	case !types.IsKnownStage(a.AcademicStage):
		add("academicStage", fmt.Sprintf(msgUnknownStage, a.AcademicStage))
	}
	return issues
}

func checkPlacement(a types.WizardAnswers) []Issue {
	if a.HadPlacement != nil && *a.HadPlacement && strings.TrimSpace(a.PlacementDescription) == "" {
		return []Issue{{Step: steps.Placement, Field: "placementDescription", Message: MsgPlacementDescriptionReqd}}
	}
	return nil
}

func checkCriteria(a types.WizardAnswers, configured []types.ProgrammeYearCriterion, profile *types.Profile, courses []types.Course) []Issue {
	var issues []Issue
	visible := eligibility.VisibleCriteria(configured, profile)
	in := criteria.Input{
		Answers:         a,
		Profile:         profile,
		EligibleCourses: eligibility.FilterCoursesByStage(courses, a.AcademicStage),
	}

	for _, t := range visible {
		d, ok := criteria.Lookup(t)
		if !ok {
			issues = append(issues, Issue{Step: steps.Criteria, Message: fmt.Sprintf(msgUnknownCriterion, t)})
			continue
		}
		for _, p := range d.Check(in) {
			issues = append(issues, Issue{Step: steps.Criteria, Field: p.Field, Message: p.Message})
		}
	}

	for _, p := range criteria.CheckGenderPreference(a.GenderPreference) {
		issues = append(issues, Issue{Step: steps.Criteria, Field: p.Field, Message: p.Message})
	}

	if sum, weighted := WeightSum(configured); weighted && sum != 100 {
		issues = append(issues, Issue{Step: steps.Criteria, Message: fmt.Sprintf(msgWeightSum, sum)})
	}
	return issues
}

// WeightSum adds the positive weights and reports whether any were positive
func WeightSum(configured []types.ProgrammeYearCriterion) (int, bool) {
	sum := 0
	weighted := false
	for _, c := range configured {
		if c.Weight > 0 {
			sum += c.Weight
			weighted = true
		}
	}
	return sum, weighted
}
