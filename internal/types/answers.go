package types

import "strings"

// Role is the participant role within a programme year
type Role string

// Participant roles
const (
	RoleMentor Role = "MENTOR"
	RoleMentee Role = "MENTEE"
)

// AcademicStage is the participant's current stage of study
type AcademicStage string

// Academic stages accepted by the intake wizard
const (
	StageFoundationYear          AcademicStage = "Foundation Year"
	StageFirstYearUndergraduate  AcademicStage = "First Year Undergraduate"
	StageSecondYearUndergraduate AcademicStage = "Second Year Undergraduate"
	StageThirdYearUndergraduate  AcademicStage = "Third Year Undergraduate"
	StageFinalYearUndergraduate  AcademicStage = "Final Year Undergraduate"
	StagePlacementYear           AcademicStage = "Placement Year"
	StageMasters                 AcademicStage = "Masters"
	StagePhD                     AcademicStage = "PhD"
)

// AcademicStages lists every stage in display order
var AcademicStages = []AcademicStage{
	StageFoundationYear,
	StageFirstYearUndergraduate,
	StageSecondYearUndergraduate,
	StageThirdYearUndergraduate,
	StageFinalYearUndergraduate,
	StagePlacementYear,
	StageMasters,
	StagePhD,
}

// IsKnownStage reports whether s is one of the supported academic stages
func IsKnownStage(s AcademicStage) bool {
	for _, stage := range AcademicStages {
		if stage == s {
			return true
		}
	}
	return false
}

// Days of the week as sent to the upstream API
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
)

// Time ranges for availability
const (
	TimeMorning   = "MORNING"
	TimeAfternoon = "AFTERNOON"
	TimeEvening   = "EVENING"
	TimeAnytime   = "ANYTIME"
)

// Availability is the structured answer collected for the AVAILABILITY criterion
type Availability struct {
	MeetingFrequency string   `json:"meetingFrequency,omitempty"`
	AvailableDays    []string `json:"availableDays,omitempty"`
	TimeRange        string   `json:"timeRange,omitempty"`
}

// WizardAnswers holds everything collected during one intake session
type WizardAnswers struct {
	Role          Role          `json:"role"`
	MenteesNumber *int          `json:"menteesNumber,omitempty"`
	AcademicStage AcademicStage `json:"academicStage"`
	CourseID      *int          `json:"courseId,omitempty"`

	HadPlacement         *bool  `json:"hadPlacement,omitempty"`
	PlacementDescription string `json:"placementDescription,omitempty"`
	PlacementInterest    *bool  `json:"placementInterest,omitempty"`

	Availability      Availability `json:"availability"`
	PersonalityType   string       `json:"personalityType,omitempty"`
	Skills            []string     `json:"skills,omitempty"`
	AgeGroup          string       `json:"ageGroup,omitempty"`
	Gender            string       `json:"gender,omitempty"`
	LivingArrangement string       `json:"livingArrangement,omitempty"`
	Nationality       string       `json:"nationality,omitempty"`
	GenderPreference  string       `json:"genderPreference,omitempty"`
}

// DefaultAnswers returns a fresh answer set with wizard defaults and any
// values the profile already supplies.
func DefaultAnswers(profile *Profile) WizardAnswers {
	answers := WizardAnswers{
		Role:          RoleMentee,
		AcademicStage: StageFirstYearUndergraduate,
	}
	if profile == nil {
		return answers
	}

	answers.PersonalityType = profile.PersonalityType
	answers.LivingArrangement = profile.LivingArrangement
	answers.Gender = profile.Gender
	answers.AgeGroup = profile.AgeGroup
	answers.Nationality = profile.Nationality
	return answers
}

// AnswersPatch is a partial update to WizardAnswers. Nil fields are left untouched.
type AnswersPatch struct {
	Role          *Role          `json:"role,omitempty" validate:"omitempty,oneof=MENTOR MENTEE"`
	MenteesNumber *int           `json:"menteesNumber,omitempty" validate:"omitempty,min=0,max=99"`
	AcademicStage *AcademicStage `json:"academicStage,omitempty" validate:"omitempty,min=1,max=64"`
	CourseID      *int           `json:"courseId,omitempty" validate:"omitempty,gt=0"`

	HadPlacement         *bool   `json:"hadPlacement,omitempty"`
	PlacementDescription *string `json:"placementDescription,omitempty" validate:"omitempty,max=2000"`
	PlacementInterest    *bool   `json:"placementInterest,omitempty"`

	Availability      *Availability `json:"availability,omitempty"`
	PersonalityType   *string       `json:"personalityType,omitempty" validate:"omitempty,max=64"`
	Skills            []string      `json:"skills,omitempty" validate:"omitempty,max=20,dive,required,max=64"`
	AgeGroup          *string       `json:"ageGroup,omitempty" validate:"omitempty,max=16"`
	Gender            *string       `json:"gender,omitempty" validate:"omitempty,max=64"`
	LivingArrangement *string       `json:"livingArrangement,omitempty" validate:"omitempty,max=64"`
	Nationality       *string       `json:"nationality,omitempty" validate:"omitempty,max=100"`
	GenderPreference  *string       `json:"genderPreference,omitempty" validate:"omitempty,max=64"`
}

// Apply merges the non-nil fields of p into a.
func (a *WizardAnswers) Apply(p AnswersPatch) {
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.MenteesNumber != nil {
		n := *p.MenteesNumber
		a.MenteesNumber = &n
	}
	if p.AcademicStage != nil {
		a.AcademicStage = *p.AcademicStage
	}
	if p.CourseID != nil {
		id := *p.CourseID
		a.CourseID = &id
	}
	if p.HadPlacement != nil {
		v := *p.HadPlacement
		a.HadPlacement = &v
	}
	if p.PlacementDescription != nil {
		a.PlacementDescription = strings.TrimSpace(*p.PlacementDescription)
	}
	if p.PlacementInterest != nil {
		v := *p.PlacementInterest
		a.PlacementInterest = &v
	}
	if p.Availability != nil {
		a.Availability = Availability{
			MeetingFrequency: p.Availability.MeetingFrequency,
			AvailableDays:    uniqueFold(p.Availability.AvailableDays),
			TimeRange:        p.Availability.TimeRange,
		}
	}
	if p.PersonalityType != nil {
		a.PersonalityType = *p.PersonalityType
	}
	if p.Skills != nil {
		a.Skills = uniqueFold(p.Skills)
	}
	if p.AgeGroup != nil {
		a.AgeGroup = *p.AgeGroup
	}
	if p.Gender != nil {
		a.Gender = *p.Gender
	}
	if p.LivingArrangement != nil {
		a.LivingArrangement = *p.LivingArrangement
	}
	if p.Nationality != nil {
		a.Nationality = strings.TrimSpace(*p.Nationality)
	}
	if p.GenderPreference != nil {
		a.GenderPreference = *p.GenderPreference
	}
}

// Clone returns a deep copy so callers cannot mutate session state through slices.
func (a WizardAnswers) Clone() WizardAnswers {
	out := a
	if a.MenteesNumber != nil {
		n := *a.MenteesNumber
		out.MenteesNumber = &n
	}
	if a.CourseID != nil {
		id := *a.CourseID
		out.CourseID = &id
	}
	if a.HadPlacement != nil {
		v := *a.HadPlacement
		out.HadPlacement = &v
	}
	if a.PlacementInterest != nil {
		v := *a.PlacementInterest
		out.PlacementInterest = &v
	}
	out.Availability.AvailableDays = append([]string(nil), a.Availability.AvailableDays...)
	out.Skills = append([]string(nil), a.Skills...)
	return out
}

// uniqueFold drops repeated values, comparing case-insensitively and keeping
// the first spelling seen.
func uniqueFold(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToUpper(strings.TrimSpace(v))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
