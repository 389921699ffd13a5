package criteria

import (
	"fmt"
	"strings"

	"github.com/jonathan/matching-guru/internal/types"
)

// Messages shown when a criterion answer is missing
const (
	MsgCourseRequired        = "Please select your course"
	MsgNoCourseAvailable     = "No course is available for the selected academic stage"
	MsgCourseNotEligible     = "The selected course is not available for the selected academic stage"
	MsgFrequencyRequired     = "Please select how often you would like to meet"
	MsgDaysRequired          = "Please select at least one day you are available"
	MsgTimeRangeRequired     = "Please select the time of day you are available"
	MsgPersonalityRequired   = "Please select your personality type"
	MsgLivingRequired        = "Please select your living arrangement"
	MsgSkillsRequired        = "Please select at least one skill"
	MsgGenderRequired        = "Please select your gender"
	MsgAgeGroupRequired      = "Please select your age group"
	MsgNationalityRequired   = "Please enter your nationality"
	MsgDuplicateDay          = "Each available day can only be selected once"
	msgInvalidOptionTemplate = "%q is not a valid %s"
)

type singleValue struct {
	field    string
	required string
	get      func(types.WizardAnswers) string
}

var singleValues = map[types.CriterionType]singleValue{
	types.CriterionPersonality: {
		field:    "personalityType",
		required: MsgPersonalityRequired,
		get:      func(a types.WizardAnswers) string { return a.PersonalityType },
	},
	types.CriterionLivingArrangement: {
		field:    "livingArrangement",
		required: MsgLivingRequired,
		get:      func(a types.WizardAnswers) string { return a.LivingArrangement },
	},
	types.CriterionGender: {
		field:    "gender",
		required: MsgGenderRequired,
		get:      func(a types.WizardAnswers) string { return a.Gender },
	},
	types.CriterionAge: {
		field:    "ageGroup",
		required: MsgAgeGroupRequired,
		get:      func(a types.WizardAnswers) string { return a.AgeGroup },
	},
	types.CriterionNationality: {
		field:    "nationality",
		required: MsgNationalityRequired,
		get:      func(a types.WizardAnswers) string { return a.Nationality },
	},
}

func singleValueCheck(d Descriptor) func(Input) []Problem {
	sv := singleValues[d.Type]
	return func(in Input) []Problem {
		if d.IsSatisfiedByProfile(in.Profile) {
			return nil
		}
		value := strings.TrimSpace(sv.get(in.Answers))
		if value == "" {
			return []Problem{{Field: sv.field, Message: sv.required}}
		}
		if len(d.Options) > 0 && !d.HasOption(value) {
			return []Problem{{
				Field:   sv.field,
				Message: fmt.Sprintf(msgInvalidOptionTemplate, value, strings.ToLower(d.Label)),
			}}
		}
		return nil
	}
}

func checkCourse(in Input) []Problem {
	if in.Profile.HasCourse() {
		return nil
	}
	if len(in.EligibleCourses) == 0 {
		return []Problem{{Field: "courseId", Message: MsgNoCourseAvailable}}
	}
	if in.Answers.CourseID == nil {
		return []Problem{{Field: "courseId", Message: MsgCourseRequired}}
	}
	for _, c := range in.EligibleCourses {
		if c.ID == *in.Answers.CourseID {
			return nil
		}
	}
	return []Problem{{Field: "courseId", Message: MsgCourseNotEligible}}
}

func checkAvailability(in Input) []Problem {
	var problems []Problem
	av := in.Answers.Availability

	switch {
	case strings.TrimSpace(av.MeetingFrequency) == "":
		problems = append(problems, Problem{Field: "availability.meetingFrequency", Message: MsgFrequencyRequired})
	case !hasOption(frequencyOptions, NormalizeOption(av.MeetingFrequency)):
		problems = append(problems, Problem{
			Field:   "availability.meetingFrequency",
			Message: fmt.Sprintf(msgInvalidOptionTemplate, av.MeetingFrequency, "meeting frequency"),
		})
	}

	if len(av.AvailableDays) == 0 {
		problems = append(problems, Problem{Field: "availability.availableDays", Message: MsgDaysRequired})
	} else {
		seen := make(map[string]bool, len(av.AvailableDays))
		for _, day := range av.AvailableDays {
			if !IsValidDay(day) {
				problems = append(problems, Problem{
					Field:   "availability.availableDays",
					Message: fmt.Sprintf(msgInvalidOptionTemplate, day, "day"),
				})
				break
			}
			if seen[NormalizeOption(day)] {
				problems = append(problems, Problem{Field: "availability.availableDays", Message: MsgDuplicateDay})
				break
			}
			seen[NormalizeOption(day)] = true
		}
	}

	switch {
	case strings.TrimSpace(av.TimeRange) == "":
		problems = append(problems, Problem{Field: "availability.timeRange", Message: MsgTimeRangeRequired})
	case !IsValidTimeRange(av.TimeRange):
		problems = append(problems, Problem{
			Field:   "availability.timeRange",
			Message: fmt.Sprintf(msgInvalidOptionTemplate, av.TimeRange, "time range"),
		})
	}

	return problems
}

func checkSkills(in Input) []Problem {
	if len(in.Answers.Skills) == 0 {
		return []Problem{{Field: "skills", Message: MsgSkillsRequired}}
	}
	for _, s := range in.Answers.Skills {
		if !hasOption(skillOptions, NormalizeOption(s)) {
			return []Problem{{Field: "skills", Message: fmt.Sprintf(msgInvalidOptionTemplate, s, "skill")}}
		}
	}
	return nil
}

// CheckGenderPreference checks the optional gender preference offered on
// every intake. An empty value means no answer.
func CheckGenderPreference(value string) []Problem {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if !hasOption(GenderPreferenceOptions, NormalizeOption(value)) {
		return []Problem{{
			Field:   "genderPreference",
			Message: fmt.Sprintf(msgInvalidOptionTemplate, value, "gender preference"),
		}}
	}
	return nil
}
