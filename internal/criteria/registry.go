// Package criteria provides the static registry of matching-criterion form descriptors.
//
// The registry is the single dispatch table for a criterion: how it is rendered,
// whether the profile already answers it, and which answers are still missing.
package criteria

import (
	"fmt"
	"strings"

	"github.com/jonathan/matching-guru/internal/types"
)

// InputKind tells the client which control renders a criterion
type InputKind string

// Input kinds
const (
	InputSelect       InputKind = "select"
	InputMultiSelect  InputKind = "multi_select"
	InputAvailability InputKind = "availability"
	InputText         InputKind = "text"
	InputCourse       InputKind = "course"
)

// Option is one selectable value for a criterion
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Problem is a single missing or invalid answer reported by a descriptor
type Problem struct {
	Field   string
	Message string
}

// Input is what a descriptor needs to check answers
type Input struct {
	Answers types.WizardAnswers
	Profile *types.Profile
	// EligibleCourses must already be filtered by academic stage.
	EligibleCourses []types.Course
}

// Descriptor describes how a criterion is collected and checked
type Descriptor struct {
	Type    types.CriterionType `json:"criterionType"`
	Label   string              `json:"label"`
	Input   InputKind           `json:"inputKind"`
	Options []Option            `json:"options,omitempty"`
	// Fields are the WizardAnswers JSON fields this criterion fills.
	Fields []string `json:"fields"`
	// Extra holds secondary option sets (availability uses days and time ranges).
	Extra map[string][]Option `json:"extra,omitempty"`

	satisfied func(*types.Profile) bool
	check     func(Input) []Problem
}

// IsSatisfiedByProfile reports whether the profile already supplies this criterion
func (d Descriptor) IsSatisfiedByProfile(profile *types.Profile) bool {
	if profile == nil || d.satisfied == nil {
		return false
	}
	return d.satisfied(profile)
}

// Check returns every missing or invalid answer for this criterion
func (d Descriptor) Check(in Input) []Problem {
	if d.check == nil {
		return nil
	}
	return d.check(in)
}

// HasOption reports whether value is one of the descriptor's options, ignoring case
func (d Descriptor) HasOption(value string) bool {
	return hasOption(d.Options, NormalizeOption(value))
}

var order = []types.CriterionType{
	types.CriterionField,
	types.CriterionAvailability,
	types.CriterionPersonality,
	types.CriterionLivingArrangement,
	types.CriterionSkills,
	types.CriterionGender,
	types.CriterionAge,
	types.CriterionNationality,
}

var registry = map[types.CriterionType]Descriptor{
	types.CriterionField: {
		Type:      types.CriterionField,
		Label:     "Course",
		Input:     InputCourse,
		Fields:    []string{"courseId"},
		satisfied: func(p *types.Profile) bool { return p.CourseID != nil },
		check:     checkCourse,
	},
	types.CriterionAvailability: {
		Type:   types.CriterionAvailability,
		Label:  "Availability",
		Input:  InputAvailability,
		Fields: []string{"availability.meetingFrequency", "availability.availableDays", "availability.timeRange"},
		Options: frequencyOptions,
		Extra: map[string][]Option{
			"days":       dayOptions,
			"timeRanges": timeRangeOptions,
		},
		check: checkAvailability,
	},
	types.CriterionPersonality: {
		Type:   types.CriterionPersonality,
		Label:  "Personality type",
		Input:  InputSelect,
		Fields: []string{"personalityType"},
		Options: []Option{
			{Value: "INTROVERT", Label: "Introvert"},
			{Value: "EXTROVERT", Label: "Extrovert"},
			{Value: "AMBIVERT", Label: "Ambivert"},
		},
		satisfied: func(p *types.Profile) bool { return p.PersonalityType != "" },
	},
	types.CriterionLivingArrangement: {
		Type:   types.CriterionLivingArrangement,
		Label:  "Living arrangement",
		Input:  InputSelect,
		Fields: []string{"livingArrangement"},
		Options: []Option{
			{Value: "ON_CAMPUS", Label: "On campus"},
			{Value: "OFF_CAMPUS", Label: "Off campus"},
			{Value: "WITH_FAMILY", Label: "With family"},
		},
		satisfied: func(p *types.Profile) bool { return p.LivingArrangement != "" },
	},
	types.CriterionSkills: {
		Type:   types.CriterionSkills,
		Label:  "Skills",
		Input:  InputMultiSelect,
		Fields: []string{"skills"},
		Options: skillOptions,
		check:   checkSkills,
	},
	types.CriterionGender: {
		Type:   types.CriterionGender,
		Label:  "Gender",
		Input:  InputSelect,
		Fields: []string{"gender"},
		Options: []Option{
			{Value: "MALE", Label: "Male"},
			{Value: "FEMALE", Label: "Female"},
			{Value: "NON_BINARY", Label: "Non-binary"},
			{Value: "PREFER_NOT_TO_SAY", Label: "Prefer not to say"},
		},
		satisfied: func(p *types.Profile) bool { return p.Gender != "" },
	},
	types.CriterionAge: {
		Type:   types.CriterionAge,
		Label:  "Age group",
		Input:  InputSelect,
		Fields: []string{"ageGroup"},
		Options: []Option{
			{Value: "18-20", Label: "18-20"},
			{Value: "21-24", Label: "21-24"},
			{Value: "25-29", Label: "25-29"},
			{Value: "30+", Label: "30+"},
		},
		satisfied: func(p *types.Profile) bool { return p.AgeGroup != "" },
	},
	types.CriterionNationality: {
		Type:      types.CriterionNationality,
		Label:     "Nationality",
		Input:     InputText,
		Fields:    []string{"nationality"},
		satisfied: func(p *types.Profile) bool { return p.Nationality != "" },
	},
}

var frequencyOptions = []Option{
	{Value: "WEEKLY", Label: "Weekly"},
	{Value: "FORTNIGHTLY", Label: "Fortnightly"},
	{Value: "MONTHLY", Label: "Monthly"},
}

var skillOptions = []Option{
	{Value: "COMMUNICATION", Label: "Communication"},
	{Value: "LEADERSHIP", Label: "Leadership"},
	{Value: "PROGRAMMING", Label: "Programming"},
	{Value: "DATA_ANALYSIS", Label: "Data analysis"},
	{Value: "WRITING", Label: "Writing"},
	{Value: "PUBLIC_SPEAKING", Label: "Public speaking"},
	{Value: "RESEARCH", Label: "Research"},
	{Value: "PROJECT_MANAGEMENT", Label: "Project management"},
}

var dayOptions = []Option{
	{Value: types.DayMonday, Label: "Monday"},
	{Value: types.DayTuesday, Label: "Tuesday"},
	{Value: types.DayWednesday, Label: "Wednesday"},
	{Value: types.DayThursday, Label: "Thursday"},
	{Value: types.DayFriday, Label: "Friday"},
	{Value: types.DaySaturday, Label: "Saturday"},
	{Value: types.DaySunday, Label: "Sunday"},
}

var timeRangeOptions = []Option{
	{Value: types.TimeMorning, Label: "Morning"},
	{Value: types.TimeAfternoon, Label: "Afternoon"},
	{Value: types.TimeEvening, Label: "Evening"},
	{Value: types.TimeAnytime, Label: "Any time"},
}

// GenderPreferenceOptions are offered on every intake regardless of weighted criteria
var GenderPreferenceOptions = []Option{
	{Value: "SAME_GENDER", Label: "Same gender"},
	{Value: "NO_PREFERENCE", Label: "No preference"},
}

func init() {
	// Single-value criteria share one check built from their descriptor.
	for _, t := range []types.CriterionType{
		types.CriterionPersonality,
		types.CriterionLivingArrangement,
		types.CriterionGender,
		types.CriterionAge,
		types.CriterionNationality,
	} {
		d := registry[t]
		d.check = singleValueCheck(d)
		registry[t] = d
	}
}

// MustDescriptor returns the descriptor for t. An unregistered type is a
// configuration bug and panics rather than silently dropping a criterion.
func MustDescriptor(t types.CriterionType) Descriptor {
	d, ok := registry[t]
	if !ok {
		panic(fmt.Sprintf("criteria: no descriptor registered for %q", t))
	}
	return d
}

// Lookup returns the descriptor for t and whether it is registered
func Lookup(t types.CriterionType) (Descriptor, bool) {
	d, ok := registry[t]
	return d, ok
}

// IsSatisfiedByProfile reports whether the profile already answers t. Panics on unknown t.
func IsSatisfiedByProfile(t types.CriterionType, profile *types.Profile) bool {
	return MustDescriptor(t).IsSatisfiedByProfile(profile)
}

// All returns every registered descriptor in canonical order
func All() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, t := range order {
		out = append(out, registry[t])
	}
	return out
}

// NormalizeOption is the canonical form of an option value. Every option
// comparison and every value sent upstream goes through it.
func NormalizeOption(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IsValidDay reports whether day names a weekday, ignoring case
func IsValidDay(day string) bool {
	return hasOption(dayOptions, NormalizeOption(day))
}

// IsValidTimeRange reports whether tr names a time range, ignoring case
func IsValidTimeRange(tr string) bool {
	return hasOption(timeRangeOptions, NormalizeOption(tr))
}

func hasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
