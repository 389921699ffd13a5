package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/matching-guru/internal/eligibility"
	"github.com/jonathan/matching-guru/internal/observability"
	"github.com/jonathan/matching-guru/internal/schemas"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
	schemafiles "github.com/jonathan/matching-guru/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate intake answers against a programme year's criteria",
	Long:  "Runs every intake rule over a WizardAnswers JSON file and prints the ValidationResult. Exits non-zero when any rule fails.",
	RunE:  runValidate,
}

var (
	validateAnswersPath  string
	validateCriteriaPath string
	validateProfilePath  string
	validateCoursesPath  string
	validateVerbose      bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateAnswersPath, "answers", "a", "", "Path to WizardAnswers JSON file (required)")
	validateCmd.Flags().StringVarP(&validateCriteriaPath, "criteria", "c", "", "Path to programme-year criteria JSON file (required)")
	validateCmd.Flags().StringVarP(&validateProfilePath, "profile", "p", "", "Path to Profile JSON file (optional)")
	validateCmd.Flags().StringVar(&validateCoursesPath, "courses", "", "Path to programme courses JSON file (optional)")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Print an intake summary to stderr")

	if err := validateCmd.MarkFlagRequired("answers"); err != nil {
		panic(fmt.Sprintf("failed to mark answers flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("criteria"); err != nil {
		panic(fmt.Sprintf("failed to mark criteria flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

// intakeInputs is everything one offline validation run reads from disk
type intakeInputs struct {
	Answers  types.WizardAnswers
	Criteria []types.ProgrammeYearCriterion
	Profile  *types.Profile
	Courses  []types.Course
}

func runValidate(cmd *cobra.Command, _ []string) error {
	in, err := loadIntakeInputs(validateAnswersPath, validateCriteriaPath, validateProfilePath, validateCoursesPath)
	if err != nil {
		return err
	}

	result := validation.Validate(in.Answers, in.Criteria, in.Profile, in.Courses)
	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if validateVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintIntakeSummary(
			in.Answers,
			steps.ComputeVisibleSteps(in.Answers.Role, in.Answers.AcademicStage),
			eligibility.VisibleCriteria(in.Criteria, in.Profile),
		)
		printer.PrintValidationResult(result)
	}

	return result.AsError()
}

// loadIntakeInputs reads the answers (checked against the embedded schema)
// and the optional profile and course files
func loadIntakeInputs(answersPath, criteriaPath, profilePath, coursesPath string) (*intakeInputs, error) {
	content, err := os.ReadFile(answersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}
	if err := schemas.ValidateBytes(schemafiles.WizardAnswers, content); err != nil {
		return nil, fmt.Errorf("answers file %s is malformed: %w", answersPath, err)
	}

	in := &intakeInputs{}
	if err := json.Unmarshal(content, &in.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers JSON: %w", err)
	}
	if err := readJSON(criteriaPath, &in.Criteria); err != nil {
		return nil, err
	}

	if profilePath != "" {
		var profile types.Profile
		if err := readJSON(profilePath, &profile); err != nil {
			return nil, err
		}
		in.Profile = &profile
	}
	if coursesPath != "" {
		if err := readJSON(coursesPath, &in.Courses); err != nil {
			return nil, err
		}
	}
	return in, nil
}
