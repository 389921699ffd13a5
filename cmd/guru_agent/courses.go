package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/matching-guru/internal/eligibility"
	"github.com/jonathan/matching-guru/internal/observability"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses an academic stage may choose",
	Long:  "Filters a programme's course list by the course levels allowed for an academic stage.",
	RunE:  runCourses,
}

var (
	coursesInput   string
	coursesStage   string
	coursesVerbose bool
)

func init() {
	coursesCmd.Flags().StringVarP(&coursesInput, "in", "i", "", "Path to courses JSON file (required)")
	coursesCmd.Flags().StringVarP(&coursesStage, "stage", "s", "", "Academic stage, e.g. \"First Year Undergraduate\" (required)")
	coursesCmd.Flags().BoolVarP(&coursesVerbose, "verbose", "v", false, "Print the eligible courses to stderr")

	if err := coursesCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := coursesCmd.MarkFlagRequired("stage"); err != nil {
		panic(fmt.Sprintf("failed to mark stage flag as required: %v", err))
	}

	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	var courses []types.Course
	if err := readJSON(coursesInput, &courses); err != nil {
		return err
	}

	eligible, err := eligibleCourses(courses, coursesStage)
	if err != nil {
		return err
	}

	if coursesVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintCourses(types.AcademicStage(coursesStage), eligible)
	}
	return writeJSON(cmd.OutOrStdout(), eligible)
}

// eligibleCourses filters courses for stage. Unknown stages are rejected
// rather than silently yielding nothing.
func eligibleCourses(courses []types.Course, stage string) ([]types.Course, error) {
	s := types.AcademicStage(stage)
	if !types.IsKnownStage(s) {
		known := make([]string, len(types.AcademicStages))
		for i, k := range types.AcademicStages {
			known[i] = string(k)
		}
		return nil, fmt.Errorf("unknown academic stage %q (expected one of: %s)", stage, strings.Join(known, ", "))
	}

	eligible := eligibility.FilterCoursesByStage(courses, s)
	if eligible == nil {
		eligible = []types.Course{}
	}
	return eligible, nil
}
