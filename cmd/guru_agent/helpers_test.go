package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes content to name inside a per-test temp dir
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns stdout and stderr
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

const criteriaJSON = `[
	{"id": 1, "criterionType": "FIELD", "weight": 40},
	{"id": 2, "criterionType": "AVAILABILITY", "weight": 30},
	{"id": 3, "criterionType": "SKILLS", "weight": 30}
]`

const coursesJSON = `[
	{"id": 1, "name": "BSc Computing"},
	{"id": 2, "name": "MSc Data Science"},
	{"id": 3, "name": "BA History"}
]`

const completeAnswersJSON = `{
	"role": "MENTEE",
	"academicStage": "First Year Undergraduate",
	"courseId": 1,
	"availability": {"meetingFrequency": "WEEKLY", "availableDays": ["MONDAY"], "timeRange": "EVENING"},
	"skills": ["WRITING"]
}`
