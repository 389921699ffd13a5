// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/matching-guru/internal/dashboard"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printBanner prints a single-line box
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %s │\n", pad(text, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-fills s with spaces to width runes
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintIntakeSummary outputs the visible steps and the criteria still to be answered.
func (p *Printer) PrintIntakeSummary(answers types.WizardAnswers, visible []steps.ID, criteria []types.CriterionType) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role:   %s\n", answers.Role))
	sb.WriteString(fmt.Sprintf("Stage:  %s\n", answers.AcademicStage))
	sb.WriteString("\n")

	sb.WriteString("Steps:\n")
	for i, id := range visible {
		title := string(id)
		if def, err := steps.GetDefinition(id); err == nil {
			title = def.Title
		}
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, title))
	}

	if len(criteria) > 0 {
		sb.WriteString("\nCriteria to answer:\n")
		for _, c := range criteria {
			sb.WriteString(fmt.Sprintf("  • %s\n", c))
		}
	} else {
		sb.WriteString("\nProfile already answers every weighted criterion\n")
	}

	p.printBox("INTAKE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidationResult outputs every failed rule grouped under its step.
func (p *Printer) PrintValidationResult(result validation.Result) {
	if result.Valid() {
		p.printBanner("✅ ANSWERS ARE COMPLETE")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n", len(result.Issues)))

	var current steps.ID
	for _, issue := range result.Issues {
		if issue.Step != current {
			current = issue.Step
			sb.WriteString(fmt.Sprintf("\n[%s]\n", current))
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", issue.Message))
	}
	if result.FirstFailingStepIndex != nil {
		sb.WriteString(fmt.Sprintf("\nFirst failing step: #%d", *result.FirstFailingStepIndex+1))
	}

	p.printBox("VALIDATION PROBLEMS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCourses outputs the courses offered at an academic stage.
func (p *Printer) PrintCourses(stage types.AcademicStage, courses []types.Course) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stage: %s\n\n", stage))

	if len(courses) == 0 {
		sb.WriteString("No eligible courses")
	}
	for _, c := range courses {
		sb.WriteString(fmt.Sprintf("#%-4d %s\n", c.ID, c.Name))
	}

	p.printBox("ELIGIBLE COURSES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDashboard outputs the derived dashboard, one box per non-empty section.
func (p *Printer) PrintDashboard(vm dashboard.ViewModel) {
	printed := false

	if len(vm.UnconfirmedGroups) > 0 {
		var sb strings.Builder
		for _, g := range vm.UnconfirmedGroups {
			name := g.ProgrammeName
			if name == "" {
				name = "Programme " + g.Key
			}
			sb.WriteString(fmt.Sprintf("• %s: %d pending (first #%d)\n", name, g.Count, g.ID))
		}
		p.printBox("MATCHES AWAITING CONFIRMATION", strings.TrimSuffix(sb.String(), "\n"))
		printed = true
	}

	if len(vm.NeverContacted) > 0 {
		var sb strings.Builder
		for _, m := range vm.NeverContacted {
			sb.WriteString(fmt.Sprintf("• Match #%d: no contact for %d days\n", m.MatchID, m.DaysSinceMatched))
		}
		p.printBox("NEVER CONTACTED", strings.TrimSuffix(sb.String(), "\n"))
		printed = true
	}

	if len(vm.StaleCommunications) > 0 {
		var sb strings.Builder
		count := min(len(vm.StaleCommunications), maxItemsToShow)
		for _, m := range vm.StaleCommunications[:count] {
			line := fmt.Sprintf("• Match #%d", m.ID)
			if m.LastInteractionDate != nil {
				line += ", last contact " + m.LastInteractionDate.Format("2 January 2006")
			}
			sb.WriteString(line + "\n")
		}
		if len(vm.StaleCommunications) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(vm.StaleCommunications)-maxItemsToShow))
		}
		p.printBox("STALE COMMUNICATION", strings.TrimSuffix(sb.String(), "\n"))
		printed = true
	}

	if len(vm.PendingFeedback) > 0 {
		open := make(map[int]bool, len(vm.OpenFeedback))
		for _, f := range vm.OpenFeedback {
			open[f.ID] = true
		}
		var sb strings.Builder
		for _, f := range vm.PendingFeedback {
			state := "closed"
			if open[f.ID] {
				state = "open"
			}
			sb.WriteString(fmt.Sprintf("• %s (%s)\n", orDefault(f.ProgrammeName, fmt.Sprintf("Participation #%d", f.ID)), state))
		}
		p.printBox("FEEDBACK DUE", strings.TrimSuffix(sb.String(), "\n"))
		printed = true
	}

	if len(vm.MeetingSuggestions) > 0 {
		var sb strings.Builder
		for _, s := range vm.MeetingSuggestions {
			sb.WriteString(fmt.Sprintf("• Match #%d, mentee #%d: %s %s (%s)\n", s.MatchID, s.MenteeID, s.Day, s.Time, s.NextDate))
		}
		p.printBox("SUGGESTED MEETINGS", strings.TrimSuffix(sb.String(), "\n"))
		printed = true
	}

	if !printed {
		p.printBanner("✅ NOTHING NEEDS ATTENTION")
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
