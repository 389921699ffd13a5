// Package dashboard derives the participant dashboard view from fetched
// match and participation records. Every function here is pure.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/matching-guru/internal/types"
)

// StaleAfter is how long an approved match may go without interaction before it is flagged
const StaleAfter = 14 * 24 * time.Hour

// UnconfirmedGroup summarises the pending matches of one programme year.
// The embedded Match is the first pending match seen for the key.
type UnconfirmedGroup struct {
	types.Match
	Key   string `json:"key"`
	Count int    `json:"count"`
	// Order is the position at which the key was first seen.
	Order int `json:"-"`
}

// GroupKey builds the "{programmeId}-{programmeYearId}" key
func GroupKey(programmeID, programmeYearID int) string {
	return fmt.Sprintf("%d-%d", programmeID, programmeYearID)
}

// GroupUnconfirmed groups PENDING matches by programme and programme year
func GroupUnconfirmed(matches []types.Match) map[string]UnconfirmedGroup {
	groups := make(map[string]UnconfirmedGroup)
	for _, m := range matches {
		if m.Status != types.MatchPending {
			continue
		}
		key := GroupKey(m.ProgrammeID, m.ProgrammeYearID)
		g, ok := groups[key]
		if !ok {
			g = UnconfirmedGroup{Match: m, Key: key, Order: len(groups)}
		}
		g.Count++
		groups[key] = g
	}
	return groups
}

// OrderedGroups lists groups in first-seen order
func OrderedGroups(groups map[string]UnconfirmedGroup) []UnconfirmedGroup {
	out := make([]UnconfirmedGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// FindStaleCommunications returns APPROVED matches whose last interaction is
// more than StaleAfter ago. Matches that never had an interaction are not stale.
func FindStaleCommunications(matches []types.Match, now time.Time) []types.Match {
	out := []types.Match{}
	for _, m := range matches {
		if m.Status != types.MatchApproved || m.LastInteractionDate == nil {
			continue
		}
		if now.Sub(*m.LastInteractionDate) > StaleAfter {
			out = append(out, m)
		}
	}
	return out
}

// NeedsFeedback is the loose check used for badges: feedback not yet
// submitted and a survey with a close date exists.
func NeedsFeedback(p types.Participation) bool {
	return !p.FeedbackSubmitted && p.SurveyURL != "" && p.SurveyCloseDate != nil
}

// FeedbackWindowOpen is the windowed check used to enable the feedback
// button. The open bound only applies when it is known.
func FeedbackWindowOpen(p types.Participation, now time.Time) bool {
	if !NeedsFeedback(p) {
		return false
	}
	if p.SurveyOpenDate != nil && now.Before(*p.SurveyOpenDate) {
		return false
	}
	return !now.After(*p.SurveyCloseDate)
}

// FindPendingFeedback returns active participations that pass NeedsFeedback
func FindPendingFeedback(participations []types.Participation) []types.Participation {
	out := []types.Participation{}
	for _, p := range participations {
		if p.Active && NeedsFeedback(p) {
			out = append(out, p)
		}
	}
	return out
}

// FindOpenFeedback returns active participations whose survey window is open at now
func FindOpenFeedback(participations []types.Participation, now time.Time) []types.Participation {
	out := []types.Participation{}
	for _, p := range participations {
		if p.Active && FeedbackWindowOpen(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// NeverContacted reports how many whole days have passed since the match was
// last updated when no communication has been logged. ok is false when logs
// exist or the match details are missing.
func NeverContacted(details *types.MatchDetails, logs []types.CommunicationLog, now time.Time) (days int, ok bool) {
	if len(logs) > 0 || details == nil || details.UpdatedAt.IsZero() {
		return 0, false
	}
	elapsed := now.Sub(details.UpdatedAt)
	if elapsed < 0 {
		return 0, true
	}
	return int(elapsed / (24 * time.Hour)), true
}
