package dashboard

import (
	"time"

	"github.com/jonathan/matching-guru/internal/types"
)

// NeverContactedMatch is an approved match with no logged communication
type NeverContactedMatch struct {
	MatchID          int    `json:"matchId"`
	ProgrammeName    string `json:"programmeName,omitempty"`
	DaysSinceMatched int    `json:"daysSinceMatched"`
}

// MeetingSuggestion proposes a first meeting for a mentor and mentee
type MeetingSuggestion struct {
	MatchID  int    `json:"matchId"`
	MenteeID int    `json:"menteeId"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	NextDate string `json:"nextDate"`
}

// ViewModel is everything the participant dashboard renders
type ViewModel struct {
	UnconfirmedGroups   []UnconfirmedGroup    `json:"unconfirmedGroups"`
	StaleCommunications []types.Match         `json:"staleCommunications"`
	PendingFeedback     []types.Participation `json:"pendingFeedback"`
	OpenFeedback        []types.Participation `json:"openFeedback"`
	NeverContacted      []NeverContactedMatch `json:"neverContacted"`
	MeetingSuggestions  []MeetingSuggestion   `json:"meetingSuggestions"`
	GeneratedAt         time.Time             `json:"generatedAt"`
}

// Build derives the full view model
func Build(data types.DashboardData, now time.Time) ViewModel {
	vm := ViewModel{
		UnconfirmedGroups:   OrderedGroups(GroupUnconfirmed(data.Matches)),
		StaleCommunications: FindStaleCommunications(data.Matches, now),
		PendingFeedback:     FindPendingFeedback(data.Participations),
		OpenFeedback:        FindOpenFeedback(data.Participations, now),
		NeverContacted:      []NeverContactedMatch{},
		MeetingSuggestions:  []MeetingSuggestion{},
		GeneratedAt:         now,
	}

	for _, m := range data.Matches {
		if m.Status != types.MatchApproved {
			continue
		}
		if days, ok := NeverContacted(m.Details, m.CommunicationLogs, now); ok {
			vm.NeverContacted = append(vm.NeverContacted, NeverContactedMatch{
				MatchID:          m.ID,
				ProgrammeName:    m.ProgrammeName,
				DaysSinceMatched: days,
			})
		}
		vm.MeetingSuggestions = append(vm.MeetingSuggestions, suggestMeetings(m, now)...)
	}
	return vm
}

func suggestMeetings(m types.Match, now time.Time) []MeetingSuggestion {
	if m.Mentor == nil || m.Mentor.Availability == nil {
		return nil
	}
	var out []MeetingSuggestion
	for _, mentee := range m.Mentees {
		slot := SharedAvailability(m.Mentor.Availability, mentee.Availability)
		if slot == nil {
			continue
		}
		out = append(out, MeetingSuggestion{
			MatchID:  m.ID,
			MenteeID: mentee.ID,
			Day:      slot.Day,
			Time:     slot.Time,
			NextDate: NextDateForWeekday(slot.Day, now),
		})
	}
	return out
}
