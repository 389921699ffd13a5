package types

import "time"

// MatchStatus is the coordinator-facing state of a match
type MatchStatus string

// Match statuses
const (
	MatchPending  MatchStatus = "PENDING"
	MatchApproved MatchStatus = "APPROVED"
	MatchRejected MatchStatus = "REJECTED"
	MatchEnded    MatchStatus = "ENDED"
)

// ParticipantSummary is the slice of a participant shown on match cards
type ParticipantSummary struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	Role         Role          `json:"role"`
	Availability *Availability `json:"availability,omitempty"`
}

// MatchDetails carries the timestamps of the match record itself
type MatchDetails struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommunicationLog is a logged interaction between matched participants
type CommunicationLog struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is a pairing between a mentor and one or more mentees
type Match struct {
	ID                  int                  `json:"id"`
	ProgrammeID         int                  `json:"programmeId"`
	ProgrammeYearID     int                  `json:"programmeYearId"`
	ProgrammeName       string               `json:"programmeName,omitempty"`
	ProgrammeYearName   string               `json:"programmeYearName,omitempty"`
	Status              MatchStatus          `json:"status"`
	LastInteractionDate *time.Time           `json:"lastInteractionDate,omitempty"`
	Mentor              *ParticipantSummary  `json:"mentor,omitempty"`
	Mentees             []ParticipantSummary `json:"mentees,omitempty"`
	Details             *MatchDetails        `json:"matchDetails,omitempty"`
	CommunicationLogs   []CommunicationLog   `json:"communicationLogs,omitempty"`
}

// Participation is the current user's enrollment in a programme year
type Participation struct {
	ID                int        `json:"id"`
	ProgrammeID       int        `json:"programmeId"`
	ProgrammeYearID   int        `json:"programmeYearId"`
	ProgrammeName     string     `json:"programmeName,omitempty"`
	Role              Role       `json:"role"`
	Active            bool       `json:"active"`
	FeedbackSubmitted bool       `json:"feedbackSubmitted"`
	SurveyURL         string     `json:"surveyUrl,omitempty"`
	SurveyOpenDate    *time.Time `json:"surveyOpenDate,omitempty"`
	SurveyCloseDate   *time.Time `json:"surveyCloseDate,omitempty"`
}

// DashboardData is the raw dashboard payload returned upstream
type DashboardData struct {
	Matches        []Match         `json:"matches"`
	Participations []Participation `json:"participations"`
}
