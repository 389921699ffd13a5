package types

// ParticipantCreateRequest is the body posted upstream when an intake session is submitted
type ParticipantCreateRequest struct {
	ProgrammeYearID int    `json:"programmeYearId"`
	Role            string `json:"role"`
	MenteesNumber   *int   `json:"menteesNumber,omitempty"`
	AcademicStage   string `json:"academicStage"`
	CourseID        *int   `json:"courseId,omitempty"`

	HadPlacement         *bool  `json:"hadPlacement,omitempty"`
	PlacementDescription string `json:"placementDescription,omitempty"`
	PlacementInterest    *bool  `json:"placementInterest,omitempty"`

	MeetingFrequency  string   `json:"meetingFrequency,omitempty"`
	AvailableDays     []string `json:"availableDays,omitempty"`
	TimeRange         string   `json:"timeRange,omitempty"`
	PersonalityType   string   `json:"personalityType,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	AgeGroup          string   `json:"ageGroup,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	LivingArrangement string   `json:"livingArrangement,omitempty"`
	Nationality       string   `json:"nationality,omitempty"`
	GenderPreference  string   `json:"genderPreference,omitempty"`
}

// Participant is the upstream response for a created participant
type Participant struct {
	ID              int    `json:"id"`
	ProgrammeYearID int    `json:"programmeYearId"`
	Role            Role   `json:"role"`
	Status          string `json:"status,omitempty"`
}

// CreateSessionRequest opens a new intake wizard session
type CreateSessionRequest struct {
	ProgrammeID     int `json:"programmeId" validate:"required,gt=0"`
	ProgrammeYearID int `json:"programmeYearId" validate:"required,gt=0"`
}
