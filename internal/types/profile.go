package types

// Profile is the current user's stored profile as returned by the upstream API.
// Any non-empty field here is treated as already known during intake.
type Profile struct {
	ID                int    `json:"id"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email,omitempty"`
	CourseID          *int   `json:"courseId,omitempty"`
	PersonalityType   string `json:"personalityType,omitempty"`
	LivingArrangement string `json:"livingArrangement,omitempty"`
	Gender            string `json:"gender,omitempty"`
	AgeGroup          string `json:"ageGroup,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
}

// HasCourse reports whether the profile already records a course
func (p *Profile) HasCourse() bool {
	return p != nil && p.CourseID != nil
}
