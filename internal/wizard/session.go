package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/eligibility"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
)

// Submitter creates the participant upstream
type Submitter interface {
	CreateParticipant(ctx context.Context, req types.ParticipantCreateRequest) (*types.Participant, error)
}

// Bootstrap is the upstream data a session is opened with
type Bootstrap struct {
	ProgrammeID     int
	ProgrammeYearID int
	Profile         *types.Profile
	Criteria        []types.ProgrammeYearCriterion
	Courses         []types.Course
}

// Session is one open intake form. All methods are safe for concurrent use.
type Session struct {
	ID    string
	Owner string

	mu          sync.Mutex
	boot        Bootstrap
	answers     types.WizardAnswers
	visible     []steps.ID
	current     int
	submitted   bool
	participant *types.Participant
	createdAt   time.Time
	lastActive  time.Time
}

// NewSession opens a session on the first step with default answers
func NewSession(id, owner string, boot Bootstrap, now time.Time) *Session {
	answers := types.DefaultAnswers(boot.Profile)
	return &Session{
		ID:         id,
		Owner:      owner,
		boot:       boot,
		answers:    answers,
		visible:    steps.ComputeVisibleSteps(answers.Role, answers.AcademicStage),
		createdAt:  now,
		lastActive: now,
	}
}

// Answers returns a copy of the current answers
func (s *Session) Answers() types.WizardAnswers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Steps returns the currently visible steps
func (s *Session) Steps() []steps.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]steps.ID(nil), s.visible...)
}

// Current returns the current step
func (s *Session) Current() steps.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[s.current]
}

// CurrentIndex returns the position of the current step in Steps()
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Progress returns (CurrentIndex()+1) / len(Steps())
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) progress() float64 {
	return float64(s.current+1) / float64(len(s.visible))
}

// Submitted reports whether the participant was created
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Update merges patch into the answers. A role or stage change recomputes
// the visible steps; the current step is kept if it is still visible,
// otherwise the session moves to the nearest earlier step that is.
func (s *Session) Update(patch types.AnswersPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return &TransitionError{Step: s.visible[s.current], Action: "update", Message: "session already submitted"}
	}

	s.answers.Apply(patch)
	s.recomputeSteps()
	return nil
}

func (s *Session) recomputeSteps() {
	next := steps.ComputeVisibleSteps(s.answers.Role, s.answers.AcademicStage)
	for i := s.current; i >= 0; i-- {
		if idx := steps.IndexOf(next, s.visible[i]); idx >= 0 {
			s.current = idx
			break
		}
	}
	s.visible = next
}

// Next validates the current step and advances. From the criteria step the
// whole form is validated; on failure the session jumps to the first
// failing step. Validation failures are returned as *validation.Error.
func (s *Session) Next() (validation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.visible[s.current]
	if s.submitted {
		return validation.Result{}, &TransitionError{Step: step, Action: "advance", Message: "session already submitted"}
	}
	if step == steps.Review {
		return validation.Result{}, &TransitionError{Step: step, Action: "advance", Message: "review is the last step; submit instead"}
	}

	var result validation.Result
	if step == steps.Criteria {
		result = s.validateAll()
		if !result.Valid() {
			s.jumpTo(result)
			return result, result.AsError()
		}
	} else {
		result = validation.ValidateStep(step, s.answers, s.boot.Criteria, s.boot.Profile, s.boot.Courses)
		if !result.Valid() {
			return result, result.AsError()
		}
	}

	s.current++
	return result, nil
}

// Back moves to the previous visible step
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return &TransitionError{Step: s.visible[s.current], Action: "go back", Message: "session already submitted"}
	}
	if s.current == 0 {
		return &TransitionError{Step: s.visible[s.current], Action: "go back", Message: "already on the first step"}
	}
	s.current--
	return nil
}

// Submit validates every step, maps the answers and creates the participant.
// An upstream failure leaves the session on review with answers intact.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (*types.Participant, validation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.visible[s.current]
	if s.submitted {
		return s.participant, validation.Result{}, &TransitionError{Step: step, Action: "submit", Message: "session already submitted"}
	}
	if step != steps.Review {
		return nil, validation.Result{}, &TransitionError{Step: step, Action: "submit", Message: "only the review step can submit"}
	}

	result := s.validateAll()
	if !result.Valid() {
		s.jumpTo(result)
		return nil, result, result.AsError()
	}

	req := ParticipantRequest(s.boot.ProgrammeYearID, s.answers, s.boot.Profile, s.boot.Criteria)
	participant, err := submitter.CreateParticipant(ctx, req)
	if err != nil {
		return nil, result, &SubmitError{Cause: err}
	}

	s.submitted = true
	s.participant = participant
	return participant, result, nil
}

// Validate runs the full validation without changing step
func (s *Session) Validate() validation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateAll()
}

func (s *Session) validateAll() validation.Result {
	return validation.Validate(s.answers, s.boot.Criteria, s.boot.Profile, s.boot.Courses)
}

func (s *Session) jumpTo(result validation.Result) {
	if result.FirstFailingStepIndex != nil {
		s.current = *result.FirstFailingStepIndex
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// VisibleCriterion is a criterion the participant must answer, with the descriptor used to render it
type VisibleCriterion struct {
	criteria.Descriptor
	Weight    int  `json:"weight"`
	Supported bool `json:"supported"`
}

// State is the JSON snapshot of a session
type State struct {
	ID               string              `json:"id"`
	ProgrammeID      int                 `json:"programmeId"`
	ProgrammeYearID  int                 `json:"programmeYearId"`
	Steps            []steps.ID          `json:"steps"`
	CurrentStep      steps.ID            `json:"currentStep"`
	CurrentStepIndex int                 `json:"currentStepIndex"`
	Progress         float64             `json:"progress"`
	Answers          types.WizardAnswers `json:"answers"`
	VisibleCriteria  []VisibleCriterion  `json:"visibleCriteria"`
	EligibleCourses  []types.Course      `json:"eligibleCourses"`
	GenderPreference []criteria.Option   `json:"genderPreferenceOptions"`
	Submitted        bool                `json:"submitted"`
	Participant      *types.Participant  `json:"participant,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Snapshot returns the session state for rendering
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := eligibility.VisibleCriteria(s.boot.Criteria, s.boot.Profile)
	vc := make([]VisibleCriterion, 0, len(wanted))
	for _, t := range wanted {
		d, ok := criteria.Lookup(t)
		if !ok {
			d = criteria.Descriptor{Type: t, Label: string(t)}
		}
		vc = append(vc, VisibleCriterion{Descriptor: d, Weight: types.WeightFor(s.boot.Criteria, t), Supported: ok})
	}

	return State{
		ID:               s.ID,
		ProgrammeID:      s.boot.ProgrammeID,
		ProgrammeYearID:  s.boot.ProgrammeYearID,
		Steps:            append([]steps.ID(nil), s.visible...),
		CurrentStep:      s.visible[s.current],
		CurrentStepIndex: s.current,
		Progress:         s.progress(),
		Answers:          s.answers.Clone(),
		VisibleCriteria:  vc,
		EligibleCourses:  eligibility.FilterCoursesByStage(s.boot.Courses, s.answers.AcademicStage),
		GenderPreference: criteria.GenderPreferenceOptions,
		Submitted:        s.submitted,
		Participant:      s.participant,
		CreatedAt:        s.createdAt,
	}
}

// IsValidationError reports whether err came from failed validation
func IsValidationError(err error) bool {
	var vErr *validation.Error
	return errors.As(err, &vErr)
}
