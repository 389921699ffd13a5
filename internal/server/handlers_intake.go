package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/metrics"
	"github.com/jonathan/matching-guru/internal/server/middleware"
	"github.com/jonathan/matching-guru/internal/session"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 64 << 10

// CriteriaResponse is the renderer contract for every supported criterion
type CriteriaResponse struct {
	Criteria                []criteria.Descriptor `json:"criteria"`
	GenderPreferenceOptions []criteria.Option     `json:"genderPreferenceOptions"`
}

// TransitionResponse is returned by navigation and submission. Validation is
// set whenever a validation pass ran.
type TransitionResponse struct {
	Error      string             `json:"error,omitempty"`
	Session    wizard.State       `json:"session"`
	Validation *validation.Result `json:"validation,omitempty"`
}

func (s *Server) handleCriteria(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, CriteriaResponse{
		Criteria:                criteria.All(),
		GenderPreferenceOptions: criteria.GenderPreferenceOptions,
	})
}

// handleCreateSession fetches criteria, courses and profile in parallel and
// opens a session. Any fetch failure aborts the others and no session is created.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateSessionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	boot, err := s.bootstrap(r.Context(), s.callerFor(principal), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.store.Create(principal.Subject, boot)
	s.logger.Info("intake session opened",
		zap.String("session_id", sess.ID),
		zap.Int("programme_year_id", req.ProgrammeYearID),
		zap.Int("criteria", len(boot.Criteria)),
		zap.Bool("has_profile", boot.Profile != nil))
	s.jsonResponse(w, http.StatusCreated, sess.Snapshot())
}

// callerFor wraps a verified principal so its profile is fetched lazily with its own token
func (s *Server) callerFor(principal middleware.Principal) session.Provider {
	return session.NewRequestSession(principal.Subject, principal.Token,
		func(ctx context.Context, rs *session.RequestSession) (*types.Profile, error) {
			return s.client.FetchCurrentProfile(ctx, rs)
		})
}

func (s *Server) bootstrap(ctx context.Context, caller session.Provider, req types.CreateSessionRequest) (wizard.Bootstrap, error) {
	boot := wizard.Bootstrap{
		ProgrammeID:     req.ProgrammeID,
		ProgrammeYearID: req.ProgrammeYearID,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		configured, err := s.client.FetchMatchingCriteria(gctx, caller, req.ProgrammeYearID)
		if err != nil {
			return fmt.Errorf("failed to load matching criteria: %w", err)
		}
		boot.Criteria = configured
		return nil
	})
	g.Go(func() error {
		courses, err := s.client.FetchEligibleCourses(gctx, caller, req.ProgrammeID)
		if err != nil {
			return fmt.Errorf("failed to load courses: %w", err)
		}
		boot.Courses = courses
		return nil
	})
	g.Go(func() error {
		profile, err := caller.CurrentProfile(gctx)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		boot.Profile = profile
		return nil
	})

	if err := g.Wait(); err != nil {
		return wizard.Bootstrap{}, err
	}
	return boot, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleUpdateAnswers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var patch types.AnswersPatch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Update(patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	result, err := sess.Next()
	if err != nil {
		s.transitionFailure(w, r, sess, result, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TransitionResponse{Session: sess.Snapshot(), Validation: &result})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if err := sess.Back(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TransitionResponse{Session: sess.Snapshot()})
}

// handleValidateSession runs a full validation pass without moving the session
func (s *Server) handleValidateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	result := sess.Validate()
	s.jsonResponse(w, http.StatusOK, TransitionResponse{Session: sess.Snapshot(), Validation: &result})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	principal, _ := middleware.GetPrincipal(r)

	participant, result, err := s.store.Submit(r.Context(), sess, s.client.WithTokens(principal))
	if err != nil {
		s.transitionFailure(w, r, sess, result, err)
		return
	}

	s.logger.Info("participant created",
		zap.String("session_id", sess.ID),
		zap.Int("participant_id", participant.ID))
	s.jsonResponse(w, http.StatusCreated, TransitionResponse{Session: sess.Snapshot(), Validation: &result})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.store.Delete(r.PathValue("id"), principal.Subject); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transitionFailure answers a failed next or submit. Validation failures
// return the moved session alongside the result; anything else goes
// through the shared error mapping.
func (s *Server) transitionFailure(w http.ResponseWriter, r *http.Request, sess *wizard.Session, result validation.Result, err error) {
	if !wizard.IsValidationError(err) {
		s.writeError(w, r, err)
		return
	}

	recorded := make(map[string]bool)
	for _, issue := range result.Issues {
		if step := string(issue.Step); !recorded[step] {
			recorded[step] = true
			metrics.ValidationFailures.WithLabelValues(step).Inc()
		}
	}

	s.jsonResponse(w, http.StatusUnprocessableEntity, TransitionResponse{
		Error:      "validation failed",
		Session:    sess.Snapshot(),
		Validation: &result,
	})
}

// lookupSession resolves the {id} path value for the calling subject and
// writes the error response itself when it cannot.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	sess, err := s.store.Get(r.PathValue("id"), principal.Subject)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// decodeJSON reads a size-limited JSON body into dst and runs its validate tags
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is required"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return s.validate.Struct(dst)
}
