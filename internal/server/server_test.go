package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/matching-guru/internal/config"
	"github.com/jonathan/matching-guru/internal/criteria"
	"github.com/jonathan/matching-guru/internal/dashboard"
	"github.com/jonathan/matching-guru/internal/session"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/wizard"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

// fakeUpstream stands in for the Matching Guru REST API
type fakeUpstream struct {
	mu sync.Mutex

	criteriaStatus    int
	criteriaBody      string
	profileStatus     int
	profileBody       string
	participantStatus int
	participantBody   string
	dashboardBody     string

	participantRequests []map[string]any
	authHeaders         []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		criteriaStatus:    http.StatusOK,
		criteriaBody:      `[{"id":1,"criterionType":"FIELD","weight":40},{"id":2,"criterionType":"AVAILABILITY","weight":30},{"id":3,"criterionType":"SKILLS","weight":30}]`,
		profileStatus:     http.StatusNotFound,
		profileBody:       `{"message":"Profile not found"}`,
		participantStatus: http.StatusCreated,
		participantBody:   `{"id":99,"programmeYearId":7,"role":"MENTEE","status":"PENDING"}`,
		dashboardBody:     `{"matches":[],"participations":[]}`,
	}
}

// configure mutates the fake under its lock
func (f *fakeUpstream) configure(fn func(*fakeUpstream)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeUpstream) participants() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.participantRequests...)
}

func (f *fakeUpstream) authorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))

	reply := func(status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/programme-years/7/matching-criteria":
		reply(f.criteriaStatus, f.criteriaBody)
	case r.Method == http.MethodGet && r.URL.Path == "/programmes/3/courses":
		reply(http.StatusOK, `[{"id":1,"name":"BSc Computing"},{"id":2,"name":"MSc Data Science"}]`)
	case r.Method == http.MethodGet && r.URL.Path == "/users/me":
		reply(f.profileStatus, f.profileBody)
	case r.Method == http.MethodPost && r.URL.Path == "/participants":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.participantRequests = append(f.participantRequests, body)
		reply(f.participantStatus, f.participantBody)
	case r.Method == http.MethodGet && r.URL.Path == "/dashboard":
		reply(http.StatusOK, f.dashboardBody)
	default:
		reply(http.StatusNotFound, `{"message":"no route"}`)
	}
}

func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second, AllowedOrigin: "*"},
		Upstream: config.UpstreamConfig{BaseURL: upstreamURL, Timeout: 2 * time.Second},
		Auth:     config.AuthConfig{JWTSecret: testSecret},
		Session:  config.SessionConfig{TTL: time.Hour},
		Log:      config.LogConfig{Level: "debug", Format: "console"},
	}
}

type testServer struct {
	*Server
	upstream *fakeUpstream
	token    string
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()

	upstream := newFakeUpstream()
	backend := httptest.NewServer(upstream)
	t.Cleanup(backend.Close)

	cfg := testConfig(backend.URL)
	for _, fn := range tweak {
		fn(cfg)
	}

	s, err := New(cfg, Deps{
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	token, err := s.jwtService.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	return &testServer{Server: s, upstream: upstream, token: token}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) createSession(t *testing.T) wizard.State {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/intake/sessions", ts.token, map[string]int{"programmeId": 3, "programmeYearId": 7})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var state wizard.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var completeCriteria = map[string]any{
	"courseId": 1,
	"availability": map[string]any{
		"meetingFrequency": "weekly",
		"availableDays":    []string{"monday", "thursday"},
		"timeRange":        "evening",
	},
	"skills": []string{"RESEARCH"},
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "guru_intake_sessions_created_total")
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/criteria", "/dashboard", "/intake/sessions/abc"} {
		w := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := ts.do(t, http.MethodGet, "/criteria", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/intake/sessions", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCriteriaEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/criteria", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[CriteriaResponse](t, w)
	assert.Len(t, body.Criteria, len(criteria.All()))
	assert.Len(t, body.GenderPreferenceOptions, 2)
}

func TestIntakeFlow(t *testing.T) {
	ts := newTestServer(t)

	state := ts.createSession(t)
	assert.Equal(t, []steps.ID{steps.RoleAndStage, steps.Criteria, steps.Review}, state.Steps)
	assert.Equal(t, steps.RoleAndStage, state.CurrentStep)
	require.Len(t, state.VisibleCriteria, 3)
	assert.Equal(t, 40, state.VisibleCriteria[0].Weight)
	// First-year undergraduates only see bachelor-level courses.
	require.Len(t, state.EligibleCourses, 1)
	assert.Equal(t, "BSc Computing", state.EligibleCourses[0].Name)

	base := "/intake/sessions/" + state.ID

	w := ts.do(t, http.MethodPost, base+"/next", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, steps.Criteria, decode[TransitionResponse](t, w).Session.CurrentStep)

	// Criteria step validates the whole form.
	w = ts.do(t, http.MethodPost, base+"/next", ts.token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	failed := decode[TransitionResponse](t, w)
	require.NotNil(t, failed.Validation)
	assert.Contains(t, failed.Validation.Errors, criteria.MsgCourseRequired)
	assert.Contains(t, failed.Validation.Errors, criteria.MsgSkillsRequired)
	assert.Len(t, failed.Validation.Errors, 5)
	require.NotNil(t, failed.Validation.FirstFailingStepIndex)
	assert.Equal(t, 1, *failed.Validation.FirstFailingStepIndex)
	assert.Equal(t, steps.Criteria, failed.Session.CurrentStep)

	w = ts.do(t, http.MethodPatch, base+"/answers", ts.token, completeCriteria)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, base+"/next", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, steps.Review, decode[TransitionResponse](t, w).Session.CurrentStep)

	w = ts.do(t, http.MethodPost, base+"/submit", ts.token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	done := decode[TransitionResponse](t, w)
	assert.True(t, done.Session.Submitted)
	require.NotNil(t, done.Session.Participant)
	assert.Equal(t, 99, done.Session.Participant.ID)

	sent := ts.upstream.participants()
	require.Len(t, sent, 1)
	body := sent[0]
	assert.EqualValues(t, 7, body["programmeYearId"])
	assert.Equal(t, "MENTEE", body["role"])
	assert.EqualValues(t, 1, body["courseId"])
	assert.Equal(t, []any{"MONDAY", "THURSDAY"}, body["availableDays"])
	assert.Equal(t, "EVENING", body["timeRange"])
	assert.NotContains(t, body, "menteesNumber")
	assert.NotContains(t, body, "hadPlacement")

	for _, h := range ts.upstream.authorizations() {
		assert.Equal(t, "Bearer "+ts.token, h)
	}

	// Submitted sessions are gone along with their answers.
	w = ts.do(t, http.MethodGet, base, ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPatch, base+"/answers", ts.token, map[string]any{"skills": []string{"WRITING"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPost, base+"/submit", ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, ts.upstream.participants(), 1)
}

func TestCreateSession_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty", nil},
		{"malformed", `{"programmeId":`},
		{"missing programme year", map[string]int{"programmeId": 3}},
		{"unknown field", map[string]int{"programmeId": 3, "programmeYearId": 7, "extra": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/intake/sessions", ts.token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, 0, ts.store.Len())
}

func TestCreateSession_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.upstream.configure(func(f *fakeUpstream) {
		f.criteriaStatus = http.StatusNotFound
		f.criteriaBody = `{"message":"Programme year not found"}`
	})

	w := ts.do(t, http.MethodPost, "/intake/sessions", ts.token, map[string]int{"programmeId": 3, "programmeYearId": 7})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Programme year not found", decode[ErrorBody](t, w).Error)
	assert.Equal(t, 0, ts.store.Len())
}

func TestCreateSession_ProfilePrefill(t *testing.T) {
	ts := newTestServer(t)
	ts.upstream.configure(func(f *fakeUpstream) {
		f.profileStatus = http.StatusOK
		f.profileBody = `{"id":5,"courseId":1,"gender":"FEMALE"}`
		f.criteriaBody = `[{"id":1,"criterionType":"FIELD","weight":50},{"id":2,"criterionType":"GENDER","weight":50}]`
	})

	state := ts.createSession(t)
	assert.Empty(t, state.VisibleCriteria, "profile answers both criteria")
	assert.Equal(t, "FEMALE", state.Answers.Gender)
}

func TestBootstrap_UsesCallerCredentialsAndProfile(t *testing.T) {
	ts := newTestServer(t)
	caller := session.Static{Token: "static-token", Profile: &types.Profile{ID: 4, Gender: "FEMALE"}}

	boot, err := ts.bootstrap(context.Background(), caller, types.CreateSessionRequest{ProgrammeID: 3, ProgrammeYearID: 7})
	require.NoError(t, err)

	assert.Equal(t, 7, boot.ProgrammeYearID)
	assert.Len(t, boot.Criteria, 3)
	assert.Len(t, boot.Courses, 2)
	assert.Same(t, caller.Profile, boot.Profile)

	auth := ts.upstream.authorizations()
	require.Len(t, auth, 2, "the profile comes from the caller, not /users/me")
	for _, h := range auth {
		assert.Equal(t, "Bearer static-token", h)
	}
}

func TestSession_OwnedBySubject(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	other, err := ts.jwtService.GenerateToken("user-2", time.Hour)
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/intake/sessions/"+state.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/intake/sessions/"+state.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/intake/sessions/"+state.ID, ts.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSession_Delete(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	w := ts.do(t, http.MethodDelete, "/intake/sessions/"+state.ID, ts.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/intake/sessions/"+state.ID, ts.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_BackFromFirstStep(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	w := ts.do(t, http.MethodPost, "/intake/sessions/"+state.ID+"/back", ts.token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSession_ValidateDoesNotMove(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	w := ts.do(t, http.MethodPost, "/intake/sessions/"+state.ID+"/validate", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[TransitionResponse](t, w)
	require.NotNil(t, resp.Validation)
	assert.NotEmpty(t, resp.Validation.Errors)
	assert.Equal(t, steps.RoleAndStage, resp.Session.CurrentStep)
}

func TestSubmit_UpstreamFailureKeepsReview(t *testing.T) {
	ts := newTestServer(t)
	ts.upstream.configure(func(f *fakeUpstream) {
		f.participantStatus = http.StatusConflict
		f.participantBody = `{"error":"You are already registered for this programme year"}`
	})

	state := ts.createSession(t)
	base := "/intake/sessions/" + state.ID
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPatch, base+"/answers", ts.token, completeCriteria).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/next", ts.token, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/next", ts.token, nil).Code)

	w := ts.do(t, http.MethodPost, base+"/submit", ts.token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "You are already registered for this programme year", decode[ErrorBody](t, w).Error)

	w = ts.do(t, http.MethodGet, base, ts.token, nil)
	after := decode[wizard.State](t, w)
	assert.Equal(t, steps.Review, after.CurrentStep)
	assert.False(t, after.Submitted)
	assert.EqualValues(t, 1, *after.Answers.CourseID)
}

func TestSubmit_NotOnReview(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	w := ts.do(t, http.MethodPost, "/intake/sessions/"+state.ID+"/submit", ts.token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, ts.upstream.participants())
}

func TestUpdateAnswers_RejectsBadValues(t *testing.T) {
	ts := newTestServer(t)
	state := ts.createSession(t)

	w := ts.do(t, http.MethodPatch, "/intake/sessions/"+state.ID+"/answers", ts.token, map[string]any{"role": "ADMIN"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[ErrorBody](t, w)
	assert.Equal(t, "invalid request body", body.Error)
}

func TestDashboardEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.upstream.configure(func(f *fakeUpstream) {
		f.dashboardBody = dashboardFixture
	})

	w := ts.do(t, http.MethodGet, "/dashboard", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	vm := decode[dashboard.ViewModel](t, w)
	require.Len(t, vm.UnconfirmedGroups, 1)
	assert.Equal(t, "3-7", vm.UnconfirmedGroups[0].Key)
	require.Len(t, vm.NeverContacted, 1)
	assert.Equal(t, 14, vm.NeverContacted[0].DaysSinceMatched)
	require.Len(t, vm.MeetingSuggestions, 1)
	assert.Equal(t, dashboard.MeetingSuggestion{MatchID: 2, MenteeID: 5, Day: "Monday", Time: "evening", NextDate: "17 June"}, vm.MeetingSuggestions[0])
	assert.True(t, vm.GeneratedAt.Equal(fixedNow))
}

const dashboardFixture = `{
		"matches": [
			{"id": 1, "programmeId": 3, "programmeYearId": 7, "programmeName": "Peer Mentoring", "status": "PENDING"},
			{
				"id": 2, "programmeId": 3, "programmeYearId": 7, "status": "APPROVED",
				"matchDetails": {"createdAt": "2024-05-29T12:00:00Z", "updatedAt": "2024-05-29T12:00:00Z"},
				"mentor": {"id": 4, "name": "Ada", "role": "MENTOR", "availability": {"availableDays": ["MONDAY"], "timeRange": "EVENING"}},
				"mentees": [{"id": 5, "name": "Bo", "role": "MENTEE", "availability": {"availableDays": ["monday"], "timeRange": "ANYTIME"}}]
			}
		],
		"participations": []
	}`

func TestRateLimitMiddleware(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Hour}
	})

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodGet, "/criteria", ts.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(t, http.MethodGet, "/criteria", ts.token, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are never limited.
	w = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_RequiresSecret(t *testing.T) {
	cfg := testConfig("http://localhost:3001/api")
	cfg.Auth.JWTSecret = "short"

	_, err := New(cfg, Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT")
}
