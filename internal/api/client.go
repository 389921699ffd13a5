// Package api is a typed client for the Matching Guru REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/matching-guru/internal/metrics"
	"github.com/jonathan/matching-guru/internal/schemas"
	"github.com/jonathan/matching-guru/internal/types"
	schemafiles "github.com/jonathan/matching-guru/schemas"
	"go.uber.org/zap"
)

// DefaultTimeout is the default upstream request timeout.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer credential attached to every request
type TokenSource interface {
	BearerToken() string
}

// Error is a failed upstream call. Message carries the server's own text when it sent one.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("api error for %s %s: %s: %v", e.Method, e.Path, e.Message, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error for %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error for %s %s: %s", e.Method, e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrNotFound is matched by errors.Is for upstream 404 responses
var ErrNotFound = errors.New("not found")

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the upstream REST API
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for baseURL. opts may be nil.
func NewClient(baseURL string, opts *Options) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Method: "-", Path: baseURL, Message: "invalid base URL", Cause: err}
	}
	if opts == nil {
		opts = &Options{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}, nil
}

// FetchMatchingCriteria returns the weighted criteria of a programme year
func (c *Client) FetchMatchingCriteria(ctx context.Context, tokens TokenSource, programmeYearID int) ([]types.ProgrammeYearCriterion, error) {
	var out []types.ProgrammeYearCriterion
	path := fmt.Sprintf("/programme-years/%d/matching-criteria", programmeYearID)
	if err := c.do(ctx, tokens, "matching_criteria", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchEligibleCourses returns every course offered by a programme
func (c *Client) FetchEligibleCourses(ctx context.Context, tokens TokenSource, programmeID int) ([]types.Course, error) {
	var out []types.Course
	path := fmt.Sprintf("/programmes/%d/courses", programmeID)
	if err := c.do(ctx, tokens, "courses", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateParticipant posts a participant. The body is checked against the
// participant schema before anything is sent.
func (c *Client) CreateParticipant(ctx context.Context, tokens TokenSource, req types.ParticipantCreateRequest) (*types.Participant, error) {
	if err := schemas.ValidateDocument(schemafiles.ParticipantCreate, req); err != nil {
		return nil, fmt.Errorf("participant request rejected before sending: %w", err)
	}

	var out types.Participant
	if err := c.do(ctx, tokens, "create_participant", http.MethodPost, "/participants", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchDashboard returns the current user's matches and participations
func (c *Client) FetchDashboard(ctx context.Context, tokens TokenSource) (*types.DashboardData, error) {
	var out types.DashboardData
	if err := c.do(ctx, tokens, "dashboard", http.MethodGet, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchCurrentProfile returns the current user's profile, or nil when the user has none yet
func (c *Client) FetchCurrentProfile(ctx context.Context, tokens TokenSource) (*types.Profile, error) {
	var out types.Profile
	err := c.do(ctx, tokens, "current_profile", http.MethodGet, "/users/me", nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, tokens TokenSource, endpoint, method, path string, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.UpstreamDuration.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
		c.logger.Debug("upstream request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}()

	var reader io.Reader
	if body != nil {
		data, mErr := json.Marshal(body)
		if mErr != nil {
			return &Error{Method: method, Path: path, Message: "failed to encode request body", Cause: mErr}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokens != nil {
		if token := tokens.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: serverMessage(data, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// serverMessage extracts the text the server meant for the user: a JSON
// "message" field, then "error", then the raw body.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message interface{} `json:"message"`
		Error   interface{} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := textOf(payload.Message); msg != "" {
			return msg
		}
		if msg := textOf(payload.Error); msg != "" {
			return msg
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}
	return http.StatusText(status)
}

// textOf flattens string or string-array messages (some validators send a list)
func textOf(v interface{}) string {
	switch m := v.(type) {
	case string:
		return strings.TrimSpace(m)
	case []interface{}:
		parts := make([]string, 0, len(m))
		for _, item := range m {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// Authorized binds a client to one caller's credential
type Authorized struct {
	client *Client
	tokens TokenSource
}

// WithTokens returns a view of c that authenticates as tokens
func (c *Client) WithTokens(tokens TokenSource) *Authorized {
	return &Authorized{client: c, tokens: tokens}
}

// CreateParticipant posts a participant as the bound caller
func (a *Authorized) CreateParticipant(ctx context.Context, req types.ParticipantCreateRequest) (*types.Participant, error) {
	return a.client.CreateParticipant(ctx, a.tokens, req)
}
