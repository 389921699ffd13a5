// Package session supplies the caller's bearer credential and profile to the intake components.
package session

import (
	"context"
	"sync"

	"github.com/jonathan/matching-guru/internal/types"
)

// Provider is the authenticated caller as seen by the intake components
type Provider interface {
	BearerToken() string
	CurrentProfile(ctx context.Context) (*types.Profile, error)
}

// RequestSession is the provider for one inbound HTTP request. The profile is
// fetched at most once.
type RequestSession struct {
	subject string
	token   string
	fetch   func(ctx context.Context) (*types.Profile, error)

	once    sync.Once
	profile *types.Profile
	err     error
}

// NewRequestSession wraps a verified bearer token. fetch is called lazily
// with the session itself as the credential source.
func NewRequestSession(subject, token string, fetch func(ctx context.Context, s *RequestSession) (*types.Profile, error)) *RequestSession {
	s := &RequestSession{subject: subject, token: token}
	s.fetch = func(ctx context.Context) (*types.Profile, error) {
		if fetch == nil {
			return nil, nil
		}
		return fetch(ctx, s)
	}
	return s
}

// Subject returns the token subject that owns this caller's sessions
func (s *RequestSession) Subject() string {
	return s.subject
}

// BearerToken returns the raw inbound token, forwarded upstream as-is
func (s *RequestSession) BearerToken() string {
	return s.token
}

// CurrentProfile returns the caller's profile, or nil when none exists.
// A failed fetch is remembered for the life of the request.
func (s *RequestSession) CurrentProfile(ctx context.Context) (*types.Profile, error) {
	s.once.Do(func() {
		s.profile, s.err = s.fetch(ctx)
	})
	return s.profile, s.err
}

// Static is a fixed provider for the CLI and tests
type Static struct {
	Token   string
	Profile *types.Profile
}

// BearerToken returns the configured token
func (s Static) BearerToken() string {
	return s.Token
}

// CurrentProfile returns the configured profile
func (s Static) CurrentProfile(context.Context) (*types.Profile, error) {
	return s.Profile, nil
}
