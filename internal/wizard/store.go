package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/matching-guru/internal/metrics"
	"github.com/jonathan/matching-guru/internal/types"
	"github.com/jonathan/matching-guru/internal/validation"
	"go.uber.org/zap"
)

// Store keeps open intake sessions in memory. Sessions idle for longer than
// the TTL are dropped by a background cleanup loop; nothing is persisted.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	ttl           time.Duration
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
	logger        *zap.Logger
	now           func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock overrides the store's time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store. A cleanupInterval of zero disables the
// background loop; expired sessions are then only rejected on access.
func NewStore(ttl, cleanupInterval time.Duration, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cleanupInterval > 0 {
		s.cleanupTicker = time.NewTicker(cleanupInterval)
		s.cleanupStop = make(chan struct{})
		go s.cleanup()
	}
	return s
}

// Create opens a new session for owner
func (s *Store) Create(owner string, boot Bootstrap) *Session {
	session := NewSession(uuid.New().String(), owner, boot, s.now())

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Inc()

	s.logger.Debug("intake session created",
		zap.String("session_id", session.ID),
		zap.Int("programme_year_id", boot.ProgrammeYearID))
	return session
}

// Get returns the session if it exists, has not expired and belongs to owner.
// A successful Get counts as activity.
func (s *Store) Get(id, owner string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || session.Owner != owner {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(session, now) {
		s.remove(id, abandonExpired)
		return nil, ErrSessionNotFound
	}
	session.touch(now)
	return session, nil
}

// Delete removes the session. Deleting another owner's session reports not found.
func (s *Store) Delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.Owner != owner {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.SessionsActive.Dec()
	if !session.Submitted() {
		metrics.SessionsAbandoned.WithLabelValues(abandonDeleted).Inc()
	}
	return nil
}

// Submit submits the session and, once the participant exists upstream,
// drops it from the store so its answers are not kept. A failed submit
// leaves the session in place for a retry.
func (s *Store) Submit(ctx context.Context, session *Session, submitter Submitter) (*types.Participant, validation.Result, error) {
	participant, result, err := session.Submit(ctx, submitter)
	if err != nil {
		return nil, result, err
	}

	s.remove(session.ID, removeSubmitted)
	metrics.SessionsSubmitted.Inc()
	s.logger.Debug("intake session submitted and removed", zap.String("session_id", session.ID))
	return participant, result, nil
}

// Len returns the number of sessions currently held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Removal reasons. Only unsubmitted sessions count as abandoned.
const (
	abandonExpired  = "expired"
	abandonDeleted  = "deleted"
	removeSubmitted = "submitted"
)

func (s *Store) remove(id, reason string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		metrics.SessionsActive.Dec()
		if !session.Submitted() {
			metrics.SessionsAbandoned.WithLabelValues(reason).Inc()
		}
	}
}

func (s *Store) expired(session *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.idleSince()) > s.ttl
}

func (s *Store) cleanup() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if n := s.Expire(); n > 0 {
				s.logger.Info("expired idle intake sessions", zap.Int("count", n))
			}
		case <-s.cleanupStop:
			return
		}
	}
}

// Expire drops every session idle for longer than the TTL and returns how many were dropped
func (s *Store) Expire() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
			metrics.SessionsActive.Dec()
			if !session.Submitted() {
				metrics.SessionsAbandoned.WithLabelValues(abandonExpired).Inc()
			}
		}
	}
	return removed
}

// Stop stops the cleanup goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
		if s.cleanupStop != nil {
			close(s.cleanupStop)
		}
	})
}
