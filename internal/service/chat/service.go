package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/model/chat"
	"github.com/erickai/companion/backend/internal/model/persona"
	"github.com/erickai/companion/backend/internal/service/conversation"
)

var ErrSessionNotFound = errors.New("session not found")

// Config controls session retention.
type Config struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

type entry struct {
	session    chat.Session
	conv       *conversation.Conversation
	lastActive time.Time
}

// Service keeps every live conversation in memory, keyed by session id.
type Service struct {
	relay   conversation.Relay
	convCfg conversation.Config
	ttl     time.Duration
	sweep   time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewService builds a registry whose conversations share relay and convCfg.
func NewService(relay conversation.Relay, convCfg conversation.Config, cfg Config) *Service {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if convCfg.Logger == nil {
		convCfg.Logger = cfg.Logger
	}

	return &Service{
		relay:    relay,
		convCfg:  convCfg,
		ttl:      cfg.IdleTTL,
		sweep:    cfg.SweepInterval,
		logger:   cfg.Logger,
		now:      cfg.Now,
		sessions: make(map[string]*entry),
	}
}

// CreateSession provisions an anonymous session with a fresh conversation.
func (s *Service) CreateSession(_ context.Context) (chat.Session, *conversation.Conversation, error) {
	personaID := persona.ErickID
	if s.convCfg.Persona != nil {
		personaID = s.convCfg.Persona.ID
	}

	now := s.now()
	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		CreatedAt: now,
	}

	cfg := s.convCfg
	cfg.Logger = s.convCfg.Logger.With(zap.String("sessionId", session.ID))
	conv := conversation.New(s.relay, cfg)

	s.mu.Lock()
	s.sessions[session.ID] = &entry{session: session, conv: conv, lastActive: now}
	total := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("sessionId", session.ID), zap.Int("sessions", total))
	return session, conv, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// Conversation returns the session's conversation and marks it active.
func (s *Service) Conversation(_ context.Context, sessionID string) (*conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastActive = s.now()
	return e.conv, nil
}

// DeleteSession drops a session. Deleting an unknown id is an error.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.logger.Info("session deleted", zap.String("sessionId", sessionID))
	return nil
}

// Count reports the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run reaps idle sessions every sweep interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	s.logger.Info("session reaper started",
		zap.Duration("idleTTL", s.ttl),
		zap.Duration("interval", s.sweep))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session reaper stopped")
			return nil
		case <-ticker.C:
			if n := s.reapIdle(s.now()); n > 0 {
				s.logger.Info("idle sessions reaped", zap.Int("count", n), zap.Int("remaining", s.Count()))
			}
		}
	}
}

// reapIdle removes sessions idle longer than the TTL. A conversation
// waiting on its relay is never removed.
func (s *Service) reapIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastActive) < s.ttl || e.conv.Busy() {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}
