/*
Package live holds the real-time side of the server.

This file defines Registry, which binds each user id to its one current
Session. A newer attach supersedes the older session; stale detaches are ignored.
*/
package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/pkg/logx"
)

// ReasonSuperseded is the close text of a session replaced by a newer connection.
const ReasonSuperseded = "Session replaced by new connection. Check other windows."

// Registry binds each user id to at most one current session.
// The lock only guards the map; sends happen after it is released.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logx.Component("SessionRegistry"),
	}
}

// Attach makes s the current session for id. A previous session is closed
// with CloseSessionKicked and never receives deliveries again.
func (r *Registry) Attach(id uuid.UUID, s *Session) (replaced bool) {
	r.mu.Lock()
	previous, ok := r.sessions[id]
	r.sessions[id] = s
	r.mu.Unlock()

	if ok && previous != s {
		previous.Close(CloseSessionKicked, ReasonSuperseded)
		r.logger.Info().Str("user_id", id.String()).Msg("Existing session superseded by new connection.")
		return true
	}

	return false
}

// Detach removes s if it is still the current session for id.
// Detaches from superseded connections are ignored.
func (r *Registry) Detach(id uuid.UUID, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		return false
	}

	if current != s {
		r.logger.Debug().Str("user_id", id.String()).Msg("Ignoring detach for stale session.")
		return false
	}

	delete(r.sessions, id)
	return true
}

// Get returns the current session for id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Deliver offers msg to id's current session without blocking.
func (r *Registry) Deliver(id uuid.UUID, msg []byte) error {
	s, ok := r.Get(id)
	if !ok {
		return ErrNoSession
	}

	if err := s.Offer(msg); err != nil {
		r.logger.Debug().Err(err).Str("user_id", id.String()).Msg("Session delivery dropped.")
		return err
	}

	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Remove detaches whatever session id has and closes it with code and text.
func (r *Registry) Remove(id uuid.UUID, code int, text string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close(code, text)
	}
	return ok
}

// CloseAll closes every session and empties the registry.
func (r *Registry) CloseAll(code int, text string) int {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(code, text)
	}

	return len(sessions)
}
