/*
Package live holds the real-time side of the server: per-user sessions, the
registry binding each user to their one current session, the per-subject
subscription groups, and the WebSocket client that drives them.
*/
package live

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize is the outbound buffer of a session.
const DefaultQueueSize = 256

// Custom WebSocket close codes (4000-4999 range) sent to clients.
const (
	CloseUnauthorized   = 4000
	CloseSessionKicked  = 4001
	CloseMalformedFrame = 4002
	CloseBanned         = 4003
)

var (
	// ErrNoSession is returned by Registry.Deliver when the user has no live session.
	ErrNoSession = errors.New("live: no session for user")

	// ErrSessionClosed is returned when offering to a session that was closed or superseded.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrQueueFull is returned when the session's consumer is not keeping up.
	ErrQueueFull = errors.New("live: session queue full")
)

// Session is the outbound delivery channel of one user's live connection.
// Any goroutine may Offer; exactly one consumer drains Outbound.
type Session struct {
	userID uuid.UUID

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	closeCode int
	closeText string

	// mu guards subjects, the groups this session is subscribed to.
	mu       sync.Mutex
	subjects map[uuid.UUID]struct{}
}

// NewSession creates an open session for userID with the given queue size.
func NewSession(userID uuid.UUID, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Session{
		userID:   userID,
		send:     make(chan []byte, queueSize),
		done:     make(chan struct{}),
		subjects: make(map[uuid.UUID]struct{}),
	}
}

// UserID returns the user this session belongs to.
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// Offer queues msg without blocking.
// The send channel is never closed, so a racing Close cannot make Offer panic.
func (s *Session) Offer(msg []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrQueueFull
	}
}

// Outbound is the queue drained by the connection's writer.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session closed with a WebSocket close code and text.
// Only the first call's reason is kept.
func (s *Session) Close(code int, text string) {
	s.closeOnce.Do(func() {
		s.closeCode = code
		s.closeText = text
		close(s.done)
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// CloseReason returns the code and text given to the first Close call.
// It blocks until the session is closed.
func (s *Session) CloseReason() (int, string) {
	<-s.done
	return s.closeCode, s.closeText
}

func (s *Session) trackSubject(subject uuid.UUID) {
	s.mu.Lock()
	s.subjects[subject] = struct{}{}
	s.mu.Unlock()
}

func (s *Session) untrackSubject(subject uuid.UUID) {
	s.mu.Lock()
	delete(s.subjects, subject)
	s.mu.Unlock()
}

// drainSubjects empties and returns the tracked subjects.
func (s *Session) drainSubjects() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjects := make([]uuid.UUID, 0, len(s.subjects))
	for subject := range s.subjects {
		subjects = append(subjects, subject)
	}
	clear(s.subjects)

	return subjects
}
