/*
Package live holds the real-time side of the server.

This file defines Broadcasts, the per-subject subscription groups. Groups are
created on first subscribe and reclaimed once empty; publishing snapshots the
members and offers to each without blocking.
*/
package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/pkg/logx"
)

// Subscription identifies one membership; pass it back to Unsubscribe.
type Subscription struct {
	Subject    uuid.UUID
	Subscriber *Session
}

// group is the set of sessions watching one subject.
type group struct {
	mu      sync.RWMutex
	members map[*Session]struct{}
}

// Broadcasts is the per-subject fan-out registry. Delivery is best effort:
// a subscriber with a full queue misses that event and nobody waits for it.
type Broadcasts struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*group

	logger zerolog.Logger
}

// NewBroadcasts returns an empty registry.
func NewBroadcasts() *Broadcasts {
	return &Broadcasts{
		groups: make(map[uuid.UUID]*group),
		logger: logx.Component("Broadcasts"),
	}
}

// Subscribe adds s to subject's group, creating the group on first use.
// Subscribing twice is a no-op.
func (b *Broadcasts) Subscribe(subject uuid.UUID, s *Session) Subscription {
	b.mu.Lock()
	g, ok := b.groups[subject]
	if !ok {
		g = &group{members: make(map[*Session]struct{})}
		b.groups[subject] = g
	}
	// Membership changes under b.mu so a concurrent reclaim cannot drop a fresh member.
	g.mu.Lock()
	g.members[s] = struct{}{}
	g.mu.Unlock()
	b.mu.Unlock()

	s.trackSubject(subject)

	return Subscription{Subject: subject, Subscriber: s}
}

// Unsubscribe removes the membership. It reports whether it existed.
func (b *Broadcasts) Unsubscribe(sub Subscription) bool {
	sub.Subscriber.untrackSubject(sub.Subject)
	return b.remove(sub.Subject, sub.Subscriber)
}

// RemoveSubscriber drops s from every group it joined; used on disconnect.
func (b *Broadcasts) RemoveSubscriber(s *Session) int {
	removed := 0
	for _, subject := range s.drainSubjects() {
		if b.remove(subject, s) {
			removed++
		}
	}
	return removed
}

func (b *Broadcasts) remove(subject uuid.UUID, s *Session) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.groups[subject]
	if !ok {
		return false
	}

	g.mu.Lock()
	_, member := g.members[s]
	delete(g.members, s)
	empty := len(g.members) == 0
	g.mu.Unlock()

	if empty {
		delete(b.groups, subject)
	}

	return member
}

// Publish offers msg to every current subscriber of subject and returns how
// many accepted it. Members are snapshotted so no lock is held while sending.
func (b *Broadcasts) Publish(subject uuid.UUID, msg []byte) int {
	b.mu.RLock()
	g, ok := b.groups[subject]
	b.mu.RUnlock()

	if !ok {
		return 0
	}

	g.mu.RLock()
	members := make([]*Session, 0, len(g.members))
	for s := range g.members {
		members = append(members, s)
	}
	g.mu.RUnlock()

	delivered := 0
	for _, s := range members {
		if err := s.Offer(msg); err != nil {
			b.logger.Debug().
				Err(err).
				Str("subject", subject.String()).
				Str("subscriber", s.UserID().String()).
				Msg("Broadcast delivery dropped for subscriber.")
			continue
		}
		delivered++
	}

	return delivered
}

// Subscribers returns the member count of subject's group.
func (b *Broadcasts) Subscribers(subject uuid.UUID) int {
	b.mu.RLock()
	g, ok := b.groups[subject]
	b.mu.RUnlock()

	if !ok {
		return 0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// Groups returns the number of non-empty groups.
func (b *Broadcasts) Groups() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups)
}
