/*
Package avatar runs the avatar mutations and queries. A mutation resolves the
acting user, changes storage, and then notifies the user's own session and
their watchers. The caller's result depends only on the first two steps.
*/
package avatar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/app/badges"
	"moonhub/internal/app/storage"
	"moonhub/internal/app/user"
	"moonhub/internal/pkg/logx"
)

// EquippedAvatarID is the slot name of the single avatar a user can equip.
const EquippedAvatarID = "avatar"

var (
	// ErrBanned is returned when a banned user tries to change their avatar.
	ErrBanned = errors.New("avatar: user is banned")

	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("avatar: upload exceeds size limit")

	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("avatar: empty upload")
)

// Notifier delivers change events; Hub implements it.
type Notifier interface {
	NotifyChange(id uuid.UUID) (ownErr error, watchers int)
}

// Users resolves acting users and profile subjects.
type Users interface {
	ResolveByToken(token string) (user.User, error)
	ResolveByID(id uuid.UUID) (user.User, error)
}

// BadgeSource returns the badges granted to a user.
type BadgeSource interface {
	BadgesFor(id uuid.UUID) badges.Badges
}

// Profile is the public view of a user.
type Profile struct {
	UUID           uuid.UUID       `json:"uuid"`
	Rank           string          `json:"rank"`
	LastUsed       string          `json:"lastUsed"`
	Equipped       []EquippedEntry `json:"equipped"`
	EquippedBadges badges.Badges   `json:"equippedBadges"`
	Version        string          `json:"version"`
	Banned         bool            `json:"banned"`
}

// EquippedEntry points clients at a downloadable avatar and its hash.
type EquippedEntry struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Hash  string `json:"hash"`
}

// Service is constructed once at startup and shared by all handlers.
type Service struct {
	users    Users
	store    storage.BlobStore
	notifier Notifier
	badges   BadgeSource

	// maxSize is the upload limit in bytes.
	maxSize int64

	logger zerolog.Logger
}

// NewService wires the collaborators. badgeSource may be nil.
func NewService(users Users, store storage.BlobStore, notifier Notifier, badgeSource BadgeSource, maxSize int64) *Service {
	return &Service{
		users:    users,
		store:    store,
		notifier: notifier,
		badges:   badgeSource,
		maxSize:  maxSize,
		logger:   logx.Component("AvatarService"),
	}
}

// MaxSize returns the upload limit in bytes.
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Upload stores data as the acting user's avatar and announces the change.
func (s *Service) Upload(ctx context.Context, token string, data []byte) (user.User, error) {
	u, err := s.actor(token)
	if err != nil {
		return user.User{}, err
	}

	if len(data) == 0 {
		return u, ErrEmpty
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return u, ErrTooLarge
	}

	if err := s.store.Put(ctx, u.ID, data); err != nil {
		return u, err
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Int("size", len(data)).Msg("Avatar uploaded.")
	s.notify(u.ID)

	return u, nil
}

// Delete removes the acting user's avatar. A missing avatar is
// storage.ErrNotFound and announces nothing.
func (s *Service) Delete(ctx context.Context, token string) (user.User, error) {
	u, err := s.actor(token)
	if err != nil {
		return user.User{}, err
	}

	if err := s.store.Delete(ctx, u.ID); err != nil {
		return u, err
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Msg("Avatar deleted.")
	s.notify(u.ID)

	return u, nil
}

// Equip announces that the acting user's visible avatar state changed.
func (s *Service) Equip(_ context.Context, token string) (user.User, error) {
	u, err := s.actor(token)
	if err != nil {
		return user.User{}, err
	}

	s.notify(u.ID)
	return u, nil
}

// Profile builds the public view of id. Users without an avatar have no
// equipped entry.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (Profile, error) {
	u, err := s.users.ResolveByID(id)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		UUID:     u.ID,
		Rank:     u.Rank,
		LastUsed: formatLastUsed(u.LastUsed),
		Equipped: []EquippedEntry{},
		Version:  u.Version,
		Banned:   u.Banned,
	}

	if s.badges != nil {
		p.EquippedBadges = s.badges.BadgesFor(id)
	}

	hash, err := s.store.Hash(ctx, id)
	switch {
	case err == nil:
		p.Equipped = append(p.Equipped, EquippedEntry{
			ID:    EquippedAvatarID,
			Owner: id.String(),
			Hash:  hash,
		})
	case errors.Is(err, storage.ErrNotFound):
	default:
		return Profile{}, err
	}

	return p, nil
}

// Download returns the stored avatar bytes of id.
func (s *Service) Download(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return s.store.Get(ctx, id)
}

// actor resolves the token of a mutation request.
func (s *Service) actor(token string) (user.User, error) {
	u, err := s.users.ResolveByToken(token)
	if err != nil {
		return user.User{}, err
	}
	if u.Banned {
		return u, ErrBanned
	}
	return u, nil
}

// notify is best effort; its outcome never reaches the caller.
func (s *Service) notify(id uuid.UUID) {
	if s.notifier == nil {
		return
	}

	ownErr, watchers := s.notifier.NotifyChange(id)
	s.logger.Debug().
		Str("user_id", id.String()).
		AnErr("own_session", ownErr).
		Int("watchers", watchers).
		Msg("Avatar change announced.")
}

func formatLastUsed(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
