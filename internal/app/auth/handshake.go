/*
Package auth implements the server-id handshake that turns a player name into
a session token.

A client first asks for a random server id for its username, joins that id on
the session server, and then asks to verify it. A confirmed join yields a
signed token, the user's account state is loaded, and the user is published in
the Identity Directory.
*/
package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/app/user"
	"moonhub/internal/pkg/auth/jwt"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/randx"
)

// PendingExpiry is how long a server id waits for verification.
const PendingExpiry = time.Minute

var (
	// ErrInvalidUsername is returned for names the session server could never confirm.
	ErrInvalidUsername = errors.New("auth: invalid username")

	// ErrUnknownServerID is returned for server ids that were never issued, expired or were already used.
	ErrUnknownServerID = errors.New("auth: unknown or expired server id")
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// Publisher stores and resolves authenticated users; *user.Directory implements it.
type Publisher interface {
	Upsert(u user.User)
	Update(id uuid.UUID, fn func(*user.User)) (user.User, error)
	ResolveByToken(token string) (user.User, error)
	ResolveByID(id uuid.UUID) (user.User, error)
	Revoke(token string) bool
}

type pendingLogin struct {
	username string
	expires  time.Time
}

// Service tracks pending handshakes and is the token resolver for every
// authenticated path. It is concurrent-safe.
type Service struct {
	checker  JoinChecker
	accounts user.AccountStore
	users    Publisher
	secret   string

	// mu protects pending.
	mu      sync.Mutex
	pending map[string]pendingLogin

	// accountMu serializes account read-modify-write with publishing the
	// result to users.
	accountMu sync.Mutex

	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a Service and starts a goroutine that drops expired
// server ids until ctx is done.
func NewService(ctx context.Context, checker JoinChecker, accounts user.AccountStore, users Publisher, secret string) *Service {
	s := &Service{
		checker:  checker,
		accounts: accounts,
		users:    users,
		secret:   secret,
		pending:  make(map[string]pendingLogin),
		now:      time.Now,
		logger:   logx.Component("Auth"),
	}

	go s.cleanupExpiredEntries(ctx)

	return s
}

// Begin issues a server id for username.
func (s *Service) Begin(username string) (string, error) {
	if !usernameRegex.MatchString(username) {
		return "", ErrInvalidUsername
	}

	serverID, err := randx.ServerID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pending[serverID] = pendingLogin{username: username, expires: s.now().Add(PendingExpiry)}
	s.mu.Unlock()

	return serverID, nil
}

// Verify consumes serverID, confirms the join and publishes the user with a
// fresh token. version is the client version declared by the caller.
func (s *Service) Verify(ctx context.Context, serverID, version string) (user.User, error) {
	if !randx.IsValidServerID(serverID) {
		return user.User{}, ErrUnknownServerID
	}

	s.mu.Lock()
	login, ok := s.pending[serverID]
	delete(s.pending, serverID)
	s.mu.Unlock()

	if !ok || s.now().After(login.expires) {
		return user.User{}, ErrUnknownServerID
	}

	profile, err := s.checker.HasJoined(ctx, login.username, serverID)
	if err != nil {
		return user.User{}, err
	}

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:       profile.ID.String(),
		Username: profile.Name,
	}, s.secret, jwt.SessionExpiration)
	if err != nil {
		return user.User{}, err
	}

	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	account, err := s.accounts.Account(ctx, profile.ID)
	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:       profile.ID,
		Username: profile.Name,
		Rank:     account.Rank,
		LastUsed: s.now(),
		Version:  version,
		Banned:   account.Banned,
		Token:    token,
	}
	s.users.Upsert(u)

	if account.Username != profile.Name {
		account.Username = profile.Name
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to record username on account")
		}
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Str("version", version).Msg("User authenticated.")
	return u, nil
}

// ResolveByToken resolves token, revoking it if its signature or expiry no
// longer validates. Every token-authenticated path goes through here.
func (s *Service) ResolveByToken(token string) (user.User, error) {
	u, err := s.users.ResolveByToken(token)
	if err != nil {
		return user.User{}, err
	}

	if _, err := jwt.ParseToken(token, s.secret); err != nil {
		s.users.Revoke(token)
		s.logger.Info().Str("user_id", u.ID.String()).Msg("Expired token revoked.")
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// ResolveByID returns the published record of id.
func (s *Service) ResolveByID(id uuid.UUID) (user.User, error) {
	return s.users.ResolveByID(id)
}

// UpdateAccount applies fn to the stored account of id, saves it and mirrors
// rank and ban into the published user, if any.
func (s *Service) UpdateAccount(ctx context.Context, id uuid.UUID, fn func(*user.Account)) (user.Account, error) {
	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	account, err := s.accounts.Account(ctx, id)
	if err != nil {
		return user.Account{}, err
	}

	fn(&account)

	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return user.Account{}, err
	}

	_, err = s.users.Update(id, func(u *user.User) {
		u.Rank = account.Rank
		u.Banned = account.Banned
	})
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return user.Account{}, err
	}

	return account, nil
}

// Pending returns the number of server ids awaiting verification.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Sweep drops server ids that expired before now.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, login := range s.pending {
		if now.After(login.expires) {
			delete(s.pending, id)
			removed++
		}
	}
	return removed
}

// cleanupExpiredEntries periodically removes expired server ids.
func (s *Service) cleanupExpiredEntries(ctx context.Context) {
	ticker := time.NewTicker(PendingExpiry)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("Expired server ids removed.")
			}
		}
	}
}
