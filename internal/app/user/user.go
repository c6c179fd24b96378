/*
Package user contains the identity side of the server: the user record, the
in-process Identity Directory resolving tokens and user ids to records, and
the account store holding the administrative attributes (rank, ban).
*/
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultRank is the rank of users without an account row.
const DefaultRank = "default"

// ErrNotFound is returned when no record exists for a token or id.
var ErrNotFound = errors.New("user: not found")

// User is one authenticated user as seen by this process.
type User struct {
	// ID is the stable user identifier.
	ID uuid.UUID

	// Username is the display name confirmed during the handshake.
	Username string

	// Rank is the display rank shown on the profile.
	Rank string

	// LastUsed is the time of the last successful authentication.
	LastUsed time.Time

	// Version is the client version declared at login.
	Version string

	// Banned users may authenticate but cannot open sessions or mutate avatars.
	Banned bool

	// Token is the current session token. One token maps to one user.
	Token string
}

// Account is the persisted administrative part of a user.
type Account struct {
	ID       uuid.UUID
	Username string
	Rank     string
	Banned   bool
}
