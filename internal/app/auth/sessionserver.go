/*
Package auth implements the server-id handshake.

This file contains the client for the session server's hasJoined endpoint.
*/
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ErrNotJoined is returned when the session server does not confirm the join.
var ErrNotJoined = errors.New("auth: session server did not confirm join")

// JoinedProfile is the identity confirmed by the session server.
type JoinedProfile struct {
	ID   uuid.UUID
	Name string
}

// JoinChecker asks whether username joined the server identified by serverID.
type JoinChecker interface {
	HasJoined(ctx context.Context, username, serverID string) (JoinedProfile, error)
}

// SessionServer is the HTTP JoinChecker for a Mojang-compatible session server.
type SessionServer struct {
	baseURL string
	client  *http.Client
}

// NewSessionServer returns a checker for baseURL (no trailing slash).
func NewSessionServer(baseURL string) *SessionServer {
	return &SessionServer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// HasJoined implements JoinChecker.
func (s *SessionServer) HasJoined(ctx context.Context, username, serverID string) (JoinedProfile, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("serverId", serverID)

	endpoint := s.baseURL + "/session/minecraft/hasJoined?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return JoinedProfile{}, fmt.Errorf("building hasJoined request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return JoinedProfile{}, fmt.Errorf("calling session server: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound, http.StatusForbidden:
		return JoinedProfile{}, ErrNotJoined
	default:
		return JoinedProfile{}, fmt.Errorf("session server returned %s", res.Status)
	}

	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 64*1024)).Decode(&body); err != nil {
		return JoinedProfile{}, fmt.Errorf("decoding session server response: %w", err)
	}

	// uuid.Parse accepts the undashed form the session server sends.
	id, err := uuid.Parse(body.ID)
	if err != nil {
		return JoinedProfile{}, fmt.Errorf("session server returned invalid id %q: %w", body.ID, err)
	}

	return JoinedProfile{ID: id, Name: body.Name}, nil
}
