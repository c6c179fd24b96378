/*
Package live holds the real-time side of the server.

This file defines Hub, which owns the session and subscription registries,
dispatches change events and relayed pings, and tracks running clients so they
can be kicked or shut down.
*/
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"moonhub/internal/app/protocol"
	"moonhub/internal/app/user"
	"moonhub/internal/pkg/logx"
)

// TokenResolver resolves the token sent in the first frame of a connection.
type TokenResolver interface {
	ResolveByToken(token string) (user.User, error)
}

// HubConfig tunes per-connection limits.
type HubConfig struct {
	// QueueSize is the outbound buffer of every session; 0 uses DefaultQueueSize.
	QueueSize int

	// MaxPingSize drops relayed ping payloads larger than this many bytes; 0 disables the check.
	MaxPingSize int

	// PingRate is the number of pings per second a client may relay (burst of
	// the same size); 0 disables the limit.
	PingRate int
}

// Hub owns the session registry and the subscription registry and runs the
// WebSocket clients attached to them. One Hub is built at startup and shared.
type Hub struct {
	Sessions *Registry
	Watchers *Broadcasts

	resolver TokenResolver
	config   HubConfig

	// mu protects clients and closing; wg.Add only happens under mu while
	// closing is false.
	mu      sync.Mutex
	clients map[*Client]struct{}
	closing bool
	wg      sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs a Hub with empty registries.
func NewHub(resolver TokenResolver, cfg HubConfig) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	return &Hub{
		Sessions: NewRegistry(),
		Watchers: NewBroadcasts(),
		resolver: resolver,
		config:   cfg,
		clients:  make(map[*Client]struct{}),
		logger:   logx.Component("Hub"),
	}
}

// NotifyChange tells id's own session and everyone watching id that id's
// avatar changed. Both deliveries are independent and best effort; the
// result is informational.
func (h *Hub) NotifyChange(id uuid.UUID) (ownErr error, watchers int) {
	frame := protocol.EncodeEvent(id)

	watchers = h.Watchers.Publish(id, frame)
	ownErr = h.Sessions.Deliver(id, frame)

	h.logger.Debug().
		Str("user_id", id.String()).
		Int("watchers", watchers).
		AnErr("own_session", ownErr).
		Msg("Change event dispatched.")

	return ownErr, watchers
}

// RelayPing forwards a client ping to the owner's watchers, and back to the
// owner's own session when Sync is set.
func (h *Hub) RelayPing(owner uuid.UUID, ping protocol.PingFrame) int {
	frame := protocol.Encode(protocol.Ping{
		Owner: owner,
		ID:    ping.ID,
		Sync:  ping.Sync,
		Data:  ping.Data,
	})

	delivered := h.Watchers.Publish(owner, frame)
	if ping.Sync {
		if err := h.Sessions.Deliver(owner, frame); err == nil {
			delivered++
		}
	}

	return delivered
}

// Kick closes id's live session, if any, with the given close code.
func (h *Hub) Kick(id uuid.UUID, code int, text string) bool {
	kicked := h.Sessions.Remove(id, code, text)
	if kicked {
		h.logger.Info().Str("user_id", id.String()).Int("close_code", code).Msg("Session kicked.")
	}
	return kicked
}

// Serve runs a client on an upgraded connection until it disconnects.
// Connections arriving after Shutdown are closed with CloseGoingAway.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := NewClient(h, conn)

	if !h.track(client) {
		client.interrupt()
		return
	}
	defer h.untrack(client)

	client.ReadPump()
}

// track registers c unless the hub is shutting down.
func (h *Hub) track(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closing {
		return false
	}

	h.clients[c] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	h.wg.Done()
}

// Clients returns the number of running connections, authenticated or not.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown stops accepting connections, closes every running client and waits
// for their pumps to exit or ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.logger.Info().Msg("Shutting down hub...")

	h.mu.Lock()
	h.closing = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.interrupt()
	}
	sessions := h.Sessions.CloseAll(websocket.CloseGoingAway, "Server shutting down.")

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info().Int("clients_closed", len(clients)).Int("sessions_closed", sessions).Msg("Hub shutdown complete.")
		return nil
	case <-ctx.Done():
		h.logger.Warn().Int("clients_closed", len(clients)).Msg("Hub shutdown timed out; some clients may still be running.")
		return ctx.Err()
	}
}
