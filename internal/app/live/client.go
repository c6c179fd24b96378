/*
Package live holds the real-time side of the server.

This file defines Client, which drives one WebSocket connection: the read pump
authenticates the first frame and dispatches subscription and ping frames, and
the write pump drains the session queue and owns the close handshake.
*/
package live

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"moonhub/internal/app/protocol"
	"moonhub/internal/app/user"
	"moonhub/internal/pkg/logx"
)

const (
	// time allowed for the token frame after the upgrade.
	authWait = 15 * time.Second

	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 64 * 1024
)

// Client drives one WebSocket connection. Until the token frame arrives it
// has no session; afterwards it owns exactly one Session in the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	user    user.User
	session *Session

	// authenticated is set once session is assigned.
	authenticated atomic.Bool

	// pings throttles relayed pings from this connection.
	pings *rate.Limiter

	// writerDone is closed when WritePump returns.
	writerDone chan struct{}

	logger zerolog.Logger
}

// NewClient constructs an unauthenticated Client bound to hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		pings:      newPingLimiter(hub.config.PingRate),
		writerDone: make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "Client").Str("remote_addr", conn.RemoteAddr().String()).Logger(),
	}
}

// newPingLimiter allows perSecond pings with a burst of the same size; 0 is unlimited.
func newPingLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// ReadPump reads frames until the connection fails or is closed.
// The first frame must authenticate the connection.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(authWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			c.logger.Debug().Int("message_type", messageType).Msg("Ignoring non-binary frame")
			continue
		}

		if !c.processInboundFrame(frame) {
			break
		}
	}
}

// processInboundFrame handles one binary frame.
// Returns false if the connection must be closed.
func (c *Client) processInboundFrame(frame []byte) bool {
	msg, err := protocol.DecodeClient(frame)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Client sent malformed frame")
		c.closeWith(CloseMalformedFrame, "Malformed frame.")
		return false
	}

	if c.session == nil {
		token, ok := msg.(protocol.TokenFrame)
		if !ok {
			c.logger.Warn().Str("kind", msg.ClientKind().String()).Msg("Client sent frame before authenticating")
			c.closeWith(CloseUnauthorized, "Authentication required.")
			return false
		}
		return c.authenticate(token.Token)
	}

	switch m := msg.(type) {
	case protocol.TokenFrame:
		c.logger.Debug().Msg("Ignoring repeated token frame")

	case protocol.SubFrame:
		c.hub.Watchers.Subscribe(m.Target, c.session)

	case protocol.UnsubFrame:
		c.hub.Watchers.Unsubscribe(Subscription{Subject: m.Target, Subscriber: c.session})

	case protocol.PingFrame:
		c.handlePing(m)
	}

	return true
}

// authenticate resolves the token, attaches a new session and starts the writer.
func (c *Client) authenticate(token string) bool {
	u, err := c.hub.resolver.ResolveByToken(token)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			c.logger.Error().Err(err).Msg("Token resolution failed")
		}
		c.closeWith(CloseUnauthorized, "Authentication failed.")
		return false
	}

	if u.Banned {
		c.logger.Info().Str("user_id", u.ID.String()).Msg("Banned user rejected")
		c.closeWith(CloseBanned, "You are banned.")
		return false
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return false
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	session := NewSession(u.ID, c.hub.config.QueueSize)

	// queue Auth before the session becomes visible so it is the first frame out
	if err := session.Offer(protocol.Encode(protocol.Auth{})); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue auth confirmation")
		return false
	}

	c.user = u
	c.session = session
	c.authenticated.Store(true)
	c.logger = c.logger.With().Str("user_id", u.ID.String()).Logger()

	c.hub.Sessions.Attach(u.ID, session)

	go c.WritePump()

	c.logger.Info().Str("username", u.Username).Msg("Client authenticated.")
	return true
}

// handlePing relays a client ping if it fits the size and rate limits.
func (c *Client) handlePing(ping protocol.PingFrame) {
	if limit := c.hub.config.MaxPingSize; limit > 0 && len(ping.Data) > limit {
		c.logger.Debug().Int("size", len(ping.Data)).Msg("Dropping oversized ping")
		return
	}

	if !c.pings.Allow() {
		c.logger.Debug().Msg("Dropping rate-limited ping")
		return
	}

	c.hub.RelayPing(c.user.ID, ping)
}

// closeWith ends the connection with a custom close code. After
// authentication the writer sends the close frame; before it is started the
// frame is written here.
func (c *Client) closeWith(code int, text string) {
	if c.session != nil {
		c.session.Close(code, text)
		return
	}

	closeMessage := websocket.FormatCloseMessage(code, text)
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Int("close_code", code).Msg("Failed to send close message.")
	}
}

// interrupt ends the connection from outside the pumps. An authenticated
// client closes through its session; otherwise the close frame is written
// here and the connection is closed to unblock ReadPump.
func (c *Client) interrupt() {
	if c.authenticated.Load() {
		c.session.Close(websocket.CloseGoingAway, "Server shutting down.")
		return
	}

	closeMessage := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down.")
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.hub.logger.Debug().Err(err).Msg("Failed to send close message.")
	}

	if err := c.conn.Close(); err != nil {
		c.hub.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// cleanupOnDisconnect releases the session and memberships when ReadPump exits.
func (c *Client) cleanupOnDisconnect() {
	if c.session != nil {
		c.hub.Sessions.Detach(c.user.ID, c.session)
		removed := c.hub.Watchers.RemoveSubscriber(c.session)
		c.session.Close(websocket.CloseNormalClosure, "")

		<-c.writerDone

		c.logger.Info().Int("subscriptions_removed", removed).Msg("Client disconnected.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump drains the session queue onto the connection and sends the close
// frame once the session is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// unblock ReadPump if the writer failed first
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
		close(c.writerDone)
	}()

	for {
		select {
		case <-c.session.Done():
			c.writeCloseMessage()
			return

		case frame := <-c.session.Outbound():
			if c.session.Closed() {
				c.writeCloseMessage()
				return
			}
			if !c.writeFrame(frame) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeFrame writes one binary frame.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeFrame(frame []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// writeCloseMessage sends the session's close code to the peer.
func (c *Client) writeCloseMessage() {
	code, text := c.session.CloseReason()

	if code != websocket.CloseNormalClosure {
		c.logger.Warn().Int("close_code", code).Str("reason", text).Msg("Sending WS close message.")
	}

	closeMessage := websocket.FormatCloseMessage(code, text)
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send WS close message.")
	}
}
