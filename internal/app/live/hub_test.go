package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"moonhub/internal/app/protocol"
	"moonhub/internal/app/user"
)

type tokenTable map[string]user.User

func (t tokenTable) ResolveByToken(token string) (user.User, error) {
	u, ok := t[token]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

var (
	alice  = user.User{ID: uuid.MustParse("11111111-1111-4111-8111-111111111111"), Username: "alice", Token: "tok-alice"}
	bob    = user.User{ID: uuid.MustParse("22222222-2222-4222-8222-222222222222"), Username: "bob", Token: "tok-bob"}
	banned = user.User{ID: uuid.MustParse("33333333-3333-4333-8333-333333333333"), Username: "mallory", Token: "tok-banned", Banned: true}
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	return newTestHubWith(t, HubConfig{MaxPingSize: 8, PingRate: 100})
}

func newTestHubWith(t *testing.T, cfg HubConfig) (*Hub, string) {
	t.Helper()

	hub := NewHub(tokenTable{
		alice.Token:  alice,
		bob.Token:    bob,
		banned.Token: banned,
	}, cfg)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, m protocol.ClientMessage) {
	t.Helper()

	if err := conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeClient(m)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) protocol.ServerMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	msg, err := protocol.DecodeServer(frame)
	if err != nil {
		t.Fatalf("DecodeServer() error = %v", err)
	}
	return msg
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, code) {
			t.Fatalf("ReadMessage() error = %v, want close code %d", err, code)
		}
		return
	}
}

func login(t *testing.T, url string, u user.User) *websocket.Conn {
	t.Helper()

	conn := dial(t, url)
	send(t, conn, protocol.TokenFrame{Token: u.Token})

	if msg := receive(t, conn); msg.Kind() != protocol.S2CAuth {
		t.Fatalf("first frame kind = %v, want %v", msg.Kind(), protocol.S2CAuth)
	}
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifyChangeReachesOwnerAndWatchers(t *testing.T) {
	hub, url := newTestHub(t)

	owner := login(t, url, alice)
	watcher := login(t, url, bob)

	send(t, watcher, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	ownErr, watchers := hub.NotifyChange(alice.ID)
	if ownErr != nil {
		t.Fatalf("NotifyChange() own delivery error = %v", ownErr)
	}
	if watchers != 1 {
		t.Fatalf("NotifyChange() watchers = %d, want 1", watchers)
	}

	want := protocol.Event{Subject: alice.ID}
	if diff := cmp.Diff(want, receive(t, owner)); diff != "" {
		t.Errorf("owner event mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, receive(t, watcher)); diff != "" {
		t.Errorf("watcher event mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfSubscriptionDeliversTwice(t *testing.T) {
	hub, url := newTestHub(t)

	owner := login(t, url, alice)
	send(t, owner, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	hub.NotifyChange(alice.ID)

	for i := range 2 {
		if msg := receive(t, owner); msg.Kind() != protocol.S2CEvent {
			t.Fatalf("frame %d kind = %v, want %v", i, msg.Kind(), protocol.S2CEvent)
		}
	}
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	hub, url := newTestHub(t)

	login(t, url, alice)
	watcher := login(t, url, bob)

	send(t, watcher, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	send(t, watcher, protocol.UnsubFrame{Target: alice.ID})
	waitFor(t, "unsubscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 0 })

	if _, watchers := hub.NotifyChange(alice.ID); watchers != 0 {
		t.Errorf("NotifyChange() watchers = %d, want 0", watchers)
	}
}

func TestNewConnectionSupersedesOld(t *testing.T) {
	hub, url := newTestHub(t)

	first := login(t, url, alice)
	second := login(t, url, alice)

	expectClose(t, first, CloseSessionKicked)

	hub.NotifyChange(alice.ID)
	if msg := receive(t, second); msg.Kind() != protocol.S2CEvent {
		t.Errorf("second connection frame kind = %v, want %v", msg.Kind(), protocol.S2CEvent)
	}

	// the superseded connection's teardown must not detach the new session
	waitFor(t, "stale teardown", func() bool {
		s, ok := hub.Sessions.Get(alice.ID)
		return ok && !s.Closed()
	})
}

func TestDisconnectRemovesMemberships(t *testing.T) {
	hub, url := newTestHub(t)

	watcher := login(t, url, bob)
	send(t, watcher, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	watcher.Close()

	waitFor(t, "teardown", func() bool {
		return hub.Watchers.Subscribers(alice.ID) == 0 && hub.Sessions.Len() == 0
	})
}

func TestRejectedConnections(t *testing.T) {
	tests := map[string]struct {
		frame []byte
		code  int
	}{
		"unknown token":   {protocol.EncodeClient(protocol.TokenFrame{Token: "nope"}), CloseUnauthorized},
		"banned user":     {protocol.EncodeClient(protocol.TokenFrame{Token: banned.Token}), CloseBanned},
		"sub before auth": {protocol.EncodeClient(protocol.SubFrame{Target: alice.ID}), CloseUnauthorized},
		"malformed":       {[]byte{0xFF, 1, 2}, CloseMalformedFrame},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, url := newTestHub(t)
			conn := dial(t, url)

			if err := conn.WriteMessage(websocket.BinaryMessage, tt.frame); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			expectClose(t, conn, tt.code)
		})
	}
}

func TestMalformedFrameAfterAuthClosesOnlyThatConnection(t *testing.T) {
	hub, url := newTestHub(t)

	bad := login(t, url, alice)
	good := login(t, url, bob)

	if err := bad.WriteMessage(websocket.BinaryMessage, []byte{byte(protocol.C2SSub), 1, 2}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	expectClose(t, bad, CloseMalformedFrame)

	hub.NotifyChange(bob.ID)
	if msg := receive(t, good); msg.Kind() != protocol.S2CEvent {
		t.Errorf("frame kind = %v, want %v", msg.Kind(), protocol.S2CEvent)
	}
}

func TestPingRelay(t *testing.T) {
	hub, url := newTestHub(t)

	owner := login(t, url, alice)
	watcher := login(t, url, bob)
	send(t, watcher, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	send(t, owner, protocol.PingFrame{ID: 9, Data: []byte("too large for limit")})
	send(t, owner, protocol.PingFrame{ID: 7, Sync: true, Data: []byte("hi")})

	want := protocol.Ping{Owner: alice.ID, ID: 7, Sync: true, Data: []byte("hi")}
	if diff := cmp.Diff(want, receive(t, watcher), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("watcher ping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, receive(t, owner), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("owner sync ping mismatch (-want +got):\n%s", diff)
	}
}

func TestKick(t *testing.T) {
	hub, url := newTestHub(t)

	conn := login(t, url, alice)

	if !hub.Kick(alice.ID, CloseBanned, "You are banned.") {
		t.Fatal("Kick() = false, want true")
	}
	expectClose(t, conn, CloseBanned)

	if hub.Kick(alice.ID, CloseBanned, "") {
		t.Error("second Kick() = true, want false")
	}
}

func TestZeroPingLimitsAreUnlimited(t *testing.T) {
	hub, url := newTestHubWith(t, HubConfig{})

	owner := login(t, url, alice)
	watcher := login(t, url, bob)
	send(t, watcher, protocol.SubFrame{Target: alice.ID})
	waitFor(t, "subscription", func() bool { return hub.Watchers.Subscribers(alice.ID) == 1 })

	data := make([]byte, 4096)
	const pings = 100
	for i := range pings {
		send(t, owner, protocol.PingFrame{ID: uint32(i), Data: data})
	}

	for i := range pings {
		msg, ok := receive(t, watcher).(protocol.Ping)
		if !ok || msg.ID != uint32(i) || len(msg.Data) != len(data) {
			t.Fatalf("ping %d = %+v", i, msg)
		}
	}
}

func TestNewPingLimiter(t *testing.T) {
	if l := newPingLimiter(0); l.Limit() != rate.Inf {
		t.Errorf("newPingLimiter(0).Limit() = %v, want rate.Inf", l.Limit())
	}

	l := newPingLimiter(3)
	for i := range 3 {
		if !l.Allow() {
			t.Fatalf("ping %d within burst was refused", i)
		}
	}
	if l.Allow() {
		t.Error("ping beyond burst was allowed")
	}
}

func TestShutdownClosesEveryConnection(t *testing.T) {
	hub, url := newTestHub(t)

	authed := login(t, url, alice)
	pending := dial(t, url)
	waitFor(t, "both clients", func() bool { return hub.Clients() == 2 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	expectClose(t, authed, websocket.CloseGoingAway)
	expectClose(t, pending, websocket.CloseGoingAway)

	if n := hub.Clients(); n != 0 {
		t.Errorf("Clients() after shutdown = %d, want 0", n)
	}

	late := dial(t, url)
	expectClose(t, late, websocket.CloseGoingAway)
}
