package avatar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"moonhub/internal/app/badges"
	"moonhub/internal/app/live"
	"moonhub/internal/app/protocol"
	"moonhub/internal/app/storage"
	"moonhub/internal/app/user"
)

var (
	userX = user.User{
		ID:       uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"),
		Username: "x",
		Rank:     user.DefaultRank,
		LastUsed: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Version:  "0.1.5",
		Token:    "token-x",
	}
	userY = user.User{
		ID:       uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002"),
		Username: "y",
		Rank:     user.DefaultRank,
		Token:    "token-y",
	}
	userBanned = user.User{
		ID:       uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000003"),
		Username: "z",
		Banned:   true,
		Token:    "token-z",
	}
)

type badgeTable map[uuid.UUID]badges.Badges

func (b badgeTable) BadgesFor(id uuid.UUID) badges.Badges { return b[id] }

type fixture struct {
	svc   *Service
	store *storage.FileStore
	hub   *live.Hub
}

func newFixture(t *testing.T, maxSize int64) fixture {
	t.Helper()

	dir := user.NewDirectory()
	for _, u := range []user.User{userX, userY, userBanned} {
		dir.Upsert(u)
	}

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	hub := live.NewHub(dir, live.HubConfig{})
	b := badgeTable{userX.ID: {Special: badges.Special{Supporter: true}}}

	return fixture{
		svc:   NewService(dir, store, hub, b, maxSize),
		store: store,
		hub:   hub,
	}
}

func hexSum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func drainEvents(t *testing.T, s *live.Session) []protocol.ServerMessage {
	t.Helper()

	var out []protocol.ServerMessage
	for {
		select {
		case frame := <-s.Outbound():
			msg, err := protocol.DecodeServer(frame)
			if err != nil {
				t.Fatalf("DecodeServer() error = %v", err)
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestUploadSubscribeDeleteScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	b1 := []byte("0123456789")
	if _, err := f.svc.Upload(ctx, userX.Token, b1); err != nil {
		t.Fatalf("Upload(b1) error = %v", err)
	}

	got, err := f.svc.Download(ctx, userX.ID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if diff := cmp.Diff(b1, got); diff != "" {
		t.Errorf("Download() mismatch (-want +got):\n%s", diff)
	}

	p, err := f.svc.Profile(ctx, userX.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	wantEquipped := []EquippedEntry{{ID: EquippedAvatarID, Owner: userX.ID.String(), Hash: hexSum(b1)}}
	if diff := cmp.Diff(wantEquipped, p.Equipped); diff != "" {
		t.Errorf("Profile().Equipped mismatch (-want +got):\n%s", diff)
	}

	watcher := live.NewSession(userY.ID, 8)
	f.hub.Sessions.Attach(userY.ID, watcher)
	f.hub.Watchers.Subscribe(userX.ID, watcher)

	b2 := []byte("second avatar")
	if _, err := f.svc.Upload(ctx, userX.Token, b2); err != nil {
		t.Fatalf("Upload(b2) error = %v", err)
	}

	want := []protocol.ServerMessage{protocol.Event{Subject: userX.ID}}
	if diff := cmp.Diff(want, drainEvents(t, watcher)); diff != "" {
		t.Errorf("events after upload mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Delete(ctx, userX.Token); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.Download(ctx, userX.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() after delete error = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff(want, drainEvents(t, watcher)); diff != "" {
		t.Errorf("events after delete mismatch (-want +got):\n%s", diff)
	}

	f.hub.Watchers.RemoveSubscriber(watcher)
	if _, watchers := f.hub.NotifyChange(userX.ID); watchers != 0 {
		t.Errorf("NotifyChange() watchers after disconnect = %d, want 0", watchers)
	}
}

func TestMutationsReachOwnSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	own := live.NewSession(userX.ID, 8)
	f.hub.Sessions.Attach(userX.ID, own)

	if _, err := f.svc.Equip(ctx, userX.Token); err != nil {
		t.Fatalf("Equip() error = %v", err)
	}
	if _, err := f.svc.Upload(ctx, userX.Token, []byte("a")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if got := len(drainEvents(t, own)); got != 2 {
		t.Errorf("own session received %d events, want 2", got)
	}
}

func TestDeleteMissingAvatarEmitsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	watcher := live.NewSession(userY.ID, 8)
	f.hub.Watchers.Subscribe(userX.ID, watcher)

	if _, err := f.svc.Delete(ctx, userX.Token); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if got := len(drainEvents(t, watcher)); got != 0 {
		t.Errorf("watcher received %d events, want 0", got)
	}
}

func TestMutationErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)

	tests := map[string]struct {
		token string
		data  []byte
		want  error
	}{
		"unknown token": {"nope", []byte("a"), user.ErrNotFound},
		"banned":        {userBanned.Token, []byte("a"), ErrBanned},
		"empty":         {userX.Token, nil, ErrEmpty},
		"too large":     {userX.Token, []byte("12345"), ErrTooLarge},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.Upload(ctx, tt.token, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Upload() error = %v, want %v", err, tt.want)
			}
		})
	}

	if ok, _ := f.store.Exists(ctx, userX.ID); ok {
		t.Error("rejected uploads reached storage")
	}
	if _, err := f.svc.Equip(ctx, userBanned.Token); !errors.Is(err, ErrBanned) {
		t.Errorf("Equip() banned error = %v, want ErrBanned", err)
	}
}

func TestProfileWithoutAvatar(t *testing.T) {
	f := newFixture(t, 1024)

	p, err := f.svc.Profile(context.Background(), userX.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	want := Profile{
		UUID:           userX.ID,
		Rank:           user.DefaultRank,
		LastUsed:       "2026-01-02T03:04:05Z",
		Equipped:       []EquippedEntry{},
		EquippedBadges: badges.Badges{Special: badges.Special{Supporter: true}},
		Version:        "0.1.5",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Profile(context.Background(), uuid.New()); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("Profile(unknown) error = %v, want user.ErrNotFound", err)
	}
}

func TestFullWatcherDoesNotFailUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1024)

	slow := live.NewSession(userY.ID, 1)
	f.hub.Watchers.Subscribe(userX.ID, slow)
	if err := slow.Offer([]byte("filler")); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}

	if _, err := f.svc.Upload(ctx, userX.Token, []byte("a")); err != nil {
		t.Errorf("Upload() with a full watcher error = %v", err)
	}
}
