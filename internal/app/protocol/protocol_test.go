package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

var subject = uuid.MustParse("0f5e5c8e-8e0f-4a8a-bb5c-1d2e3f405162")

func TestEncodeEventLayout(t *testing.T) {
	frame := EncodeEvent(subject)

	if len(frame) != 17 {
		t.Fatalf("len(frame) = %d, want 17", len(frame))
	}
	if frame[0] != byte(S2CEvent) {
		t.Errorf("discriminator = %d, want %d", frame[0], S2CEvent)
	}
	if diff := cmp.Diff(subject[:], frame[1:]); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestServerRoundTrip(t *testing.T) {
	tests := map[string]ServerMessage{
		"auth":          Auth{},
		"event":         Event{Subject: subject},
		"ping":          Ping{Owner: subject, ID: 0xDEADBEEF, Sync: true, Data: []byte{1, 2, 3}},
		"ping no data":  Ping{Owner: subject, ID: 7},
		"toast":         Toast{Type: 2, Title: "Upload", Message: "done"},
		"toast no body": Toast{Type: 1, Title: "Hi"},
		"chat":          Chat{Text: "hello"},
		"notice":        Notice{Code: 3},
	}

	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeServer(Encode(msg))
			if err != nil {
				t.Fatalf("DecodeServer() error = %v", err)
			}
			if diff := cmp.Diff(msg, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeServerFormatErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty":          {},
		"unknown kind":   {42},
		"short event":    append([]byte{byte(S2CEvent)}, subject[:15]...),
		"long event":     append(append([]byte{byte(S2CEvent)}, subject[:]...), 0),
		"auth with data": {byte(S2CAuth), 1},
		"short ping":     append([]byte{byte(S2CPing)}, subject[:]...),
		"notice no code": {byte(S2CNotice)},
		"toast no type":  {byte(S2CToast)},
	}

	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeServer(frame)

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("DecodeServer() error = %v, want *FormatError", err)
			}
		})
	}
}

func TestClientRoundTrip(t *testing.T) {
	tests := map[string]ClientMessage{
		"token": TokenFrame{Token: "abc.def.ghi"},
		"ping":  PingFrame{ID: 9, Sync: true, Data: []byte("payload")},
		"sub":   SubFrame{Target: subject},
		"unsub": UnsubFrame{Target: subject},
	}

	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeClient(EncodeClient(msg))
			if err != nil {
				t.Fatalf("DecodeClient() error = %v", err)
			}
			if diff := cmp.Diff(msg, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeClientFormatErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty":        {},
		"unknown kind": {9, 1, 2},
		"empty token":  {byte(C2SToken)},
		"short ping":   {byte(C2SPing), 0, 0, 0, 1},
		"short sub":    {byte(C2SSub), 1, 2, 3},
		"long unsub":   append(append([]byte{byte(C2SUnsub)}, subject[:]...), 1),
	}

	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClient(frame)

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("DecodeClient() error = %v, want *FormatError", err)
			}
			if formatErr.Direction != "c2s" {
				t.Errorf("Direction = %q, want c2s", formatErr.Direction)
			}
		})
	}
}
