/*
Package protocol implements the binary WebSocket envelope.

This file defines the client-to-server frames and their decoder.
*/
package protocol

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// C2SKind discriminates client-to-server frames.
type C2SKind byte

const (
	C2SToken C2SKind = iota
	C2SPing
	C2SSub
	C2SUnsub
)

func (k C2SKind) String() string {
	switch k {
	case C2SToken:
		return "token"
	case C2SPing:
		return "ping"
	case C2SSub:
		return "sub"
	case C2SUnsub:
		return "unsub"
	default:
		return "unknown"
	}
}

// ClientMessage is any frame a client may send.
type ClientMessage interface {
	ClientKind() C2SKind
}

// TokenFrame authenticates the connection. It must be the first frame.
type TokenFrame struct {
	Token string
}

// PingFrame is an opaque payload the client wants relayed to its watchers.
type PingFrame struct {
	ID   uint32
	Sync bool
	Data []byte
}

// SubFrame starts watching Target's avatar.
type SubFrame struct {
	Target uuid.UUID
}

// UnsubFrame stops watching Target's avatar.
type UnsubFrame struct {
	Target uuid.UUID
}

func (TokenFrame) ClientKind() C2SKind { return C2SToken }
func (PingFrame) ClientKind() C2SKind { return C2SPing }
func (SubFrame) ClientKind() C2SKind { return C2SSub }
func (UnsubFrame) ClientKind() C2SKind { return C2SUnsub }

// EncodeClient serializes a client frame (used by tests and tooling).
func EncodeClient(m ClientMessage) []byte {
	dst := []byte{byte(m.ClientKind())}

	switch f := m.(type) {
	case TokenFrame:
		dst = append(dst, f.Token...)
	case PingFrame:
		dst = binary.BigEndian.AppendUint32(dst, f.ID)
		dst = append(dst, boolByte(f.Sync))
		dst = append(dst, f.Data...)
	case SubFrame:
		dst = append(dst, f.Target[:]...)
	case UnsubFrame:
		dst = append(dst, f.Target[:]...)
	}

	return dst
}

// DecodeClient parses a client frame.
func DecodeClient(frame []byte) (ClientMessage, error) {
	if len(frame) == 0 {
		return nil, formatErr("c2s", 0, "empty frame")
	}

	kind, body := frame[0], frame[1:]

	switch C2SKind(kind) {
	case C2SToken:
		if len(body) == 0 {
			return nil, formatErr("c2s", kind, "empty token")
		}
		return TokenFrame{Token: string(body)}, nil

	case C2SPing:
		if len(body) < 4+1 {
			return nil, formatErr("c2s", kind, "ping payload too short: %d bytes", len(body))
		}
		return PingFrame{
			ID:   binary.BigEndian.Uint32(body[:4]),
			Sync: body[4] != 0,
			Data: bytes.Clone(body[5:]),
		}, nil

	case C2SSub, C2SUnsub:
		if len(body) != 16 {
			return nil, formatErr("c2s", kind, "uuid payload must be 16 bytes, got %d", len(body))
		}
		target := uuid.UUID(body)
		if C2SKind(kind) == C2SSub {
			return SubFrame{Target: target}, nil
		}
		return UnsubFrame{Target: target}, nil

	default:
		return nil, formatErr("c2s", kind, "unknown kind")
	}
}
