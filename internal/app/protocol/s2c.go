/*
Package protocol defines the binary frames exchanged over live connections.

Every frame is one discriminator byte followed by a fixed layout for that kind.
Integers are big-endian and user identifiers are the 16 raw UUID bytes.
*/
package protocol

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// S2CKind discriminates server-to-client frames.
type S2CKind byte

const (
	S2CAuth S2CKind = iota
	S2CPing
	S2CEvent
	S2CToast
	S2CChat
	S2CNotice
)

func (k S2CKind) String() string {
	switch k {
	case S2CAuth:
		return "auth"
	case S2CPing:
		return "ping"
	case S2CEvent:
		return "event"
	case S2CToast:
		return "toast"
	case S2CChat:
		return "chat"
	case S2CNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// ServerMessage is any frame the server sends. The set is closed.
type ServerMessage interface {
	Kind() S2CKind
	appendPayload(dst []byte) []byte
}

// Auth acknowledges a successful token frame.
type Auth struct{}

// Ping relays a client ping to the owner's watchers.
type Ping struct {
	Owner uuid.UUID
	ID    uint32
	Sync  bool
	Data  []byte
}

// Event tells the receiver that Subject's avatar changed and should be re-fetched.
type Event struct {
	Subject uuid.UUID
}

// Toast shows a popup on the client. Message is optional.
type Toast struct {
	Type    byte
	Title   string
	Message string
}

// Chat prints a line in the client's chat.
type Chat struct {
	Text string
}

// Notice carries a numeric notice code.
type Notice struct {
	Code byte
}

func (Auth) Kind() S2CKind { return S2CAuth }
func (Ping) Kind() S2CKind { return S2CPing }
func (Event) Kind() S2CKind { return S2CEvent }
func (Toast) Kind() S2CKind { return S2CToast }
func (Chat) Kind() S2CKind { return S2CChat }
func (Notice) Kind() S2CKind { return S2CNotice }

func (Auth) appendPayload(dst []byte) []byte { return dst }

func (m Ping) appendPayload(dst []byte) []byte {
	dst = append(dst, m.Owner[:]...)
	dst = binary.BigEndian.AppendUint32(dst, m.ID)
	dst = append(dst, boolByte(m.Sync))
	return append(dst, m.Data...)
}

func (m Event) appendPayload(dst []byte) []byte {
	return append(dst, m.Subject[:]...)
}

func (m Toast) appendPayload(dst []byte) []byte {
	dst = append(dst, m.Type)
	dst = append(dst, m.Title...)
	if m.Message != "" {
		dst = append(dst, 0)
		dst = append(dst, m.Message...)
	}
	return dst
}

func (m Chat) appendPayload(dst []byte) []byte {
	return append(dst, m.Text...)
}

func (m Notice) appendPayload(dst []byte) []byte {
	return append(dst, m.Code)
}

// Encode serializes a server frame. It cannot fail.
func Encode(m ServerMessage) []byte {
	return m.appendPayload([]byte{byte(m.Kind())})
}

// EncodeEvent is shorthand for Encode(Event{Subject: subject}).
func EncodeEvent(subject uuid.UUID) []byte {
	return Encode(Event{Subject: subject})
}

// DecodeServer parses a server frame.
func DecodeServer(frame []byte) (ServerMessage, error) {
	if len(frame) == 0 {
		return nil, formatErr("s2c", 0, "empty frame")
	}

	kind, body := frame[0], frame[1:]

	switch S2CKind(kind) {
	case S2CAuth:
		if len(body) != 0 {
			return nil, formatErr("s2c", kind, "auth carries no payload, got %d bytes", len(body))
		}
		return Auth{}, nil

	case S2CPing:
		if len(body) < 16+4+1 {
			return nil, formatErr("s2c", kind, "ping payload too short: %d bytes", len(body))
		}
		return Ping{
			Owner: uuid.UUID(body[:16]),
			ID:    binary.BigEndian.Uint32(body[16:20]),
			Sync:  body[20] != 0,
			Data:  bytes.Clone(body[21:]),
		}, nil

	case S2CEvent:
		if len(body) != 16 {
			return nil, formatErr("s2c", kind, "event payload must be 16 bytes, got %d", len(body))
		}
		return Event{Subject: uuid.UUID(body)}, nil

	case S2CToast:
		if len(body) < 1 {
			return nil, formatErr("s2c", kind, "toast payload missing type byte")
		}
		title, message, _ := bytes.Cut(body[1:], []byte{0})
		return Toast{Type: body[0], Title: string(title), Message: string(message)}, nil

	case S2CChat:
		return Chat{Text: string(body)}, nil

	case S2CNotice:
		if len(body) != 1 {
			return nil, formatErr("s2c", kind, "notice payload must be 1 byte, got %d", len(body))
		}
		return Notice{Code: body[0]}, nil

	default:
		return nil, formatErr("s2c", kind, "unknown kind")
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
