/*
Package protocol implements the binary WebSocket envelope.

This file defines FormatError, returned for frames that cannot be decoded.
*/
package protocol

import "fmt"

// FormatError reports a frame that does not match the wire layout of its kind.
// The connection that sent it is misbehaving; nothing else is affected.
type FormatError struct {
	// Direction is "c2s" or "s2c".
	Direction string
	// Kind is the leading discriminator byte, if one was present.
	Kind byte
	// Reason describes what was wrong.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("protocol: malformed %s frame (kind %d): %s", e.Direction, e.Kind, e.Reason)
}

func formatErr(direction string, kind byte, format string, args ...any) *FormatError {
	return &FormatError{Direction: direction, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
