/*
Package randx provides functions for generating cryptographically secure random identifiers.

It is used to generate the Base62 server ids handed out during the authentication handshake.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// ServerIDLength is the fixed length of a handshake server id.
	ServerIDLength = 24
)

// Base62 returns a random Base62 string of length n using crypto/rand.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ServerID generates a handshake server id of length ServerIDLength.
func ServerID() (string, error) {
	return Base62(ServerIDLength)
}

// IsValidServerID checks length and alphabet of a client-supplied server id.
func IsValidServerID(id string) bool {
	if len(id) != ServerIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
