/*
Package randx provides functions for generating cryptographically secure random numbers and unique identifiers.

It is primarily used to generate UUID identifiers for messages, connections, and accounts,
and fixed-length Base62 reference codes for anonymous widget visitors.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// VisitorRefLength is the fixed length of the visitor reference code shown to agents.
	VisitorRefLength = 6
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a unique identifier for a single realtime session.
// Every websocket upgrade gets a fresh one, even for the same identity.
func ConnectionID() string {
	return uuid.New().String()
}

// AgentID generates a unique identifier for a new staff account.
func AgentID() string {
	return uuid.New().String()
}

// VisitorID generates a unique identity key for an anonymous widget session.
func VisitorID() string {
	return uuid.New().String()
}

// VisitorRef generates a short Base62 reference code for an anonymous visitor,
// using a cryptographically secure random number generator (crypto/rand).
func VisitorRef() (string, error) {
	result := make([]byte, VisitorRefLength)

	for i := 0; i < VisitorRefLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for visitor ref: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}
