// Package password hashes and verifies admin passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for new hashes.
const Cost = 10

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash for passwords over MaxLength bytes.
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hash returns the bcrypt hash of plain.
func Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash is treated
// as a mismatch.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
