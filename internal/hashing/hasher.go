// Package hashing provides the salted one-way password primitives used by
// the user store.
package hashing

import (
	"errors"
	"fmt"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrMalformedHash is returned by Verify when the stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// Hasher salts and hashes passwords and checks plaintext against a stored hash.
// Verify reports a mismatch as (false, nil); a non-nil error means the
// comparison could not be made at all.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// New returns the hasher for the named algorithm.
func New(algorithm string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(bcryptCost), nil
	case AlgorithmArgon2id:
		return NewArgon2(DefaultArgon2Config())
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}
