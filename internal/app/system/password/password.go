// Package password abstracts credential hashing behind a small
// interface so the lifecycle engine never touches hashing mechanics
// directly. The default implementation is bcrypt.
package password

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies plaintext credentials.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Bcrypt is the production Hasher.
type Bcrypt struct {
	Cost int // 0 means bcrypt.DefaultCost
}

func (b Bcrypt) Hash(plaintext string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b Bcrypt) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Generate returns a random plaintext credential suitable for emailing
// to a newly approved head. URL-safe base64, 12 characters.
func Generate() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// treat that as unrecoverable.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
