package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match.
var ErrMismatch = errors.New("password mismatch")

// MaxHashedLen is the longest password bcrypt reads. Longer input would be
// truncated, so it is refused outright.
const MaxHashedLen = 72

// GenerateToken creates a 32-byte cryptographically random token, base64url
// encoded without padding.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of the provided password, for ADMIN_PASSWORD_HASH.
func Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > MaxHashedLen {
		return "", fmt.Errorf("password longer than %d bytes cannot be hashed", MaxHashedLen)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyHash checks a password against a bcrypt hash. Passwords longer than
// MaxHashedLen never match, since bcrypt would only compare their prefix.
func VerifyHash(password, hash string) error {
	if len(password) > MaxHashedLen {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}

// VerifyPlain compares in constant time. Differing lengths still mismatch.
func VerifyPlain(password, expected string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return ErrMismatch
	}
	return nil
}
