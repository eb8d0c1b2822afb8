package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

const (
	// SaltSize is the required salt length for master key derivation.
	SaltSize = 32

	// KeySize is the size of all symmetric keys (master, content, recovery).
	KeySize = 32

	// DefaultKDFIterations is the PBKDF2 work factor used when no
	// configuration overrides it.
	DefaultKDFIterations = 310_000

	// MinKDFIterations is the floor below which derivation refuses to run.
	MinKDFIterations = 100_000
)

// MasterKey is the root symmetric key derived from a user's password.
// It exists only in memory for the duration of a session.
type MasterKey [KeySize]byte

// Zero overwrites the key material in place.
func (k *MasterKey) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// Equal reports whether two keys match, in constant time.
func (k MasterKey) Equal(other MasterKey) bool {
	return subtle.ConstantTimeCompare(k[:], other[:]) == 1
}

// NewSalt generates a fresh random salt for first-time setup.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveMasterKey derives the master key from a password and salt using
// PBKDF2-SHA256. Deterministic: the same inputs always yield the same key.
func DeriveMasterKey(password string, salt []byte, iterations int) (MasterKey, error) {
	var key MasterKey

	if password == "" {
		return key, fmt.Errorf("password must not be empty: %w", verrors.ErrInvalidKeyMaterial)
	}
	if len(salt) != SaltSize {
		return key, fmt.Errorf("salt must be %d bytes, got %d: %w", SaltSize, len(salt), verrors.ErrInvalidKeyMaterial)
	}
	if iterations < MinKDFIterations {
		return key, fmt.Errorf("KDF iterations %d below minimum %d: %w", iterations, MinKDFIterations, verrors.ErrInvalidKeyMaterial)
	}

	derived := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
	copy(key[:], derived)
	zeroBytes(derived)

	return key, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
