package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// Envelope is a symmetric AEAD ciphertext plus its nonce, with binary fields
// base64-encoded so it can cross the store boundary as text.
type Envelope struct {
	NonceB64 string `json:"nonce_b64" toml:"nonce_b64"`
	CTB64    string `json:"ct_b64" toml:"ct_b64"`
}

// Seal encrypts plaintext under key using XChaCha20-Poly1305 with a fresh
// random nonce. The aad is bound into the authentication tag; Open must be
// called with the identical aad.
func Seal(key [KeySize]byte, plaintext, aad []byte) (Envelope, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to construct AEAD: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ct := aead.Seal(nil, nonce, plaintext, aad)
	return Envelope{
		NonceB64: base64.StdEncoding.EncodeToString(nonce),
		CTB64:    base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// Open reverses Seal. Any authentication failure (wrong key, wrong aad, or a
// tampered blob) surfaces as ErrDecryptionFailed; partial plaintext is never
// returned.
func Open(key [KeySize]byte, env Envelope, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to construct AEAD: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(env.NonceB64)
	if err != nil {
		return nil, fmt.Errorf("malformed nonce: %w", verrors.ErrDecryptionFailed)
	}
	if len(nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("nonce must be %d bytes: %w", chacha20poly1305.NonceSizeX, verrors.ErrDecryptionFailed)
	}

	ct, err := base64.StdEncoding.DecodeString(env.CTB64)
	if err != nil {
		return nil, fmt.Errorf("malformed ciphertext: %w", verrors.ErrDecryptionFailed)
	}

	plaintext, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, verrors.ErrDecryptionFailed
	}
	return plaintext, nil
}
