package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// keypairBits sizes the personal keypair for long-term key wrapping.
const keypairBits = 3072

// privateKeyAAD binds wrapped private keys to their purpose and format
// version, so a blob cannot be replayed as some other envelope.
var privateKeyAAD = []byte("lifestyle-vault:private-key:v1")

// GenerateKeyPair creates a fresh RSA keypair used exclusively for key
// wrapping (RSA-OAEP), never for bulk content encryption. Pure generation;
// the caller persists the result.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keypairBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return priv, nil
}

// WrapPrivateKey encrypts the exported private key under the master key with
// a fresh random nonce.
func WrapPrivateKey(priv *rsa.PrivateKey, masterKey MasterKey) (Envelope, error) {
	if priv == nil {
		return Envelope{}, fmt.Errorf("nil private key: %w", verrors.ErrInvalidKeyMaterial)
	}

	der := x509.MarshalPKCS1PrivateKey(priv)
	env, err := Seal(masterKey, der, privateKeyAAD)
	zeroBytes(der)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to wrap private key: %w", err)
	}
	return env, nil
}

// UnwrapPrivateKey is the inverse of WrapPrivateKey. A wrong master key fails
// with ErrDecryptionFailed rather than silently producing garbage, because
// the envelope is authenticated.
func UnwrapPrivateKey(env Envelope, masterKey MasterKey) (*rsa.PrivateKey, error) {
	der, err := Open(masterKey, env, privateKeyAAD)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(der)

	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unwrapped key: %w", verrors.ErrInvalidPrivateKey)
	}
	return priv, nil
}

// ExportPublicKey serializes a public key to PEM for the server-resident
// public key directory.
func ExportPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ImportPublicKey parses a PEM public key fetched from the directory.
func ImportPublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("failed to decode PEM block containing public key: %w", verrors.ErrInvalidPublicKey)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", verrors.ErrInvalidPublicKey)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key: %w", verrors.ErrInvalidPublicKey)
	}
	return rsaPub, nil
}

// WrapContentKey encrypts a raw content key under a public key with RSA-OAEP.
func WrapContentKey(contentKey []byte, pub *rsa.PublicKey) ([]byte, error) {
	if len(contentKey) != KeySize {
		return nil, fmt.Errorf("content key must be %d bytes, got %d: %w", KeySize, len(contentKey), verrors.ErrInvalidKeyMaterial)
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, contentKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap content key: %w", err)
	}
	return wrapped, nil
}

// UnwrapContentKey decrypts a wrapped content key with the private key.
// Failure means a tampered blob or a key belonging to someone else.
func UnwrapContentKey(wrapped []byte, priv *rsa.PrivateKey) ([]byte, error) {
	contentKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrapped, nil)
	if err != nil {
		return nil, verrors.ErrDecryptionFailed
	}
	if len(contentKey) != KeySize {
		zeroBytes(contentKey)
		return nil, fmt.Errorf("unwrapped key has length %d: %w", len(contentKey), verrors.ErrInvalidKeyMaterial)
	}
	return contentKey, nil
}
