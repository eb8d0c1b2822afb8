package crypto

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// Keypair generation is expensive, so tests share one.
var (
	sharedKeyOnce sync.Once
	sharedKey     *rsa.PrivateKey
	sharedKeyErr  error
)

func generateTestKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	sharedKeyOnce.Do(func() {
		sharedKey, sharedKeyErr = GenerateKeyPair()
	})
	if sharedKeyErr != nil {
		t.Fatalf("Failed to generate keypair: %v", sharedKeyErr)
	}
	return sharedKey
}

func TestWrapUnwrapPrivateKey_RoundTrip(t *testing.T) {
	priv := generateTestKeyPair(t)
	masterKey := testKey(t, 0x33)

	env, err := WrapPrivateKey(priv, masterKey)
	if err != nil {
		t.Fatalf("Failed to wrap private key: %v", err)
	}

	got, err := UnwrapPrivateKey(env, masterKey)
	if err != nil {
		t.Fatalf("Failed to unwrap private key: %v", err)
	}
	if !got.Equal(priv) {
		t.Errorf("Unwrapped key does not match the original")
	}
}

func TestUnwrapPrivateKey_WrongMasterKey(t *testing.T) {
	priv := generateTestKeyPair(t)

	env, err := WrapPrivateKey(priv, testKey(t, 0x33))
	if err != nil {
		t.Fatalf("Failed to wrap private key: %v", err)
	}

	if _, err := UnwrapPrivateKey(env, testKey(t, 0x44)); !errors.Is(err, verrors.ErrDecryptionFailed) {
		t.Errorf("Wrong master key should return ErrDecryptionFailed, got: %v", err)
	}
}

func TestWrapPrivateKey_NilKey(t *testing.T) {
	if _, err := WrapPrivateKey(nil, testKey(t, 0x33)); !errors.Is(err, verrors.ErrInvalidKeyMaterial) {
		t.Errorf("Nil private key should return ErrInvalidKeyMaterial, got: %v", err)
	}
}

func TestExportImportPublicKey_RoundTrip(t *testing.T) {
	priv := generateTestKeyPair(t)

	pemBytes, err := ExportPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("Failed to export public key: %v", err)
	}

	got, err := ImportPublicKey(pemBytes)
	if err != nil {
		t.Fatalf("Failed to import public key: %v", err)
	}
	if !got.Equal(&priv.PublicKey) {
		t.Errorf("Imported key does not match the original")
	}
}

func TestImportPublicKey_Garbage(t *testing.T) {
	if _, err := ImportPublicKey([]byte("not a pem block")); !errors.Is(err, verrors.ErrInvalidPublicKey) {
		t.Errorf("Garbage input should return ErrInvalidPublicKey, got: %v", err)
	}
}

func TestWrapUnwrapContentKey_RoundTrip(t *testing.T) {
	priv := generateTestKeyPair(t)

	contentKey, err := NewContentKey()
	if err != nil {
		t.Fatalf("Failed to generate content key: %v", err)
	}

	wrapped, err := WrapContentKey(contentKey, &priv.PublicKey)
	if err != nil {
		t.Fatalf("Failed to wrap content key: %v", err)
	}

	got, err := UnwrapContentKey(wrapped, priv)
	if err != nil {
		t.Fatalf("Failed to unwrap content key: %v", err)
	}
	if !bytes.Equal(got, contentKey) {
		t.Errorf("Unwrapped content key does not match the original")
	}
}

func TestWrapContentKey_WrongSize(t *testing.T) {
	priv := generateTestKeyPair(t)

	if _, err := WrapContentKey(make([]byte, 16), &priv.PublicKey); !errors.Is(err, verrors.ErrInvalidKeyMaterial) {
		t.Errorf("Short content key should return ErrInvalidKeyMaterial, got: %v", err)
	}
}

func TestUnwrapContentKey_Tampered(t *testing.T) {
	priv := generateTestKeyPair(t)

	contentKey, err := NewContentKey()
	if err != nil {
		t.Fatalf("Failed to generate content key: %v", err)
	}
	wrapped, err := WrapContentKey(contentKey, &priv.PublicKey)
	if err != nil {
		t.Fatalf("Failed to wrap content key: %v", err)
	}

	wrapped[0] ^= 0x01
	if _, err := UnwrapContentKey(wrapped, priv); !errors.Is(err, verrors.ErrDecryptionFailed) {
		t.Errorf("Tampered wrapped key should return ErrDecryptionFailed, got: %v", err)
	}
}
