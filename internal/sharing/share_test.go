package sharing

import (
	"bytes"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

var (
	keypairOnce sync.Once
	ownerKey    *rsa.PrivateKey
	otherKey    *rsa.PrivateKey
	keypairErr  error
)

func testKeyPairs(t *testing.T) (owner, other *rsa.PrivateKey) {
	t.Helper()
	keypairOnce.Do(func() {
		ownerKey, keypairErr = crypto.GenerateKeyPair()
		if keypairErr != nil {
			return
		}
		otherKey, keypairErr = crypto.GenerateKeyPair()
	})
	if keypairErr != nil {
		t.Fatalf("Failed to generate keypairs: %v", keypairErr)
	}
	return ownerKey, otherKey
}

func encryptTestContent(t *testing.T, ownerPriv *rsa.PrivateKey, plaintext []byte) *crypto.EncryptedContent {
	t.Helper()
	ec, err := crypto.EncryptContent(plaintext, "alice", &ownerPriv.PublicKey, crypto.CipherOptions{})
	if err != nil {
		t.Fatalf("Failed to encrypt content: %v", err)
	}
	ec.ID = "entry-1"
	return ec
}

func TestShareContentKey_RecipientCanDecrypt(t *testing.T) {
	alice, bob := testKeyPairs(t)
	plaintext := []byte("shared journal entry")
	ec := encryptTestContent(t, alice, plaintext)

	record, err := ShareContentKey(ec, alice, "bob", &bob.PublicKey, DefaultPermissions(), nil)
	if err != nil {
		t.Fatalf("Failed to share content key: %v", err)
	}

	if record.ContentID != ec.ID {
		t.Errorf("Expected content id %q, got %q", ec.ID, record.ContentID)
	}
	if record.RecipientUserID != "bob" {
		t.Errorf("Expected recipient %q, got %q", "bob", record.RecipientUserID)
	}
	if !record.Permissions.Read {
		t.Errorf("Default permissions should include read")
	}

	// Bob decrypts the same ciphertext through his wrapped copy.
	got, err := crypto.DecryptContentWithWrappedKey(ec, record.WrappedKeyB64, bob)
	if err != nil {
		t.Fatalf("Recipient failed to decrypt shared content: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Recipient plaintext mismatch: got %q, want %q", got, plaintext)
	}
}

func TestShareContentKey_OwnerCopyUntouched(t *testing.T) {
	alice, bob := testKeyPairs(t)
	ec := encryptTestContent(t, alice, []byte("still mine"))
	ownerWrapped := ec.WrappedKeyB64

	if _, err := ShareContentKey(ec, alice, "bob", &bob.PublicKey, DefaultPermissions(), nil); err != nil {
		t.Fatalf("Failed to share content key: %v", err)
	}

	if ec.WrappedKeyB64 != ownerWrapped {
		t.Errorf("Sharing must not modify the owner's wrapped key")
	}
	if _, err := crypto.DecryptContent(ec, alice); err != nil {
		t.Errorf("Owner should still decrypt after sharing: %v", err)
	}
}

func TestShareContentKey_SelfShare(t *testing.T) {
	alice, _ := testKeyPairs(t)
	ec := encryptTestContent(t, alice, []byte("mine"))

	if _, err := ShareContentKey(ec, alice, "alice", &alice.PublicKey, DefaultPermissions(), nil); !errors.Is(err, verrors.ErrSelfShare) {
		t.Errorf("Sharing with yourself should return ErrSelfShare, got: %v", err)
	}
}

func TestShareContentKey_MissingRecipientKey(t *testing.T) {
	alice, _ := testKeyPairs(t)
	ec := encryptTestContent(t, alice, []byte("mine"))

	if _, err := ShareContentKey(ec, alice, "carol", nil, DefaultPermissions(), nil); !errors.Is(err, verrors.ErrRecipientKeyNotFound) {
		t.Errorf("Missing recipient key should return ErrRecipientKeyNotFound, got: %v", err)
	}
}

func TestShareContentKey_NotTheOwner(t *testing.T) {
	alice, bob := testKeyPairs(t)
	ec := encryptTestContent(t, alice, []byte("alice's entry"))

	// Bob's private key cannot open Alice's wrapped copy.
	if _, err := ShareContentKey(ec, bob, "carol", &bob.PublicKey, DefaultPermissions(), nil); !errors.Is(err, verrors.ErrUnauthorizedShare) {
		t.Errorf("Non-owner share attempt should return ErrUnauthorizedShare, got: %v", err)
	}
}

func TestShareContentKey_MalformedOwnerKey(t *testing.T) {
	alice, bob := testKeyPairs(t)
	ec := encryptTestContent(t, alice, []byte("mine"))
	ec.WrappedKeyB64 = base64.StdEncoding.EncodeToString([]byte("junk"))

	if _, err := ShareContentKey(ec, alice, "bob", &bob.PublicKey, DefaultPermissions(), nil); !errors.Is(err, verrors.ErrUnauthorizedShare) {
		t.Errorf("Corrupt owner wrapped key should return ErrUnauthorizedShare, got: %v", err)
	}
}

func TestShareRecord_Expired(t *testing.T) {
	now := time.Now().UTC()

	forever := &ShareRecord{}
	if forever.Expired(now) {
		t.Errorf("A record without an expiry should never expire")
	}

	past := now.Add(-time.Hour)
	expired := &ShareRecord{ExpiresAt: &past}
	if !expired.Expired(now) {
		t.Errorf("A record with a past expiry should be expired")
	}

	future := now.Add(time.Hour)
	live := &ShareRecord{ExpiresAt: &future}
	if live.Expired(now) {
		t.Errorf("A record with a future expiry should not be expired yet")
	}
}
