package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// memStore is an in-memory KeyStore for tests.
type memStore struct {
	mu sync.Mutex
	m  map[string]*KeyMaterial
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]*KeyMaterial)}
}

func (s *memStore) LoadKeyMaterial(userID string) (*KeyMaterial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	km, ok := s.m[userID]
	if !ok {
		return nil, verrors.ErrKeyNotFound
	}
	return km, nil
}

func (s *memStore) SaveKeyMaterial(userID string, km *KeyMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = km
	return nil
}

func (s *memStore) DeleteKeyMaterial(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

func testOptions() Options {
	return Options{KDFIterations: crypto.MinKDFIterations}
}

func TestSession_SetupTransitionsToUnlocked(t *testing.T) {
	store := newMemStore()
	s, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if s.State() != Uninitialized {
		t.Fatalf("Expected fresh session to be uninitialized, got %v", s.State())
	}

	if err := s.Setup("hunter2 but longer"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	if s.State() != Unlocked {
		t.Errorf("Expected state unlocked after setup, got %v", s.State())
	}
	if s.PublicKeyID() == "" {
		t.Errorf("Expected a public key fingerprint after setup")
	}

	km, err := store.LoadKeyMaterial("alice")
	if err != nil {
		t.Fatalf("Setup should persist key material: %v", err)
	}
	if len(km.Salt) != crypto.SaltSize {
		t.Errorf("Persisted salt has wrong size: %d", len(km.Salt))
	}
	if len(km.PublicKeyPEM) == 0 {
		t.Errorf("Persisted material is missing the public key")
	}
}

func TestSession_SetupTwice(t *testing.T) {
	s, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("first password"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	if err := s.Setup("second password"); !errors.Is(err, verrors.ErrVaultAlreadyInitialized) {
		t.Errorf("Second setup should return ErrVaultAlreadyInitialized, got: %v", err)
	}
}

func TestSession_UnlockBeforeSetup(t *testing.T) {
	s, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := s.Unlock("any password"); !errors.Is(err, verrors.ErrVaultNotInitialized) {
		t.Errorf("Unlock before setup should return ErrVaultNotInitialized, got: %v", err)
	}
}

func TestSession_LockAndUnlock(t *testing.T) {
	store := newMemStore()
	s, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	_, originalPriv, err := s.Keys()
	if err != nil {
		t.Fatalf("Failed to snapshot keys: %v", err)
	}

	s.Lock()
	if s.State() != Locked {
		t.Errorf("Expected state locked, got %v", s.State())
	}
	if _, _, err := s.Keys(); !errors.Is(err, verrors.ErrNotUnlocked) {
		t.Errorf("Keys on a locked session should return ErrNotUnlocked, got: %v", err)
	}

	// Locking again is a no-op.
	s.Lock()
	if s.State() != Locked {
		t.Errorf("Second lock should leave the session locked, got %v", s.State())
	}

	if err := s.Unlock("a long passphrase"); err != nil {
		t.Fatalf("Failed to unlock with the correct password: %v", err)
	}
	if s.State() != Unlocked {
		t.Errorf("Expected state unlocked after unlock, got %v", s.State())
	}

	_, priv, err := s.Keys()
	if err != nil {
		t.Fatalf("Failed to snapshot keys after unlock: %v", err)
	}
	if !priv.Equal(originalPriv) {
		t.Errorf("Unlock should restore the same keypair")
	}
}

func TestSession_UnlockWrongPassword(t *testing.T) {
	s, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("the right password"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}
	s.Lock()

	if err := s.Unlock("the wrong password"); !errors.Is(err, verrors.ErrDecryptionFailed) {
		t.Errorf("Wrong password should return ErrDecryptionFailed, got: %v", err)
	}
	if s.State() != Locked {
		t.Errorf("Failed unlock should leave the session locked, got %v", s.State())
	}
}

func TestSession_KeysSnapshotSurvivesLock(t *testing.T) {
	s, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	masterKey, priv, err := s.Keys()
	if err != nil {
		t.Fatalf("Failed to snapshot keys: %v", err)
	}

	s.Lock()

	// The snapshot is the caller's copy; locking must not zero it.
	var empty crypto.MasterKey
	if masterKey.Equal(empty) {
		t.Errorf("Snapshot master key should survive a concurrent lock")
	}
	if priv == nil {
		t.Errorf("Snapshot private key should survive a concurrent lock")
	}
}

func TestSession_NewWithExistingMaterialStartsLocked(t *testing.T) {
	store := newMemStore()
	first, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := first.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	// A second session over the same store models a process restart.
	second, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create second session: %v", err)
	}
	if second.State() != Locked {
		t.Errorf("Expected restarted session to be locked, got %v", second.State())
	}
}

func TestSession_RefreshPicksUpRestoredMaterial(t *testing.T) {
	store := newMemStore()
	s, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if s.State() != Uninitialized {
		t.Fatalf("Expected uninitialized, got %v", s.State())
	}

	// Material arrives out of band, e.g. restored from the server.
	other, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create helper session: %v", err)
	}
	if err := other.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up helper session: %v", err)
	}
	km, err := other.store.LoadKeyMaterial("alice")
	if err != nil {
		t.Fatalf("Failed to read helper material: %v", err)
	}
	if err := store.SaveKeyMaterial("alice", km); err != nil {
		t.Fatalf("Failed to plant restored material: %v", err)
	}

	s.Refresh()
	if s.State() != Locked {
		t.Errorf("Refresh should move uninitialized to locked, got %v", s.State())
	}

	if err := s.Unlock("a long passphrase"); err != nil {
		t.Errorf("Restored material should unlock with its password: %v", err)
	}
}

func TestSession_ResetGeneratesNewKeypair(t *testing.T) {
	s, err := New("alice", newMemStore(), testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("old password"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}
	oldFingerprint := s.PublicKeyID()

	if err := s.Reset("new password"); err != nil {
		t.Fatalf("Failed to reset session: %v", err)
	}

	if s.State() != Unlocked {
		t.Errorf("Expected state unlocked after reset, got %v", s.State())
	}
	if s.PublicKeyID() == oldFingerprint {
		t.Errorf("Reset should generate a different keypair")
	}

	s.Lock()
	if err := s.Unlock("old password"); !errors.Is(err, verrors.ErrDecryptionFailed) {
		t.Errorf("Old password should not open the reset vault, got: %v", err)
	}
	if err := s.Unlock("new password"); err != nil {
		t.Errorf("New password should open the reset vault: %v", err)
	}
}

func TestSession_AutoUnlock(t *testing.T) {
	store := newMemStore()
	cache := NewCredentialCache(time.Minute)

	first, err := New("alice", store, Options{KDFIterations: crypto.MinKDFIterations, Credentials: cache})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := first.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	// A restart within the TTL unlocks silently from the cache.
	second, err := New("alice", store, Options{KDFIterations: crypto.MinKDFIterations, Credentials: cache})
	if err != nil {
		t.Fatalf("Failed to create second session: %v", err)
	}
	if second.State() != Unlocked {
		t.Errorf("Expected auto-unlock from cached credential, got %v", second.State())
	}
}

func TestSession_AutoUnlockFailureClearsCache(t *testing.T) {
	store := newMemStore()
	s, err := New("alice", store, testOptions())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	cache := NewCredentialCache(time.Minute)
	cache.Store("stale or wrong password")

	second, err := New("alice", store, Options{KDFIterations: crypto.MinKDFIterations, Credentials: cache})
	if err != nil {
		t.Fatalf("Failed to create second session: %v", err)
	}
	if second.State() != Locked {
		t.Errorf("Failed auto-unlock should leave the session locked, got %v", second.State())
	}
	if _, ok := cache.Get(); ok {
		t.Errorf("Failed auto-unlock should clear the cached credential")
	}
}

func TestSession_IdleTimeoutLocks(t *testing.T) {
	s, err := New("alice", newMemStore(), Options{
		KDFIterations: crypto.MinKDFIterations,
		IdleTimeout:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Setup("a long passphrase"); err != nil {
		t.Fatalf("Failed to set up session: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.State() != Locked {
		if time.Now().After(deadline) {
			t.Fatalf("Session did not lock after the idle timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
