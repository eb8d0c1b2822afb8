package session

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// State is the lock state of a session.
type State int

const (
	// Uninitialized means no key material exists for this user on this device.
	Uninitialized State = iota

	// Locked means wrapped key material exists but the master key is not
	// resident in memory.
	Locked

	// Unlocked means the master key and decrypted private key are held in
	// memory and cryptographic operations are permitted.
	Unlocked
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// KeyMaterial is the persisted (always wrapped) form of a user's keys.
// Nothing in here is secret on its own: the salt is public by design and the
// private key is AEAD-encrypted under the master key.
type KeyMaterial struct {
	Salt              []byte          `json:"salt"`
	WrappedPrivateKey crypto.Envelope `json:"wrapped_private_key"`
	PublicKeyPEM      []byte          `json:"public_key_pem"`
}

// KeyStore persists wrapped key material, namespaced by user id.
type KeyStore interface {
	// LoadKeyMaterial returns ErrKeyNotFound if no material exists.
	LoadKeyMaterial(userID string) (*KeyMaterial, error)
	SaveKeyMaterial(userID string, km *KeyMaterial) error
	DeleteKeyMaterial(userID string) error
}

// Options tunes a session.
type Options struct {
	// KDFIterations is the PBKDF2 work factor. Zero means the default.
	KDFIterations int

	// IdleTimeout locks the session after this much inactivity.
	// Zero disables the idle timer.
	IdleTimeout time.Duration

	// Credentials is the optional auto-unlock cache. Nil disables
	// auto-unlock without touching anything else.
	Credentials *CredentialCache
}

// Session is the single authoritative owner of a user's in-memory key
// material. It is passed explicitly to every operation; there is no ambient
// global state. All methods are safe for concurrent use.
type Session struct {
	userID string
	store  KeyStore
	opts   Options

	// initMu serializes setup/unlock/reset so two concurrent
	// initializations cannot race a second KDF derivation or corrupt
	// persisted material. A second caller waits for the first.
	initMu sync.Mutex

	// mu guards the fields below.
	mu          sync.Mutex
	state       State
	masterKey   crypto.MasterKey
	privateKey  *rsa.PrivateKey
	publicKeyID string
	idleTimer   *time.Timer
}

// New creates a session for userID backed by store. The initial state is
// Locked when wrapped material exists locally and Uninitialized otherwise.
// When entering Locked with a cached credential available, auto-unlock is
// attempted silently.
func New(userID string, store KeyStore, opts Options) (*Session, error) {
	if opts.KDFIterations == 0 {
		opts.KDFIterations = crypto.DefaultKDFIterations
	}

	s := &Session{
		userID: userID,
		store:  store,
		opts:   opts,
		state:  Uninitialized,
	}

	_, err := store.LoadKeyMaterial(userID)
	switch {
	case err == nil:
		s.state = Locked
	case errors.Is(err, verrors.ErrKeyNotFound):
		// No local material; stay Uninitialized.
	default:
		// A corrupted or unreadable local store degrades to Uninitialized
		// rather than crashing the session.
		return s, nil
	}

	if s.state == Locked {
		s.AutoUnlock()
	}
	return s, nil
}

// UserID returns the user this session belongs to.
func (s *Session) UserID() string {
	return s.userID
}

// State returns the current lock state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Unlocked reports whether cryptographic operations are currently permitted.
func (s *Session) Unlocked() bool {
	return s.State() == Unlocked
}

// PublicKeyID returns a stable fingerprint of the session's public key, or
// "" while no key is resolvable.
func (s *Session) PublicKeyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publicKeyID
}

// Keys returns a per-operation snapshot of the key material. Callers use the
// snapshot for the whole operation: a concurrent Lock cannot yank keys out
// from under an in-flight decrypt, it only prevents new snapshots.
func (s *Session) Keys() (crypto.MasterKey, *rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Unlocked {
		return crypto.MasterKey{}, nil, verrors.ErrNotUnlocked
	}

	var mk crypto.MasterKey
	copy(mk[:], s.masterKey[:])
	return mk, s.privateKey, nil
}

// Setup derives a master key from password, generates the personal keypair,
// persists the wrapped material, and transitions Uninitialized → Unlocked.
func (s *Session) Setup(password string) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.State() != Uninitialized {
		return verrors.ErrVaultAlreadyInitialized
	}

	return s.initialize(password)
}

// Unlock re-derives the master key from password and unwraps the private
// key, transitioning Locked → Unlocked. A wrong password fails with
// ErrDecryptionFailed and the session remains Locked.
func (s *Session) Unlock(password string) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	switch s.State() {
	case Unlocked:
		return nil
	case Uninitialized:
		return verrors.ErrVaultNotInitialized
	}

	km, err := s.store.LoadKeyMaterial(s.userID)
	if err != nil {
		return fmt.Errorf("loading key material: %w", err)
	}

	masterKey, err := crypto.DeriveMasterKey(password, km.Salt, s.opts.KDFIterations)
	if err != nil {
		return err
	}

	priv, err := crypto.UnwrapPrivateKey(km.WrappedPrivateKey, masterKey)
	if err != nil {
		masterKey.Zero()
		return err
	}

	s.install(masterKey, priv, km.PublicKeyPEM)

	// Extend the cached credential only on successful unlock.
	if s.opts.Credentials != nil {
		s.opts.Credentials.Store(password)
	}
	return nil
}

// AutoUnlock attempts a silent unlock with the cached credential. Failure
// clears the cache and leaves the session Locked without surfacing an error;
// it is a best-effort convenience, not a correctness mechanism.
func (s *Session) AutoUnlock() {
	cache := s.opts.Credentials
	if cache == nil {
		return
	}

	password, ok := cache.Get()
	if !ok {
		return
	}

	if err := s.Unlock(password); err != nil {
		cache.Clear()
	}
}

// Lock discards the in-memory master key and private key reference,
// transitioning Unlocked → Locked. Calling Lock on an already-locked or
// uninitialized session is a no-op.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

// lockLocked clears key material. Caller holds s.mu.
func (s *Session) lockLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.state != Unlocked {
		return
	}

	s.masterKey.Zero()
	s.privateKey = nil
	s.publicKeyID = ""
	s.state = Locked
}

// Refresh re-examines the local store, picking up material restored after
// the session was created (e.g., pulled from the server onto a new device).
// Only an Uninitialized session can move to Locked this way.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Uninitialized {
		return
	}
	if _, err := s.store.LoadKeyMaterial(s.userID); err == nil {
		s.state = Locked
	}
}

// Touch resets the idle timer. Operations call it on activity.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Unlocked && s.idleTimer != nil {
		s.idleTimer.Reset(s.opts.IdleTimeout)
	}
}

// Reset destructively discards all existing key material, generates a fresh
// keypair under newPassword, and transitions to Unlocked. Old wrapped
// content keys become permanently unreadable; this must only ever run on an
// explicit user request, never automatically.
func (s *Session) Reset(newPassword string) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.Lock()
	s.lockLocked()
	s.state = Uninitialized
	s.mu.Unlock()

	if err := s.store.DeleteKeyMaterial(s.userID); err != nil && !errors.Is(err, verrors.ErrKeyNotFound) {
		return fmt.Errorf("discarding key material: %w", err)
	}
	if s.opts.Credentials != nil {
		s.opts.Credentials.Clear()
	}

	return s.initialize(newPassword)
}

// initialize runs first-time key generation under initMu.
func (s *Session) initialize(password string) error {
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}

	masterKey, err := crypto.DeriveMasterKey(password, salt, s.opts.KDFIterations)
	if err != nil {
		return err
	}

	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		masterKey.Zero()
		return err
	}

	wrapped, err := crypto.WrapPrivateKey(priv, masterKey)
	if err != nil {
		masterKey.Zero()
		return err
	}

	pubPEM, err := crypto.ExportPublicKey(&priv.PublicKey)
	if err != nil {
		masterKey.Zero()
		return err
	}

	km := &KeyMaterial{
		Salt:              salt,
		WrappedPrivateKey: wrapped,
		PublicKeyPEM:      pubPEM,
	}
	if err := s.store.SaveKeyMaterial(s.userID, km); err != nil {
		masterKey.Zero()
		return fmt.Errorf("persisting key material: %w", err)
	}

	s.install(masterKey, priv, pubPEM)

	if s.opts.Credentials != nil {
		s.opts.Credentials.Store(password)
	}
	return nil
}

// install moves freshly derived key material into the session and starts
// the idle timer.
func (s *Session) install(masterKey crypto.MasterKey, priv *rsa.PrivateKey, pubPEM []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.masterKey[:], masterKey[:])
	masterKey.Zero()
	s.privateKey = priv
	s.publicKeyID = FingerprintPublicKey(pubPEM)
	s.state = Unlocked

	if s.opts.IdleTimeout > 0 {
		if s.idleTimer != nil {
			s.idleTimer.Stop()
		}
		s.idleTimer = time.AfterFunc(s.opts.IdleTimeout, s.Lock)
	}
}

// FingerprintPublicKey returns a short hex identifier for a PEM public key.
func FingerprintPublicKey(pubPEM []byte) string {
	sum := sha256.Sum256(pubPEM)
	return hex.EncodeToString(sum[:8])
}
