package recovery

import (
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// Method identifies how a recovery credential was produced.
type Method string

const (
	// MethodNone means the user opted out: a forgotten password means the
	// data is permanently lost.
	MethodNone Method = "none"

	// MethodPhrase is a single 24-word mnemonic holder.
	MethodPhrase Method = "phrase"
)

// recoveryKeyInfo domain-separates the HKDF expansion of the mnemonic seed.
var recoveryKeyInfo = []byte("lifestyle-vault:recovery-key:v1")

// recoveryAAD binds the wrapped master key blob to its purpose.
var recoveryAAD = []byte("lifestyle-vault:recovery:v1")

// Credential is the server-persisted recovery blob: the master key wrapped
// under a key derived from the mnemonic. Absence means no recovery possible.
type Credential struct {
	Method   Method          `json:"method"`
	Envelope crypto.Envelope `json:"envelope"`
}

// Setup generates a fresh 24-word mnemonic (256 bits of entropy), derives a
// recovery key from it, and wraps the master key under that recovery key.
// The mnemonic is returned to show the user exactly once; the credential is
// returned for the caller to persist.
func Setup(masterKey crypto.MasterKey) (mnemonic string, cred *Credential, err error) {
	entropy, err := bip39.NewEntropy(256) // 256 bits = 24 words
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	recoveryKey, err := deriveRecoveryKey(mnemonic)
	if err != nil {
		return "", nil, err
	}
	defer recoveryKey.Zero()

	env, err := crypto.Seal(recoveryKey, masterKey[:], recoveryAAD)
	if err != nil {
		return "", nil, fmt.Errorf("failed to wrap master key: %w", err)
	}

	return mnemonic, &Credential{Method: MethodPhrase, Envelope: env}, nil
}

// RecoverMasterKey re-derives the recovery key from the supplied mnemonic
// and unwraps the master key. A wrong mnemonic fails with ErrRecoveryFailed.
func RecoverMasterKey(mnemonic string, cred *Credential) (crypto.MasterKey, error) {
	var masterKey crypto.MasterKey

	if cred == nil || cred.Method == MethodNone {
		return masterKey, verrors.ErrRecoveryNotConfigured
	}
	if cred.Method != MethodPhrase {
		return masterKey, fmt.Errorf("recovery method %q: %w", cred.Method, verrors.ErrUnsupportedVersion)
	}

	recoveryKey, err := deriveRecoveryKey(mnemonic)
	if err != nil {
		return masterKey, fmt.Errorf("%v: %w", err, verrors.ErrRecoveryFailed)
	}
	defer recoveryKey.Zero()

	raw, err := crypto.Open(recoveryKey, cred.Envelope, recoveryAAD)
	if err != nil {
		if errors.Is(err, verrors.ErrDecryptionFailed) {
			return masterKey, verrors.ErrRecoveryFailed
		}
		return masterKey, err
	}
	if len(raw) != crypto.KeySize {
		return masterKey, verrors.ErrRecoveryFailed
	}

	copy(masterKey[:], raw)
	for i := range raw {
		raw[i] = 0
	}
	return masterKey, nil
}

// ReencryptUnderNewPassword derives a fresh master key from the new password
// and re-wraps the private key under it. The keypair itself is unchanged, so
// previously wrapped content keys and shares stay valid.
func ReencryptUnderNewPassword(priv *rsa.PrivateKey, newPassword string, iterations int) (newSalt []byte, newMasterKey crypto.MasterKey, wrapped crypto.Envelope, err error) {
	newSalt, err = crypto.NewSalt()
	if err != nil {
		return nil, newMasterKey, crypto.Envelope{}, err
	}

	newMasterKey, err = crypto.DeriveMasterKey(newPassword, newSalt, iterations)
	if err != nil {
		return nil, newMasterKey, crypto.Envelope{}, err
	}

	wrapped, err = crypto.WrapPrivateKey(priv, newMasterKey)
	if err != nil {
		newMasterKey.Zero()
		return nil, newMasterKey, crypto.Envelope{}, err
	}

	return newSalt, newMasterKey, wrapped, nil
}

// deriveRecoveryKey turns a mnemonic into the symmetric recovery key:
// BIP39 seed expansion followed by HKDF-SHA256 with a domain label.
func deriveRecoveryKey(mnemonic string) (crypto.MasterKey, error) {
	var key crypto.MasterKey

	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return key, fmt.Errorf("mnemonic required: %w", verrors.ErrInvalidKeyMaterial)
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return key, fmt.Errorf("invalid mnemonic phrase: %w", verrors.ErrInvalidKeyMaterial)
	}

	// Empty passphrase: the mnemonic itself is the secret.
	seed := bip39.NewSeed(mnemonic, "")

	r := hkdf.New(sha256.New, seed, nil, recoveryKeyInfo)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("failed to derive recovery key: %w", err)
	}
	for i := range seed {
		seed[i] = 0
	}
	return key, nil
}
