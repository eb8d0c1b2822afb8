package errors

import "errors"

// Key material errors indicate malformed cryptographic inputs.
var (
	// ErrInvalidKeyMaterial indicates a salt or key input has the wrong shape.
	ErrInvalidKeyMaterial = errors.New("invalid key material")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")

	// ErrInvalidPublicKey indicates a public key could not be parsed.
	ErrInvalidPublicKey = errors.New("invalid or unsupported public key format")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrDecryptionFailed indicates an AEAD open or key unwrap failed.
	// For unlock paths this means a wrong password; for content paths it
	// means a tampered blob or the wrong key.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrUnsupportedVersion indicates a ciphertext carries an algorithm
	// version this build does not recognize.
	ErrUnsupportedVersion = errors.New("unsupported algorithm version")
)

// Session errors indicate key-store state preconditions were not met.
var (
	// ErrNotUnlocked indicates an operation requiring key material was
	// attempted while the session is locked.
	ErrNotUnlocked = errors.New("vault is not unlocked")

	// ErrVaultNotInitialized indicates no key material exists for this user.
	ErrVaultNotInitialized = errors.New("vault has not been initialized")

	// ErrVaultAlreadyInitialized indicates key material already exists for this user.
	ErrVaultAlreadyInitialized = errors.New("vault has already been initialized")

	// ErrInconsistentState indicates the server-side encryption flag and the
	// local key material disagree in a way that needs explicit user input.
	ErrInconsistentState = errors.New("local key material and server state are inconsistent")
)

// Sharing errors indicate failures in the key-sharing protocol.
var (
	// ErrRecipientKeyNotFound indicates the recipient has no public key on file.
	ErrRecipientKeyNotFound = errors.New("recipient public key not found")

	// ErrUnauthorizedShare indicates the caller holds no owner-wrapped key
	// for the content being shared.
	ErrUnauthorizedShare = errors.New("no owner key for this content")

	// ErrShareNotFound indicates no share record exists for the
	// (content, recipient) pair.
	ErrShareNotFound = errors.New("share record not found")

	// ErrShareExpired indicates the share record exists but its expiry has passed.
	ErrShareExpired = errors.New("share record has expired")

	// ErrSelfShare indicates a user attempted to share content with themselves.
	ErrSelfShare = errors.New("cannot share content with yourself")
)

// Recovery errors indicate failures in the recovery-key mechanism.
var (
	// ErrRecoveryFailed indicates the supplied mnemonic does not unwrap the
	// recovery credential.
	ErrRecoveryFailed = errors.New("recovery failed")

	// ErrRecoveryNotConfigured indicates the user never set up recovery.
	ErrRecoveryNotConfigured = errors.New("recovery is not configured")
)

// Store errors indicate issues with local or remote persistence.
var (
	// ErrKeyNotFound indicates stored key material could not be located.
	ErrKeyNotFound = errors.New("encryption key not found")

	// ErrContentNotFound indicates the requested content blob does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrUserNotFound indicates the specified user could not be found.
	ErrUserNotFound = errors.New("user not found")
)
