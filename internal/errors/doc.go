// Package errors provides typed error values for the encryption core.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Key material errors: malformed salts or keys (ErrInvalidKeyMaterial)
//   - Crypto errors: AEAD or unwrap failures (ErrDecryptionFailed)
//   - Session errors: lock-state preconditions (ErrNotUnlocked)
//   - Sharing errors: key-sharing protocol failures (ErrRecipientKeyNotFound)
//   - Recovery errors: mnemonic recovery failures (ErrRecoveryFailed)
//   - Store errors: missing persisted material (ErrKeyNotFound)
//
// # Usage
//
// Return errors from internal packages:
//
//	if len(salt) != crypto.SaltSize {
//	    return nil, errors.ErrInvalidKeyMaterial
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, verrors.ErrDecryptionFailed) {
//	    // Show generic "incorrect password" message
//	}
//
// A failed AEAD verification always surfaces as ErrDecryptionFailed and is
// never swallowed or replaced with partial plaintext. Unlock paths must not
// distinguish why decryption failed; the CLI renders every ErrDecryptionFailed
// during unlock as the same "incorrect password" message.
package errors
