// Package recovery implements mnemonic-based master key recovery.
//
// Setup wraps a copy of the master key under a key derived from a fresh
// 24-word BIP39 mnemonic; the wrapped blob is safe to persist server-side
// because only the mnemonic holder can open it. Recovery re-derives the key
// from the phrase, unwraps the master key, and re-encrypts the private key
// under a new password. The keypair is unchanged, so existing content and
// shares survive a password reset.
//
// Recovery is optional per user. The Credential's Method field is the
// extension point for future schemes (e.g., k-of-n trustee shares).
package recovery
