// Package crypto provides the cryptographic primitives of the encryption core.
//
// This package handles master key derivation, the personal keypair, and
// content encryption. It is pure: no I/O, no session state, no persistence.
//
// # Key Hierarchy
//
// The core uses a hybrid scheme:
//
//  1. A master key is derived from the user's password with PBKDF2-SHA256
//     over a random per-user salt (the salt is not secret and is persisted
//     in plaintext).
//  2. A personal RSA-3072 keypair is generated once per user. The private
//     key is persisted only wrapped under the master key; the public key is
//     published to the server directory.
//  3. Each content item gets a fresh random 256-bit content key. The content
//     key is wrapped under the owner's public key with RSA-OAEP; sharing
//     wraps additional copies under recipients' public keys.
//
// This allows multiple users to read the same encrypted content without
// sharing private keys, and makes revocation a matter of deleting one
// wrapped copy.
//
// # Symmetric Encryption
//
// All symmetric encryption is XChaCha20-Poly1305 with random 24-byte nonces.
// Associated data binds every envelope to its purpose (private-key wrapping,
// recovery wrapping, content chunk index), so blobs cannot be replayed in a
// different role. Authentication failures always surface as
// ErrDecryptionFailed; partial plaintext is never returned.
//
// Content above a configurable threshold is split into fixed-size chunks.
// Each chunk is sealed with a nonce derived from the base nonce and chunk
// index, and the index plus chunk count are authenticated as associated
// data, so chunks cannot be reordered, duplicated, or dropped undetected.
//
// # Versioning
//
// Every EncryptedContent carries an explicit algorithm version tag. The
// current format is AlgorithmV1 (chunked XChaCha20-Poly1305); AlgorithmV0
// (single-blob NaCl secretbox, nonce-prefixed) is still decodable for
// content encrypted by earlier releases. Unknown tags fail with
// ErrUnsupportedVersion.
package crypto
