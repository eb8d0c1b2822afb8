// Package sharing implements re-encryption-based key sharing.
//
// Sharing a content item means unwrapping its content key with the owner's
// private key and re-wrapping the same key under the recipient's public key.
// Plaintext keys never leave process memory; the store only ever holds
// wrapped forms. Revocation deletes the recipient's ShareRecord; no content
// re-encryption is required, because that record held the recipient's only
// path to the key.
//
// Known boundary: a recipient who already fetched and decrypted content
// before revocation retains whatever they cached. That is inherent to
// key-wrapping schemes without server-side re-encryption and is documented
// rather than fixed.
package sharing
