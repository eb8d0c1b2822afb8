// Package store provides the two persistence collaborators of the core:
// a badger-backed local store for wrapped key material (namespaced by user
// id, wipeable on account switch) and an HTTP client for the server-side
// blob/directory store. The server is treated as blind storage: it accepts
// and returns opaque encrypted payloads plus plaintext metadata, and at no
// point holds anything it could decrypt.
package store
