// Package audit appends a JSONL record of vault operations (setup, unlock,
// encrypt, share, revoke, recovery, reset) to the local data directory.
// Audit logging is best-effort: a failed write never fails the operation.
// Entries carry identifiers and counts only: no key material, passwords,
// or plaintext ever reaches the log.
package audit
