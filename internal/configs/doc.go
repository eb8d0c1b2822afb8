// Package configs manages user configuration for the encryption core.
//
// Configuration lives in a single TOML file under the platform config
// directory (e.g., ~/.config/lifestyle-vault/config.toml) and carries the
// user's identity, the blob-store endpoint, and the vault's tunable
// parameters (KDF work factor, chunking threshold, idle timeout, cached
// credential TTL). Key material is never stored here; it lives in the local
// key store under the platform data directory.
package configs
