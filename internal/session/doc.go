// Package session implements the key store and lock/unlock state machine.
//
// A Session is the single authoritative owner of a user's in-memory key
// material and moves through Uninitialized → Locked ⇄ Unlocked; only an
// explicit destructive Reset returns to Uninitialized. Setup, Unlock, and
// Reset are serialized by an internal mutex so concurrent initializations
// cannot race. Operations take a per-call snapshot of the key material via
// Keys(), so an in-flight decrypt either completes with the keys it started
// with or fails cleanly with ErrNotUnlocked; it never observes a
// half-cleared session.
//
// Locking zeroizes the master key in place rather than merely dropping the
// reference, on explicit user action, idle timeout, and logout alike. The
// optional CredentialCache enables silent auto-unlock from a short-lived
// cached password and can be disabled outright without touching the state
// machine.
package session
