package session

import (
	"sync"
	"time"
)

// CredentialCache is a short-lived, time-boxed store for the user's
// password, used only for silent auto-unlock. It is the single component
// permitted to hold a plaintext password transiently. Its TTL is independent
// of (and shorter than) the session idle timeout, and is extended only on
// successful unlock.
//
// Deployments that prioritize security over convenience disable it by
// passing a nil cache to the session; nothing else changes.
type CredentialCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	password  string
	expiresAt time.Time
	now       func() time.Time // overridable in tests
}

// NewCredentialCache creates a cache with the given TTL. A TTL of zero or
// less returns nil, which disables auto-unlock entirely.
func NewCredentialCache(ttl time.Duration) *CredentialCache {
	if ttl <= 0 {
		return nil
	}
	return &CredentialCache{ttl: ttl, now: time.Now}
}

// Store caches the password, restarting the TTL window.
func (c *CredentialCache) Store(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = password
	c.expiresAt = c.now().Add(c.ttl)
}

// Get returns the cached password if it has not expired. An expired entry
// is cleared on access.
func (c *CredentialCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.password == "" {
		return "", false
	}
	if c.now().After(c.expiresAt) {
		c.password = ""
		return "", false
	}
	return c.password, true
}

// Clear drops the cached password immediately.
func (c *CredentialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = ""
	c.expiresAt = time.Time{}
}
