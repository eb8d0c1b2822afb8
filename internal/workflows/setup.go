package workflows

import (
	"context"
	"fmt"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/audit"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// SetupOptions configures first-time vault setup.
type SetupOptions struct {
	// Password is the master password; the only secret the user holds.
	Password string
}

// SetupResult contains the outcome of a setup operation.
type SetupResult struct {
	// PublicKeyID is the fingerprint of the freshly published public key.
	PublicKeyID string
}

// Setup performs first-time initialization: derives the master key,
// generates the personal keypair, persists the wrapped material locally,
// publishes the public key, and leaves the session Unlocked.
//
// Returns ErrVaultAlreadyInitialized if key material already exists.
func Setup(ctx context.Context, env *Env, opts SetupOptions) (*SetupResult, error) {
	if err := env.Session.Setup(opts.Password); err != nil {
		return nil, err
	}

	if err := publishKeys(ctx, env); err != nil {
		return nil, err
	}

	if err := env.Local.SetEncryptionEnabled(env.UserID, true); err != nil {
		return nil, fmt.Errorf("recording enabled marker: %w", err)
	}

	entry := audit.LogWithUser("setup")
	entry.PublicKeyID = env.Session.PublicKeyID()
	audit.Log(entry)

	return &SetupResult{PublicKeyID: env.Session.PublicKeyID()}, nil
}

// publishKeys pushes the wrapped key material to the server (when online)
// and records the public key in the local directory either way.
func publishKeys(ctx context.Context, env *Env) error {
	km, err := env.Local.LoadKeyMaterial(env.UserID)
	if err != nil {
		return fmt.Errorf("loading key material for publish: %w", err)
	}

	if err := env.Local.SavePublicKey(env.UserID, km.PublicKeyPEM); err != nil {
		return fmt.Errorf("recording public key: %w", err)
	}

	if env.Online() {
		if err := env.Remote.PutKeys(ctx, env.UserID, km.PublicKeyPEM, km.WrappedPrivateKey, km.Salt); err != nil {
			return fmt.Errorf("publishing keys: %w", err)
		}
	}
	return nil
}

// ResetOptions configures a destructive reset.
type ResetOptions struct {
	// NewPassword is the password for the regenerated identity.
	NewPassword string

	// Confirmed must be true; reset discards the existing keypair and
	// logically orphans everything encrypted under it. The CLI sets this
	// only after an explicit user confirmation.
	Confirmed bool
}

// Reset destructively regenerates the user's identity. All previously
// wrapped content keys become unreadable to the new private key. Never
// called automatically; flag mismatches route to Status/Restore instead.
func Reset(ctx context.Context, env *Env, opts ResetOptions) (*SetupResult, error) {
	if !opts.Confirmed {
		return nil, fmt.Errorf("reset requires explicit confirmation: %w", verrors.ErrInconsistentState)
	}

	if err := env.Session.Reset(opts.NewPassword); err != nil {
		return nil, err
	}

	if err := publishKeys(ctx, env); err != nil {
		return nil, err
	}

	if err := env.Local.SetEncryptionEnabled(env.UserID, true); err != nil {
		return nil, fmt.Errorf("recording enabled marker: %w", err)
	}

	entry := audit.LogWithUser("reset")
	entry.PublicKeyID = env.Session.PublicKeyID()
	audit.Log(entry)

	return &SetupResult{PublicKeyID: env.Session.PublicKeyID()}, nil
}
