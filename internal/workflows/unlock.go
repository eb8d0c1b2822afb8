package workflows

import (
	"context"
	"fmt"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/audit"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
)

// Unlock transitions the session Locked → Unlocked with the given password.
// A wrong password returns ErrDecryptionFailed; the CLI renders it as a
// generic "incorrect password" regardless of the underlying cause.
func Unlock(ctx context.Context, env *Env, password string) error {
	if err := env.Session.Unlock(password); err != nil {
		return err
	}

	entry := audit.LogWithUser("unlock")
	entry.PublicKeyID = env.Session.PublicKeyID()
	audit.Log(entry)
	return nil
}

// Lock discards in-memory key material. Idempotent.
func Lock(env *Env) {
	env.Session.Lock()
	audit.Log(audit.LogWithUser("lock"))
}

// Restore handles the new-device flow: the server says encryption is
// enabled but no local material exists. It fetches the wrapped material,
// verifies the password actually unwraps it before persisting anything,
// then unlocks.
func Restore(ctx context.Context, env *Env, password string) error {
	if !env.Online() {
		return fmt.Errorf("no server configured: %w", verrors.ErrVaultNotInitialized)
	}

	pubPEM, wrappedPriv, salt, err := env.Remote.GetKeys(ctx, env.UserID)
	if err != nil {
		return fmt.Errorf("fetching key material: %w", err)
	}

	masterKey, err := crypto.DeriveMasterKey(password, salt, env.Settings.KDFIterations)
	if err != nil {
		return err
	}
	defer masterKey.Zero()

	// Verify before persisting so a typo doesn't land broken-looking
	// material in the local store.
	if _, err := crypto.UnwrapPrivateKey(wrappedPriv, masterKey); err != nil {
		return err
	}

	km := &session.KeyMaterial{
		Salt:              salt,
		WrappedPrivateKey: wrappedPriv,
		PublicKeyPEM:      pubPEM,
	}
	if err := env.Local.SaveKeyMaterial(env.UserID, km); err != nil {
		return fmt.Errorf("persisting restored material: %w", err)
	}
	if err := env.Local.SetEncryptionEnabled(env.UserID, true); err != nil {
		return fmt.Errorf("recording enabled marker: %w", err)
	}
	if err := env.Local.SavePublicKey(env.UserID, pubPEM); err != nil {
		return fmt.Errorf("recording public key: %w", err)
	}

	env.Session.Refresh()
	if err := env.Session.Unlock(password); err != nil {
		return err
	}

	entry := audit.LogWithUser("restore")
	entry.PublicKeyID = env.Session.PublicKeyID()
	audit.Log(entry)
	return nil
}
