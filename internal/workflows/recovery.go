package workflows

import (
	"context"
	"fmt"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/audit"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/recovery"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
)

// RecoverySetupResult carries the mnemonic back to the CLI, which shows it
// to the user exactly once and never persists it.
type RecoverySetupResult struct {
	Mnemonic string
}

// RecoverySetup generates a recovery phrase and stores the wrapped master
// key credential. Requires an unlocked session (the master key is wrapped,
// and only the session holds it).
func RecoverySetup(ctx context.Context, env *Env) (*RecoverySetupResult, error) {
	masterKey, _, err := env.Session.Keys()
	if err != nil {
		return nil, err
	}
	defer masterKey.Zero()
	env.Session.Touch()

	mnemonic, cred, err := recovery.Setup(masterKey)
	if err != nil {
		return nil, err
	}

	if err := env.putRecovery(ctx, cred); err != nil {
		return nil, fmt.Errorf("storing recovery credential: %w", err)
	}

	entry := audit.LogWithUser("recovery-setup")
	entry.Method = string(cred.Method)
	audit.Log(entry)

	return &RecoverySetupResult{Mnemonic: mnemonic}, nil
}

// RecoverOptions configures password recovery.
type RecoverOptions struct {
	// Mnemonic is the 24-word phrase the user wrote down.
	Mnemonic string

	// NewPassword replaces the forgotten one.
	NewPassword string
}

// Recover restores access after a forgotten password: it unwraps the master
// key from the recovery credential, re-wraps the private key under a fresh
// master key derived from the new password, and unlocks. The keypair is
// unchanged, so existing content and shares survive.
//
// Returns ErrRecoveryFailed on a wrong mnemonic and ErrRecoveryNotConfigured
// if the user never set recovery up.
func Recover(ctx context.Context, env *Env, opts RecoverOptions) error {
	cred, err := env.getRecovery(ctx)
	if err != nil {
		return err
	}

	oldMasterKey, err := recovery.RecoverMasterKey(opts.Mnemonic, cred)
	if err != nil {
		return err
	}
	defer oldMasterKey.Zero()

	// Material may live only server-side if this is a fresh device.
	km, err := env.Local.LoadKeyMaterial(env.UserID)
	if err != nil {
		if !env.Online() {
			return err
		}
		pubPEM, wrappedPriv, salt, rerr := env.Remote.GetKeys(ctx, env.UserID)
		if rerr != nil {
			return fmt.Errorf("fetching key material: %w", rerr)
		}
		km = &session.KeyMaterial{Salt: salt, WrappedPrivateKey: wrappedPriv, PublicKeyPEM: pubPEM}
	}

	priv, err := crypto.UnwrapPrivateKey(km.WrappedPrivateKey, oldMasterKey)
	if err != nil {
		return err
	}

	newSalt, newMasterKey, wrapped, err := recovery.ReencryptUnderNewPassword(priv, opts.NewPassword, env.Settings.KDFIterations)
	if err != nil {
		return err
	}
	newMasterKey.Zero()

	km.Salt = newSalt
	km.WrappedPrivateKey = wrapped
	if err := env.Local.SaveKeyMaterial(env.UserID, km); err != nil {
		return fmt.Errorf("persisting rewrapped material: %w", err)
	}
	if err := env.Local.SetEncryptionEnabled(env.UserID, true); err != nil {
		return fmt.Errorf("recording enabled marker: %w", err)
	}
	if env.Online() {
		if err := env.Remote.PutKeys(ctx, env.UserID, km.PublicKeyPEM, km.WrappedPrivateKey, km.Salt); err != nil {
			return fmt.Errorf("publishing rewrapped keys: %w", err)
		}
	}

	env.Session.Refresh()
	env.Session.Lock()
	if err := env.Session.Unlock(opts.NewPassword); err != nil {
		return err
	}

	entry := audit.LogWithUser("recover")
	entry.PublicKeyID = env.Session.PublicKeyID()
	audit.Log(entry)
	return nil
}
