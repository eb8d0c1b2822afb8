package workflows

import (
	"context"
	"errors"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
)

// StatusResult describes the session and reconciliation state.
type StatusResult struct {
	// State is the session lock state.
	State session.State

	// Intent is the verdict of reconciling the server flag with local
	// key presence.
	Intent session.Intent

	// PublicKeyID is the resolvable public key fingerprint, or "".
	PublicKeyID string

	// RecoveryConfigured reports whether a recovery credential exists.
	RecoveryConfigured bool
}

// Status reconciles the server's encryption flag with local key presence
// and reports the session state. The Inconsistent intent (local keys but
// server flag off) is reported, never resolved automatically: discarding
// keys is reserved for an explicit user-confirmed Reset.
func Status(ctx context.Context, env *Env) (*StatusResult, error) {
	localPresent := true
	if _, err := env.Local.LoadKeyMaterial(env.UserID); err != nil {
		if !errors.Is(err, verrors.ErrKeyNotFound) {
			return nil, err
		}
		localPresent = false
	}

	serverEnabled, err := serverSaysEnabled(ctx, env, localPresent)
	if err != nil {
		return nil, err
	}

	recoveryConfigured := false
	if _, err := env.getRecovery(ctx); err == nil {
		recoveryConfigured = true
	}

	return &StatusResult{
		State:              env.Session.State(),
		Intent:             session.Reconcile(serverEnabled, localPresent),
		PublicKeyID:        env.Session.PublicKeyID(),
		RecoveryConfigured: recoveryConfigured,
	}, nil
}

// serverSaysEnabled consults the server when online, falling back to the
// locally recorded marker when offline or unreachable.
func serverSaysEnabled(ctx context.Context, env *Env, localPresent bool) (bool, error) {
	if env.Online() {
		_, _, _, err := env.Remote.GetKeys(ctx, env.UserID)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, verrors.ErrKeyNotFound):
			return false, nil
		default:
			// Unreachable server: fall back to the local marker rather
			// than misreporting an inconsistency.
		}
	}
	return env.Local.EncryptionEnabled(env.UserID)
}
