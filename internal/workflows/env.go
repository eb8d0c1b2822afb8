package workflows

import (
	"context"
	"crypto/rsa"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/configs"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/recovery"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/store"
)

// Env bundles the collaborators every workflow needs. Sessions are passed
// explicitly, never through ambient globals, so tests construct an Env,
// exercise it, and discard it.
type Env struct {
	UserID   string
	Session  *session.Session
	Local    *store.Local
	Remote   *store.Remote // nil in offline (local-only) mode
	Settings configs.VaultSettings
}

// Online reports whether a blob-store server is configured.
func (e *Env) Online() bool {
	return e.Remote != nil
}

// The helpers below route records to the server when one is configured and
// to the local store otherwise, keeping the workflows indifferent to mode.

func (e *Env) putContent(ctx context.Context, rec *store.ContentRecord) error {
	if e.Online() {
		return e.Remote.PutContent(ctx, rec)
	}
	return e.Local.SaveContent(rec)
}

func (e *Env) getContent(ctx context.Context, contentID string) (*store.ContentRecord, error) {
	if e.Online() {
		return e.Remote.GetContent(ctx, contentID)
	}
	return e.Local.GetContent(contentID)
}

func (e *Env) putShare(ctx context.Context, rec *sharing.ShareRecord) error {
	if e.Online() {
		return e.Remote.PutShare(ctx, rec)
	}
	return e.Local.SaveShare(rec)
}

func (e *Env) getShare(ctx context.Context, contentID, recipientUserID string) (*sharing.ShareRecord, error) {
	if e.Online() {
		return e.Remote.GetShare(ctx, contentID, recipientUserID)
	}
	return e.Local.GetShare(contentID, recipientUserID)
}

func (e *Env) deleteShare(ctx context.Context, contentID, recipientUserID string) error {
	if e.Online() {
		return e.Remote.DeleteShare(ctx, contentID, recipientUserID)
	}
	return e.Local.DeleteShare(contentID, recipientUserID)
}

func (e *Env) getRecipientPublicKey(ctx context.Context, userID string) (*rsa.PublicKey, error) {
	var pem []byte
	var err error
	if e.Online() {
		pem, err = e.Remote.GetPublicKey(ctx, userID)
	} else {
		pem, err = e.Local.GetPublicKey(userID)
	}
	if err != nil {
		return nil, err
	}
	return crypto.ImportPublicKey(pem)
}

func (e *Env) putRecovery(ctx context.Context, cred *recovery.Credential) error {
	if e.Online() {
		return e.Remote.PutRecovery(ctx, e.UserID, cred)
	}
	return e.Local.SaveRecovery(e.UserID, cred)
}

func (e *Env) getRecovery(ctx context.Context) (*recovery.Credential, error) {
	if e.Online() {
		return e.Remote.GetRecovery(ctx, e.UserID)
	}
	return e.Local.GetRecovery(e.UserID)
}
