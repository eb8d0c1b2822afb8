package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/audit"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
)

// ShareOptions configures the share workflow.
type ShareOptions struct {
	// ContentID identifies the content to share.
	ContentID string

	// RecipientUserID is who gains access.
	RecipientUserID string

	// Permissions to grant. Zero value means read-only.
	Permissions sharing.Permissions

	// ExpiresAt optionally bounds the share's lifetime.
	ExpiresAt *time.Time
}

// ShareResult contains the outcome of a share operation.
type ShareResult struct {
	ContentID       string
	RecipientUserID string
}

// Share grants a recipient access to one content item by re-wrapping its
// content key under the recipient's public key. The raw key exists only
// transiently in this process; the server receives wrapped forms only.
//
// Returns ErrRecipientKeyNotFound if the recipient never enabled encryption,
// and ErrUnauthorizedShare if the caller holds no owner key for the content.
func Share(ctx context.Context, env *Env, opts ShareOptions) (*ShareResult, error) {
	_, priv, err := env.Session.Keys()
	if err != nil {
		return nil, err
	}
	env.Session.Touch()

	if opts.RecipientUserID == env.UserID {
		return nil, verrors.ErrSelfShare
	}

	rec, err := env.getContent(ctx, opts.ContentID)
	if err != nil {
		return nil, err
	}
	if rec.Content.OwnerID != env.UserID {
		return nil, verrors.ErrUnauthorizedShare
	}

	recipientPub, err := env.getRecipientPublicKey(ctx, opts.RecipientUserID)
	if err != nil {
		return nil, err
	}

	perms := opts.Permissions
	if perms == (sharing.Permissions{}) {
		perms = sharing.DefaultPermissions()
	}

	record, err := sharing.ShareContentKey(rec.Content, priv, opts.RecipientUserID, recipientPub, perms, opts.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := env.putShare(ctx, record); err != nil {
		return nil, fmt.Errorf("storing share record: %w", err)
	}

	entry := audit.LogWithUser("share")
	entry.ContentID = opts.ContentID
	entry.TargetUser = opts.RecipientUserID
	audit.Log(entry)

	return &ShareResult{ContentID: opts.ContentID, RecipientUserID: opts.RecipientUserID}, nil
}

// Revoke deletes the recipient's share record. No content re-encryption is
// needed: the record held their only path to the content key. Content the
// recipient already fetched and decrypted remains readable to them; that is
// an inherent boundary of key-wrapping shares, not a defect this can fix.
func Revoke(ctx context.Context, env *Env, contentID, recipientUserID string) error {
	if !env.Session.Unlocked() {
		return verrors.ErrNotUnlocked
	}
	env.Session.Touch()

	if err := env.deleteShare(ctx, contentID, recipientUserID); err != nil {
		return err
	}

	entry := audit.LogWithUser("revoke")
	entry.ContentID = contentID
	entry.TargetUser = recipientUserID
	audit.Log(entry)
	return nil
}
