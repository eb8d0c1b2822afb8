package sharing

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// Permissions are the flags attached to a share.
type Permissions struct {
	Read    bool `json:"read"`
	Comment bool `json:"comment"`
	Reshare bool `json:"reshare"`
}

// DefaultPermissions grants read-only access.
func DefaultPermissions() Permissions {
	return Permissions{Read: true}
}

// ShareRecord links an encrypted content item to a recipient, carrying the
// content key wrapped under the recipient's public key. Deleting the record
// is the entire revocation mechanism: the recipient's only path to the
// content key was this wrapped copy.
type ShareRecord struct {
	ContentID       string      `json:"content_id"`
	RecipientUserID string      `json:"recipient_user_id"`
	WrappedKeyB64   string      `json:"wrapped_key_b64"`
	Permissions     Permissions `json:"permissions"`
	ExpiresAt       *time.Time  `json:"expires_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Expired reports whether the record's optional expiry has passed.
func (r *ShareRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// ShareContentKey unwraps the owner's copy of the content key and re-wraps
// it under the recipient's public key. The raw content key exists only
// transiently inside this function and is zeroed before returning; the
// server only ever sees wrapped forms.
func ShareContentKey(ec *crypto.EncryptedContent, ownerPriv *rsa.PrivateKey, recipientUserID string, recipientPub *rsa.PublicKey, perms Permissions, expiresAt *time.Time) (*ShareRecord, error) {
	if recipientPub == nil {
		return nil, verrors.ErrRecipientKeyNotFound
	}
	if recipientUserID == ec.OwnerID {
		return nil, verrors.ErrSelfShare
	}
	if ec.WrappedKeyB64 == "" {
		return nil, verrors.ErrUnauthorizedShare
	}

	ownerWrapped, err := base64.StdEncoding.DecodeString(ec.WrappedKeyB64)
	if err != nil {
		return nil, fmt.Errorf("malformed owner wrapped key: %w", verrors.ErrUnauthorizedShare)
	}

	contentKey, err := crypto.UnwrapContentKey(ownerWrapped, ownerPriv)
	if err != nil {
		// The caller's private key does not open the owner copy, so they
		// hold no valid owner key for this content.
		return nil, verrors.ErrUnauthorizedShare
	}
	defer func() {
		for i := range contentKey {
			contentKey[i] = 0
		}
	}()

	rewrapped, err := crypto.WrapContentKey(contentKey, recipientPub)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key for recipient: %w", err)
	}

	return &ShareRecord{
		ContentID:       ec.ID,
		RecipientUserID: recipientUserID,
		WrappedKeyB64:   base64.StdEncoding.EncodeToString(rewrapped),
		Permissions:     perms,
		ExpiresAt:       expiresAt,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
