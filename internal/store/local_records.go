package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/recovery"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
)

// The local store doubles as the blob store when no server is configured
// (offline mode) and as a cache otherwise. Layout mirrors the remote
// endpoints: content/<id>, share/<contentID>/<recipient>, plus per-user
// recovery credentials and a public key directory.

func (l *Local) getJSON(key []byte, out interface{}) error {
	return l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

func (l *Local) setJSON(key []byte, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// SaveContent stores an encrypted content record.
func (l *Local) SaveContent(rec *ContentRecord) error {
	if rec.Content == nil || rec.Content.ID == "" {
		return fmt.Errorf("content record missing id")
	}
	return l.setJSON([]byte("content/"+rec.Content.ID), rec)
}

// GetContent fetches a content record by id.
func (l *Local) GetContent(contentID string) (*ContentRecord, error) {
	var rec ContentRecord
	if err := l.getJSON([]byte("content/"+contentID), &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, verrors.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return &rec, nil
}

// SaveShare stores a share record.
func (l *Local) SaveShare(rec *sharing.ShareRecord) error {
	return l.setJSON([]byte("share/"+rec.ContentID+"/"+rec.RecipientUserID), rec)
}

// GetShare resolves the share record for a (content, recipient) pair.
// A revoked share returns ErrShareNotFound; an expired one ErrShareExpired.
func (l *Local) GetShare(contentID, recipientUserID string) (*sharing.ShareRecord, error) {
	var rec sharing.ShareRecord
	if err := l.getJSON([]byte("share/"+contentID+"/"+recipientUserID), &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, verrors.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to load share: %w", err)
	}
	if rec.Expired(time.Now()) {
		return nil, verrors.ErrShareExpired
	}
	return &rec, nil
}

// DeleteShare removes a share record. This is revocation: the record held
// the recipient's only wrapped copy of the content key.
func (l *Local) DeleteShare(contentID, recipientUserID string) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("share/" + contentID + "/" + recipientUserID))
	})
}

// SaveRecovery stores a user's recovery credential.
func (l *Local) SaveRecovery(userID string, cred *recovery.Credential) error {
	return l.setJSON(userKey(userID, "recovery"), cred)
}

// GetRecovery fetches a user's recovery credential; absence means recovery
// was never configured.
func (l *Local) GetRecovery(userID string) (*recovery.Credential, error) {
	var cred recovery.Credential
	if err := l.getJSON(userKey(userID, "recovery"), &cred); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, verrors.ErrRecoveryNotConfigured
		}
		return nil, fmt.Errorf("failed to load recovery credential: %w", err)
	}
	return &cred, nil
}

// SavePublicKey records a user's public key in the local directory.
func (l *Local) SavePublicKey(userID string, pubPEM []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("pubkey/"+userID), pubPEM)
	})
}

// GetPublicKey resolves a user's public key from the local directory.
func (l *Local) GetPublicKey(userID string) ([]byte, error) {
	var pem []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("pubkey/" + userID))
		if err != nil {
			return err
		}
		pem, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, verrors.ErrRecipientKeyNotFound
		}
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}
	return pem, nil
}
