package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/session"
)

// Local is the badger-backed on-device store for wrapped key material.
// Everything in it is either public (salts, public keys) or encrypted under
// keys badger never sees. Entries are namespaced by user id so material for
// different accounts on the same device cannot bleed into each other.
type Local struct {
	db *badger.DB
}

// OpenLocal opens (creating if needed) the local store at path.
func OpenLocal(path string) (*Local, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", path, err)
	}
	return &Local{db: db}, nil
}

// Close releases the underlying database.
func (l *Local) Close() error {
	return l.db.Close()
}

func userKey(userID, field string) []byte {
	return []byte("user/" + userID + "/" + field)
}

// LoadKeyMaterial implements session.KeyStore.
func (l *Local) LoadKeyMaterial(userID string) (*session.KeyMaterial, error) {
	var km session.KeyMaterial

	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID, "keymaterial"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &km)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, verrors.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load key material: %w", err)
	}
	return &km, nil
}

// SaveKeyMaterial implements session.KeyStore.
func (l *Local) SaveKeyMaterial(userID string, km *session.KeyMaterial) error {
	data, err := json.Marshal(km)
	if err != nil {
		return fmt.Errorf("failed to marshal key material: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(userID, "keymaterial"), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save key material: %w", err)
	}
	return nil
}

// DeleteKeyMaterial implements session.KeyStore.
func (l *Local) DeleteKeyMaterial(userID string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(userKey(userID, "keymaterial"))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key material: %w", err)
	}
	return nil
}

// SetEncryptionEnabled records the locally observed "encryption enabled"
// marker used by reconciliation.
func (l *Local) SetEncryptionEnabled(userID string, enabled bool) error {
	val := []byte("0")
	if enabled {
		val = []byte("1")
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(userID, "enabled"), val)
	})
}

// EncryptionEnabled reports the local marker; absent means false.
func (l *Local) EncryptionEnabled(userID string) (bool, error) {
	enabled := false
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID, "enabled"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			enabled = len(val) == 1 && val[0] == '1'
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return false, fmt.Errorf("failed to read enabled marker: %w", err)
	}
	return enabled, nil
}

// WipeUser removes every entry in a user's namespace. Called when switching
// authenticated users on the same device, so one account's material can
// never leak into another's session.
func (l *Local) WipeUser(userID string) error {
	prefix := []byte("user/" + userID + "/")

	var keys [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan user namespace: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to wipe user namespace: %w", err)
	}
	return nil
}
