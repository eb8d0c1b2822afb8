package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/audit"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/store"
)

// EncryptOptions configures content encryption.
type EncryptOptions struct {
	// Plaintext is the content to encrypt. May be empty.
	Plaintext []byte
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// ContentID identifies the stored blob.
	ContentID string

	// Chunks is how many AEAD chunks the content was split into.
	Chunks int
}

// Encrypt generates a fresh content key, encrypts the plaintext, wraps the
// key under the session's public key, and stores the result with plaintext
// metadata alongside. Requires an unlocked session.
func Encrypt(ctx context.Context, env *Env, opts EncryptOptions) (*EncryptResult, error) {
	_, priv, err := env.Session.Keys()
	if err != nil {
		return nil, err
	}
	env.Session.Touch()

	ec, err := crypto.EncryptContent(opts.Plaintext, env.UserID, &priv.PublicKey, crypto.CipherOptions{
		ChunkThreshold: env.Settings.ChunkThresholdBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("encrypting content: %w", err)
	}
	ec.ID = uuid.New().String()

	now := time.Now().UTC()
	rec := &store.ContentRecord{
		Content: ec,
		Metadata: store.ContentMetadata{
			WordCount: len(strings.Fields(string(opts.Plaintext))),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := env.putContent(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing content: %w", err)
	}

	entry := audit.LogWithUser("encrypt")
	entry.ContentID = ec.ID
	entry.SizeBytes = len(opts.Plaintext)
	entry.Chunks = len(ec.ChunksB64)
	audit.Log(entry)

	return &EncryptResult{ContentID: ec.ID, Chunks: len(ec.ChunksB64)}, nil
}

// Decrypt fetches a content blob and decrypts it. Owners use their own
// wrapped key; recipients resolve their ShareRecord's wrapped copy. After
// revocation that resolution fails with ErrShareNotFound.
func Decrypt(ctx context.Context, env *Env, contentID string) ([]byte, error) {
	_, priv, err := env.Session.Keys()
	if err != nil {
		return nil, err
	}
	env.Session.Touch()

	rec, err := env.getContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if rec.Content.OwnerID == env.UserID {
		return crypto.DecryptContent(rec.Content, priv)
	}

	share, err := env.getShare(ctx, contentID, env.UserID)
	if err != nil {
		if errors.Is(err, verrors.ErrShareNotFound) || errors.Is(err, verrors.ErrShareExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("resolving share: %w", err)
	}

	return crypto.DecryptContentWithWrappedKey(rec.Content, share.WrappedKeyB64, priv)
}
