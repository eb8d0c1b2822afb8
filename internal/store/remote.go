package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/recovery"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
)

// ContentMetadata travels alongside the ciphertext unencrypted, so the
// server can index and display entries without decrypting anything.
type ContentMetadata struct {
	WordCount int       `json:"word_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Shared    bool      `json:"shared,omitempty"`
}

// ContentRecord is the wire shape of PUT/GET /content.
type ContentRecord struct {
	Content  *crypto.EncryptedContent `json:"content"`
	Metadata ContentMetadata          `json:"metadata"`
}

// keysRecord is the wire shape of PUT /keys.
type keysRecord struct {
	UserID              string          `json:"user_id"`
	PublicKeyB64        string          `json:"public_key"`
	EncryptedPrivateKey crypto.Envelope `json:"encrypted_private_key"`
	SaltB64             string          `json:"salt"`
}

// Remote is the client for the blind blob/directory store. The server only
// ever receives opaque encrypted payloads plus plaintext metadata; it can
// store and return them but never read them.
type Remote struct {
	base string
	http *http.Client
}

// NewRemote builds a client for the blob store at baseURL. Transient
// failures are retried with backoff.
func NewRemote(baseURL string) *Remote {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &Remote{
		base: strings.TrimRight(baseURL, "/"),
		http: rc.StandardClient(),
	}
}

// PutKeys publishes a user's public key, wrapped private key, and salt.
func (r *Remote) PutKeys(ctx context.Context, userID string, pubPEM []byte, wrappedPriv crypto.Envelope, salt []byte) error {
	rec := keysRecord{
		UserID:              userID,
		PublicKeyB64:        base64.StdEncoding.EncodeToString(pubPEM),
		EncryptedPrivateKey: wrappedPriv,
		SaltB64:             base64.StdEncoding.EncodeToString(salt),
	}
	return r.do(ctx, http.MethodPut, "/keys", rec, nil)
}

// GetKeys fetches a user's own wrapped key material, used to restore a new
// device. Returns ErrKeyNotFound when the server has nothing for this user.
func (r *Remote) GetKeys(ctx context.Context, userID string) (pubPEM []byte, wrappedPriv crypto.Envelope, salt []byte, err error) {
	var rec keysRecord
	if err = r.do(ctx, http.MethodGet, "/keys/"+userID, nil, &rec); err != nil {
		if isNotFound(err) {
			err = verrors.ErrKeyNotFound
		}
		return nil, crypto.Envelope{}, nil, err
	}

	pubPEM, err = base64.StdEncoding.DecodeString(rec.PublicKeyB64)
	if err != nil {
		return nil, crypto.Envelope{}, nil, fmt.Errorf("malformed public key: %w", verrors.ErrInvalidPublicKey)
	}
	salt, err = base64.StdEncoding.DecodeString(rec.SaltB64)
	if err != nil {
		return nil, crypto.Envelope{}, nil, fmt.Errorf("malformed salt: %w", verrors.ErrInvalidKeyMaterial)
	}
	return pubPEM, rec.EncryptedPrivateKey, salt, nil
}

// GetPublicKey resolves another user's public key from the directory.
// Returns ErrRecipientKeyNotFound when the user has not enabled encryption.
func (r *Remote) GetPublicKey(ctx context.Context, userID string) ([]byte, error) {
	var rec keysRecord
	if err := r.do(ctx, http.MethodGet, "/keys/"+userID, nil, &rec); err != nil {
		if isNotFound(err) {
			return nil, verrors.ErrRecipientKeyNotFound
		}
		return nil, err
	}

	pubPEM, err := base64.StdEncoding.DecodeString(rec.PublicKeyB64)
	if err != nil {
		return nil, fmt.Errorf("malformed public key: %w", verrors.ErrInvalidPublicKey)
	}
	return pubPEM, nil
}

// PutContent stores an encrypted content blob with its plaintext metadata.
func (r *Remote) PutContent(ctx context.Context, rec *ContentRecord) error {
	return r.do(ctx, http.MethodPut, "/content", rec, nil)
}

// GetContent fetches a content blob by id.
func (r *Remote) GetContent(ctx context.Context, contentID string) (*ContentRecord, error) {
	var rec ContentRecord
	if err := r.do(ctx, http.MethodGet, "/content/"+contentID, nil, &rec); err != nil {
		if isNotFound(err) {
			return nil, verrors.ErrContentNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// PutShare stores a share record.
func (r *Remote) PutShare(ctx context.Context, rec *sharing.ShareRecord) error {
	return r.do(ctx, http.MethodPut, "/shares", rec, nil)
}

// GetShare fetches the share record for a (content, recipient) pair.
// After revocation this returns ErrShareNotFound.
func (r *Remote) GetShare(ctx context.Context, contentID, recipientUserID string) (*sharing.ShareRecord, error) {
	var rec sharing.ShareRecord
	if err := r.do(ctx, http.MethodGet, "/shares/"+contentID+"/"+recipientUserID, nil, &rec); err != nil {
		if isNotFound(err) {
			return nil, verrors.ErrShareNotFound
		}
		return nil, err
	}
	if rec.Expired(time.Now()) {
		return nil, verrors.ErrShareExpired
	}
	return &rec, nil
}

// DeleteShare revokes a share. Deletion is the entire revocation mechanism.
func (r *Remote) DeleteShare(ctx context.Context, contentID, recipientUserID string) error {
	err := r.do(ctx, http.MethodDelete, "/shares/"+contentID+"/"+recipientUserID, nil, nil)
	if isNotFound(err) {
		return verrors.ErrShareNotFound
	}
	return err
}

// PutRecovery stores a user's recovery credential.
func (r *Remote) PutRecovery(ctx context.Context, userID string, cred *recovery.Credential) error {
	body := struct {
		UserID string               `json:"user_id"`
		Cred   *recovery.Credential `json:"credential"`
	}{userID, cred}
	return r.do(ctx, http.MethodPut, "/recovery", body, nil)
}

// GetRecovery fetches a user's recovery credential. Absence means the user
// never configured recovery.
func (r *Remote) GetRecovery(ctx context.Context, userID string) (*recovery.Credential, error) {
	var body struct {
		UserID string               `json:"user_id"`
		Cred   *recovery.Credential `json:"credential"`
	}
	if err := r.do(ctx, http.MethodGet, "/recovery/"+userID, nil, &body); err != nil {
		if isNotFound(err) {
			return nil, verrors.ErrRecoveryNotConfigured
		}
		return nil, err
	}
	if body.Cred == nil {
		return nil, verrors.ErrRecoveryNotConfigured
	}
	return body.Cred, nil
}

// statusError carries a non-2xx response status.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

func (r *Remote) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
