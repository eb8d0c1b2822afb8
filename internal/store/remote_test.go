package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/crypto"
	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/recovery"
	"github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/sharing"
)

// fakeServer is an in-memory stand-in for the blob store. It only stores
// and returns opaque payloads, the same contract the real server honors.
type fakeServer struct {
	mu    sync.Mutex
	blobs map[string]json.RawMessage
}

func newFakeServer() *fakeServer {
	return &fakeServer{blobs: make(map[string]json.RawMessage)}
}

func (f *fakeServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			f.blobs[f.putKey(r.URL.Path, raw)] = raw
			w.WriteHeader(http.StatusNoContent)

		case http.MethodGet:
			raw, ok := f.blobs[strings.TrimPrefix(r.URL.Path, "/")]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(raw)

		case http.MethodDelete:
			key := strings.TrimPrefix(r.URL.Path, "/")
			if _, ok := f.blobs[key]; !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			delete(f.blobs, key)
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// putKey maps a PUT path plus body to the GET path that retrieves it.
func (f *fakeServer) putKey(path string, raw json.RawMessage) string {
	var fields struct {
		UserID  string `json:"user_id"`
		Content *struct {
			ID string `json:"id"`
		} `json:"content"`
		ContentID string `json:"content_id"`
		Recipient string `json:"recipient_user_id"`
	}
	_ = json.Unmarshal(raw, &fields)

	switch strings.TrimPrefix(path, "/") {
	case "keys":
		return "keys/" + fields.UserID
	case "content":
		return "content/" + fields.Content.ID
	case "shares":
		return "shares/" + fields.ContentID + "/" + fields.Recipient
	case "recovery":
		return "recovery/" + fields.UserID
	default:
		return strings.TrimPrefix(path, "/")
	}
}

func newTestRemote(t *testing.T) (*Remote, *fakeServer) {
	t.Helper()
	fake := newFakeServer()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewRemote(server.URL), fake
}

func TestRemote_KeysRoundTrip(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	_, _, _, err := remote.GetKeys(ctx, "alice")
	assert.ErrorIs(t, err, verrors.ErrKeyNotFound)

	pubPEM := []byte("-----BEGIN PUBLIC KEY-----\nfake\n-----END PUBLIC KEY-----\n")
	wrapped := crypto.Envelope{NonceB64: "bm9uY2U=", CTB64: "Y3Q="}
	salt := make([]byte, crypto.SaltSize)

	require.NoError(t, remote.PutKeys(ctx, "alice", pubPEM, wrapped, salt))

	gotPub, gotWrapped, gotSalt, err := remote.GetKeys(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, pubPEM, gotPub)
	assert.Equal(t, wrapped, gotWrapped)
	assert.Equal(t, salt, gotSalt)
}

func TestRemote_GetPublicKey(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	_, err := remote.GetPublicKey(ctx, "bob")
	assert.ErrorIs(t, err, verrors.ErrRecipientKeyNotFound)

	pubPEM := []byte("-----BEGIN PUBLIC KEY-----\nbob\n-----END PUBLIC KEY-----\n")
	require.NoError(t, remote.PutKeys(ctx, "bob", pubPEM, crypto.Envelope{}, make([]byte, crypto.SaltSize)))

	got, err := remote.GetPublicKey(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, pubPEM, got)
}

func TestRemote_ContentRoundTrip(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	_, err := remote.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, verrors.ErrContentNotFound)

	rec := &ContentRecord{
		Content: &crypto.EncryptedContent{
			ID:               "entry-1",
			OwnerID:          "alice",
			AlgorithmVersion: crypto.AlgorithmV1,
			NonceB64:         "bm9uY2U=",
			ChunkSize:        16,
			ChunksB64:        []string{"Y2h1bms="},
			WrappedKeyB64:    "d3JhcHBlZA==",
		},
		Metadata: ContentMetadata{WordCount: 7, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, remote.PutContent(ctx, rec))

	got, err := remote.GetContent(ctx, "entry-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Content, got.Content)
	assert.Equal(t, rec.Metadata.WordCount, got.Metadata.WordCount)
}

func TestRemote_ShareRevocation(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	rec := &sharing.ShareRecord{
		ContentID:       "entry-1",
		RecipientUserID: "bob",
		WrappedKeyB64:   "d3JhcHBlZA==",
		Permissions:     sharing.DefaultPermissions(),
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, remote.PutShare(ctx, rec))

	got, err := remote.GetShare(ctx, "entry-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, rec.WrappedKeyB64, got.WrappedKeyB64)

	require.NoError(t, remote.DeleteShare(ctx, "entry-1", "bob"))

	_, err = remote.GetShare(ctx, "entry-1", "bob")
	assert.ErrorIs(t, err, verrors.ErrShareNotFound)

	err = remote.DeleteShare(ctx, "entry-1", "bob")
	assert.ErrorIs(t, err, verrors.ErrShareNotFound)
}

func TestRemote_ExpiredShare(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	rec := &sharing.ShareRecord{
		ContentID:       "entry-1",
		RecipientUserID: "bob",
		WrappedKeyB64:   "d3JhcHBlZA==",
		ExpiresAt:       &past,
	}
	require.NoError(t, remote.PutShare(ctx, rec))

	_, err := remote.GetShare(ctx, "entry-1", "bob")
	assert.ErrorIs(t, err, verrors.ErrShareExpired)
}

func TestRemote_RecoveryRoundTrip(t *testing.T) {
	remote, _ := newTestRemote(t)
	ctx := context.Background()

	_, err := remote.GetRecovery(ctx, "alice")
	assert.ErrorIs(t, err, verrors.ErrRecoveryNotConfigured)

	cred := &recovery.Credential{
		Method:   recovery.MethodPhrase,
		Envelope: crypto.Envelope{NonceB64: "bm9uY2U=", CTB64: "Y3Q="},
	}
	require.NoError(t, remote.PutRecovery(ctx, "alice", cred))

	got, err := remote.GetRecovery(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, cred.Method, got.Method)
	assert.Equal(t, cred.Envelope, got.Envelope)
}
