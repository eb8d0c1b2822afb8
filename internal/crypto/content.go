package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/secretbox"

	verrors "github.com/john-matlock-eng/ai-lifestyle-app-sub006/internal/errors"
)

// Algorithm version tags. Every EncryptedContent carries one so future
// migrations remain decodable; unknown tags fail with ErrUnsupportedVersion.
const (
	// AlgorithmV1 is the current chunked XChaCha20-Poly1305 format.
	AlgorithmV1 = "xchacha20poly1305.v1"

	// AlgorithmV0 is the legacy single-blob secretbox format
	// (24-byte nonce prepended to the ciphertext). Decrypt-only.
	AlgorithmV0 = "secretbox.v0"
)

const (
	// DefaultChunkThreshold is the content size above which encryption
	// switches to multi-chunk envelopes.
	DefaultChunkThreshold = 1 << 20 // 1 MiB

	// DefaultChunkSize is the fixed plaintext size of each chunk.
	DefaultChunkSize = 256 << 10 // 256 KiB
)

// CipherOptions tunes the content cipher. The zero value means defaults.
type CipherOptions struct {
	ChunkThreshold int
	ChunkSize      int
}

func (o CipherOptions) withDefaults() CipherOptions {
	if o.ChunkThreshold <= 0 {
		o.ChunkThreshold = DefaultChunkThreshold
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// EncryptedContent is the opaque blob persisted server-side: ciphertext
// chunks, base nonce, version tag, and the owner's wrapped content key.
// Additional wrapped copies for other users live in ShareRecords, never here.
type EncryptedContent struct {
	ID               string   `json:"id"`
	OwnerID          string   `json:"owner_id"`
	AlgorithmVersion string   `json:"algorithm_version"`
	NonceB64         string   `json:"nonce_b64"`
	ChunkSize        int      `json:"chunk_size"`
	ChunksB64        []string `json:"chunks_b64"`
	WrappedKeyB64    string   `json:"wrapped_key_b64"`
}

// NewContentKey generates a fresh random symmetric key for one content item.
func NewContentKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}
	return key, nil
}

// EncryptContent generates a fresh content key and nonce, AEAD-encrypts the
// plaintext (chunked above the threshold), and wraps the content key under
// the owner's public key. The raw content key never leaves this function.
func EncryptContent(plaintext []byte, ownerID string, ownerPub *rsa.PublicKey, opts CipherOptions) (*EncryptedContent, error) {
	opts = opts.withDefaults()

	contentKey, err := NewContentKey()
	if err != nil {
		return nil, err
	}
	defer zeroBytes(contentKey)

	wrapped, err := WrapContentKey(contentKey, ownerPub)
	if err != nil {
		return nil, err
	}

	ec, err := sealChunks(contentKey, plaintext, opts)
	if err != nil {
		return nil, err
	}

	ec.OwnerID = ownerID
	ec.WrappedKeyB64 = base64.StdEncoding.EncodeToString(wrapped)
	return ec, nil
}

// DecryptContent unwraps the owner's content key with priv and decrypts.
// This is the owner path; recipients go through DecryptContentWithWrappedKey
// using the wrapped key from their ShareRecord.
func DecryptContent(ec *EncryptedContent, priv *rsa.PrivateKey) ([]byte, error) {
	return DecryptContentWithWrappedKey(ec, ec.WrappedKeyB64, priv)
}

// DecryptContentWithWrappedKey decrypts content using an explicitly supplied
// wrapped content key, as carried by a ShareRecord.
func DecryptContentWithWrappedKey(ec *EncryptedContent, wrappedKeyB64 string, priv *rsa.PrivateKey) ([]byte, error) {
	switch ec.AlgorithmVersion {
	case AlgorithmV1, AlgorithmV0:
	default:
		return nil, fmt.Errorf("algorithm %q: %w", ec.AlgorithmVersion, verrors.ErrUnsupportedVersion)
	}

	wrapped, err := base64.StdEncoding.DecodeString(wrappedKeyB64)
	if err != nil {
		return nil, fmt.Errorf("malformed wrapped key: %w", verrors.ErrDecryptionFailed)
	}

	contentKey, err := UnwrapContentKey(wrapped, priv)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(contentKey)

	if ec.AlgorithmVersion == AlgorithmV0 {
		return openSecretboxV0(contentKey, ec)
	}
	return openChunks(contentKey, ec)
}

// sealChunks splits plaintext into fixed-size chunks and seals each with a
// nonce derived from the base nonce and the chunk index. The index and chunk
// count are authenticated as associated data, so reordering or truncating
// chunks fails the tag check.
func sealChunks(contentKey, plaintext []byte, opts CipherOptions) (*EncryptedContent, error) {
	var key [KeySize]byte
	copy(key[:], contentKey)
	defer zeroBytes(key[:])

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to construct AEAD: %w", err)
	}

	baseNonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(baseNonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	chunkSize := opts.ChunkSize
	if len(plaintext) <= opts.ChunkThreshold {
		// Small content is one chunk regardless of chunk size.
		chunkSize = len(plaintext)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}

	total := (len(plaintext) + chunkSize - 1) / chunkSize
	if total == 0 {
		total = 1 // empty plaintext still produces one authenticated chunk
	}

	chunks := make([]string, 0, total)
	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		ct := aead.Seal(nil, chunkNonce(baseNonce, uint64(i)), plaintext[start:end], chunkAAD(i, total))
		chunks = append(chunks, base64.StdEncoding.EncodeToString(ct))
	}

	return &EncryptedContent{
		AlgorithmVersion: AlgorithmV1,
		NonceB64:         base64.StdEncoding.EncodeToString(baseNonce),
		ChunkSize:        chunkSize,
		ChunksB64:        chunks,
	}, nil
}

func openChunks(contentKey []byte, ec *EncryptedContent) ([]byte, error) {
	var key [KeySize]byte
	copy(key[:], contentKey)
	defer zeroBytes(key[:])

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to construct AEAD: %w", err)
	}

	baseNonce, err := base64.StdEncoding.DecodeString(ec.NonceB64)
	if err != nil || len(baseNonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("malformed base nonce: %w", verrors.ErrDecryptionFailed)
	}

	total := len(ec.ChunksB64)
	if total == 0 {
		return nil, fmt.Errorf("content has no chunks: %w", verrors.ErrDecryptionFailed)
	}

	var plaintext []byte
	for i, chunkB64 := range ec.ChunksB64 {
		ct, err := base64.StdEncoding.DecodeString(chunkB64)
		if err != nil {
			return nil, fmt.Errorf("malformed chunk %d: %w", i, verrors.ErrDecryptionFailed)
		}
		pt, err := aead.Open(nil, chunkNonce(baseNonce, uint64(i)), ct, chunkAAD(i, total))
		if err != nil {
			return nil, verrors.ErrDecryptionFailed
		}
		plaintext = append(plaintext, pt...)
	}
	return plaintext, nil
}

// openSecretboxV0 decodes the legacy format: a single secretbox blob with
// the 24-byte nonce prepended to the ciphertext.
func openSecretboxV0(contentKey []byte, ec *EncryptedContent) ([]byte, error) {
	if len(ec.ChunksB64) != 1 {
		return nil, fmt.Errorf("v0 content must be a single blob: %w", verrors.ErrDecryptionFailed)
	}

	blob, err := base64.StdEncoding.DecodeString(ec.ChunksB64[0])
	if err != nil || len(blob) < 24 {
		return nil, fmt.Errorf("malformed v0 blob: %w", verrors.ErrDecryptionFailed)
	}

	var key [KeySize]byte
	copy(key[:], contentKey)
	defer zeroBytes(key[:])

	var nonce [24]byte
	copy(nonce[:], blob[:24])

	plaintext, ok := secretbox.Open(nil, blob[24:], &nonce, &key)
	if !ok {
		return nil, verrors.ErrDecryptionFailed
	}
	return plaintext, nil
}

// chunkNonce folds the chunk index into the trailing bytes of the base
// nonce, giving each chunk a distinct nonce under the same content key.
func chunkNonce(base []byte, index uint64) []byte {
	nonce := make([]byte, len(base))
	copy(nonce, base)

	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], index)
	for j := 0; j < 8; j++ {
		nonce[len(nonce)-8+j] ^= ctr[j]
	}
	return nonce
}

func chunkAAD(index, total int) []byte {
	return []byte(fmt.Sprintf("%s:chunk:%d:%d", AlgorithmV1, index, total))
}
