package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	cryptoDomain "github.com/coursekit/identity/internal/crypto/domain"
	apperrors "github.com/coursekit/identity/internal/errors"
)

// nonceSize is the AES-GCM nonce length prepended to every stored ciphertext.
const nonceSize = 12

// emailIndexLabel provides domain separation between the encryption key and
// the blind-index key derived from it.
const emailIndexLabel = "identity/email-blind-index/v1"

// FieldCipher implements the Cipher interface for PII field encryption.
//
// Each field value is encrypted independently with AES-256-GCM under the
// process-wide key; the stored form is nonce||ciphertext in a single byte
// slice. Two encryptions of the same plaintext yield different ciphertext
// (random nonce), so ciphertext equality is never a valid lookup strategy.
// Equality lookup on email goes through EmailIndex, an HMAC-SHA256 blind
// index keyed by a value derived from the encryption key.
//
// The cipher is immutable after construction and safe for concurrent use.
type FieldCipher struct {
	aead     *AESGCMCipher
	indexKey []byte
}

// NewFieldCipher creates a FieldCipher from a url-safe base64-encoded 32-byte key.
//
// An empty key returns ErrMissingKey; a key that does not decode to exactly
// 32 bytes returns ErrInvalidKey. There is no fallback key: callers are
// expected to treat construction failure as fatal.
func NewFieldCipher(encodedKey string) (*FieldCipher, error) {
	if encodedKey == "" {
		return nil, cryptoDomain.ErrMissingKey
	}

	key, err := base64.URLEncoding.DecodeString(encodedKey)
	if err != nil || len(key) != 32 {
		return nil, cryptoDomain.ErrInvalidKey
	}

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to initialize field cipher")
	}

	// Derive a separate key for the blind index so index values cannot be
	// related to the encryption key material.
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(emailIndexLabel))
	indexKey := mac.Sum(nil)

	cryptoDomain.Zero(key)

	return &FieldCipher{
		aead:     aead,
		indexKey: indexKey,
	}, nil
}

// EncryptString encrypts a plaintext field value for storage at rest.
// The result is nonce||ciphertext and is different on every call.
func (c *FieldCipher) EncryptString(plaintext string) ([]byte, error) {
	ciphertext, nonce, err := c.aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt field")
	}

	out := make([]byte, 0, len(nonce)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptString recovers the plaintext of a stored field value.
//
// Any tampering, truncation, or ciphertext produced under a different key
// fails with ErrInvalidCiphertext; the cause is deliberately not
// distinguished.
func (c *FieldCipher) DecryptString(ciphertext []byte) (string, error) {
	if len(ciphertext) <= nonceSize {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	plaintext, err := c.aead.Decrypt(ciphertext[nonceSize:], ciphertext[:nonceSize], nil)
	if err != nil {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	return string(plaintext), nil
}

// EmailIndex computes the deterministic blind index of an email address.
//
// The email is normalized (trimmed, lowercased) before hashing so lookups
// are insensitive to case and surrounding whitespace. The index reveals
// nothing about the plaintext but allows exact-match lookup and a unique
// constraint at the storage layer.
func (c *FieldCipher) EmailIndex(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))

	mac := hmac.New(sha256.New, c.indexKey)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateKey creates a new random url-safe base64-encoded 32-byte key
// suitable for the ENCRYPTION_KEY configuration value.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", apperrors.Wrap(err, "failed to generate encryption key")
	}
	return base64.URLEncoding.EncodeToString(key), nil
}
