package service

// AEAD defines authenticated encryption with associated data operations.
//
// Implementations must provide both confidentiality and integrity: any
// modification of the ciphertext, nonce, or AAD must cause Decrypt to fail
// rather than return corrupted plaintext.
type AEAD interface {
	// Encrypt encrypts plaintext with optional additional authenticated data.
	// Returns the ciphertext (with authentication tag appended) and the
	// randomly generated nonce used for this encryption.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	// The same AAD used during encryption must be provided.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// Cipher defines field-level encryption for PII string values.
//
// Implementations are keyed by the process-wide encryption key and are safe
// for concurrent use. Encryption is intentionally non-deterministic; equality
// lookups must go through the blind index, never through ciphertext
// comparison.
type Cipher interface {
	// EncryptString encrypts a plaintext field value for storage at rest.
	EncryptString(plaintext string) ([]byte, error)

	// DecryptString recovers the plaintext of a stored field value.
	DecryptString(ciphertext []byte) (string, error)

	// EmailIndex computes the deterministic keyed blind index of an email
	// address, used only for equality lookup and uniqueness enforcement.
	EmailIndex(email string) string
}
