package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	apperrors "github.com/devboard-io/devboard/pkg/errors"
)

// TokenCodec encrypts and decrypts OAuth access tokens before they touch
// persistent storage. AES-256-GCM with a fresh nonce per encryption; the
// nonce is stored alongside the ciphertext, never reused under the same key.
type TokenCodec struct {
	aead cipher.AEAD
}

// NewTokenCodec creates a codec from a hex-encoded 32-byte key.
func NewTokenCodec(hexKey string) (*TokenCodec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key encoding: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key size: got %d bytes, want 32", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &TokenCodec{aead: aead}, nil
}

// Encrypt encrypts plaintext and returns the ciphertext together with the
// freshly generated nonce used for this encryption.
func (c *TokenCodec) Encrypt(plaintext string) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return ciphertext, nonce, nil
}

// Decrypt reverses Encrypt. A malformed nonce, tampered ciphertext or a
// wrong key all surface as a decryption error.
func (c *TokenCodec) Decrypt(ciphertext, nonce []byte) (string, error) {
	if len(nonce) != c.aead.NonceSize() {
		return "", apperrors.DecryptionError(fmt.Errorf("bad nonce length %d", len(nonce)))
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperrors.DecryptionError(err)
	}
	return string(plaintext), nil
}

// GenerateKey generates a random 32-byte key, hex encoded, suitable for
// the devboard.crypto.token_key configuration value.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
