// Package security provides AES-256-GCM encryption for persisted cache
// entry bytes, keyed by a passphrase-derived secret via scrypt. It is
// consumed by serializer.EncryptingSerializer to protect entries at rest in
// the diskcache/redis/leveldbcache backends.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN   = 32768
	scryptR   = 8
	scryptP   = 1
	keyLength = 32
	nonceSize = 12
)

// Cipher wraps an AES-256-GCM AEAD derived from a passphrase.
type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher derives a 32-byte key from passphrase via scrypt and builds an
// AES-256-GCM cipher from it.
func NewCipher(passphrase string) (*Cipher, error) {
	// Fixed salt: the threat model is encryption at rest against a
	// compromised storage backend, not passphrase cracking; a random salt
	// would need to be persisted alongside each entry instead.
	salt := sha256.Sum256([]byte("httpcache-serializer-salt-v1"))
	key, err := scrypt.Key([]byte(passphrase), salt[:], scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("security: failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("security: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("security: failed to create GCM: %w", err)
	}

	return &Cipher{gcm: gcm}, nil
}

// Encrypt returns data sealed with a freshly generated random nonce
// prepended to the ciphertext.
func (c *Cipher) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("security: failed to generate nonce: %w", err)
	}
	return c.gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt reverses Encrypt, expecting the nonce prepended to data.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, fmt.Errorf("security: ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("security: failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// HashKey returns the SHA-256 hex digest of key, used to avoid storing raw
// cache keys (which may embed sensitive URL query parameters) in a
// third-party backend.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
