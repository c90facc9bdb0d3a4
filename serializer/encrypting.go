package serializer

import (
	"fmt"

	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/security"
)

// EncryptingSerializer wraps another EntrySerializer and encrypts its output
// bytes with AES-256-GCM before they reach a Storage backend, recovered from
// the teacher's WithEncryption option and generalized so it composes with
// any backend (diskcache, redis, leveldbcache) uniformly instead of being
// specific to one Transport.
type EncryptingSerializer struct {
	inner  EntrySerializer
	cipher *security.Cipher
}

// NewEncryptingSerializer wraps inner with encryption derived from passphrase.
func NewEncryptingSerializer(inner EntrySerializer, passphrase string) (*EncryptingSerializer, error) {
	c, err := security.NewCipher(passphrase)
	if err != nil {
		return nil, fmt.Errorf("serializer: %w", err)
	}
	return &EncryptingSerializer{inner: inner, cipher: c}, nil
}

// Write serializes e with inner then encrypts the result.
func (s *EncryptingSerializer) Write(e *entry.CacheEntry) ([]byte, error) {
	plaintext, err := s.inner.Write(e)
	if err != nil {
		return nil, err
	}
	return s.cipher.Encrypt(plaintext)
}

// Read decrypts data then deserializes it with inner.
func (s *EncryptingSerializer) Read(data []byte, id string) (*entry.CacheEntry, error) {
	plaintext, err := s.cipher.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("serializer: decrypt failed: %w", err)
	}
	return s.inner.Read(plaintext, id)
}
