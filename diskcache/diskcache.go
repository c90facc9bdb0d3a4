// Package diskcache provides an implementation of httpcache.Cache that uses
// the diskv package to persist serialized cache entries to the local
// filesystem. It is used by storage.Serialized as a persistent backend, and
// by resource.FileFactory for the byte content of cached bodies.
package diskcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/peterbourgon/diskv"
)

// Cache is an implementation of httpcache.Cache that persists entry bytes
// under basePath, one file per key.
type Cache struct {
	d *diskv.Diskv
}

// Get returns the serialized entry bytes for key, if present.
// The context parameter is accepted for interface compliance but not used for disk operations.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	data, err = c.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false, nil // file not found is not an error, just missing
	}
	return data, true, nil
}

// Set writes the serialized entry bytes for key, overwriting any prior value.
// The context parameter is accepted for interface compliance but not used for disk operations.
func (c *Cache) Set(_ context.Context, key string, data []byte) error {
	if err := c.d.WriteStream(keyToFilename(key), bytes.NewReader(data), true); err != nil {
		return fmt.Errorf("diskcache: set failed for key %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key from disk.
// The context parameter is accepted for interface compliance but not used for disk operations.
func (c *Cache) Delete(_ context.Context, key string) error {
	// Erase errors when the file doesn't exist are not real errors.
	_ = c.d.Erase(keyToFilename(key)) //nolint:errcheck // file not found is acceptable
	return nil
}

func keyToFilename(key string) string {
	h := sha256.New()
	//nolint:errcheck // io.WriteString to hash.Hash never fails
	_, _ = io.WriteString(h, key)
	return hex.EncodeToString(h.Sum(nil))
}

// New returns a new Cache that stores files under basePath.
func New(basePath string) *Cache {
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024, // 100MB
		}),
	}
}

// NewWithDiskv returns a new Cache using the provided Diskv as underlying storage.
func NewWithDiskv(d *diskv.Diskv) *Cache {
	return &Cache{d}
}
