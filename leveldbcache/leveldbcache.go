// Package leveldbcache provides an implementation of httpcache.Cache that
// persists serialized cache entries in an embedded github.com/syndtr/goleveldb
// database. It is an on-disk alternative to diskcache for storage.Serialized
// when an embedded ordered KV store is preferred over one-file-per-key.
package leveldbcache

import (
	"context"

	"github.com/syndtr/goleveldb/leveldb"
)

// Cache is an implementation of httpcache.Cache with leveldb storage.
type Cache struct {
	db *leveldb.DB
}

// Get returns the serialized entry bytes for key, if present.
// The context parameter is accepted for interface compliance but not used for LevelDB operations.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	data, err = c.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes the serialized entry bytes for key, overwriting any prior value.
// The context parameter is accepted for interface compliance but not used for LevelDB operations.
func (c *Cache) Set(_ context.Context, key string, data []byte) error {
	return c.db.Put([]byte(key), data, nil)
}

// Delete removes the entry for key from the database.
// The context parameter is accepted for interface compliance but not used for LevelDB operations.
func (c *Cache) Delete(_ context.Context, key string) error {
	return c.db.Delete([]byte(key), nil)
}

// New returns a new Cache that stores its leveldb database at path.
func New(path string) (*Cache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Cache{db}, nil
}

// NewWithDB returns a new Cache using the provided leveldb as underlying
// storage.
func NewWithDB(db *leveldb.DB) *Cache {
	return &Cache{db}
}
