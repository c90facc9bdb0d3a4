package leveldbcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relaycache/httpcache/test"
)

func TestLevelDBCache(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "httpcache")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	cache, err := New(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("New leveldb,: %v", err)
	}

	test.Cache(t, cache)
}
