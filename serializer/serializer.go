// Package serializer converts CacheEntry values to and from bytes for
// persistent Storage backends. The default GobSerializer uses
// encoding/gob, which only decodes into concrete registered types declared
// by this package — unlike a self-describing polymorphic format, there is
// no way for a corrupted or malicious payload to instantiate an arbitrary
// type, satisfying spec.md §6's safe allow-list requirement for persisted
// entries.
package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/relaycache/httpcache/entry"
	"github.com/relaycache/httpcache/resource"
)

// EntrySerializer converts a CacheEntry to bytes for a Storage backend and
// back. id identifies the entry's storage key, used to namespace the
// resource bytes reconstructed on Read.
type EntrySerializer interface {
	Write(e *entry.CacheEntry) ([]byte, error)
	Read(data []byte, id string) (*entry.CacheEntry, error)
}

// entryRecord is the concrete, gob-registered shape written to disk. Only
// fields representable as primitives, slices, and maps of primitives are
// included; Resource is flattened to its raw bytes.
type entryRecord struct {
	RequestDate     time.Time
	ResponseDate    time.Time
	StatusCode      int
	ReasonPhrase    string
	ResponseHeaders map[string][]string
	Body            []byte
	HasResource     bool
	VariantMap      map[string]string
	RequestMethod   string
	ErrorCount      int
}

func init() {
	gob.Register(entryRecord{})
}

// GobSerializer serializes entries with encoding/gob. Resource bytes are
// materialized through factory on Read; MemoryFactory is used by default.
type GobSerializer struct {
	factory resource.Factory
}

// NewGobSerializer returns a GobSerializer that reconstructs resource bodies
// via factory. A nil factory defaults to an in-memory resource.Factory.
func NewGobSerializer(factory resource.Factory) *GobSerializer {
	if factory == nil {
		factory = resource.NewMemoryFactory()
	}
	return &GobSerializer{factory: factory}
}

// Write serializes e to bytes, reading its Resource body (if any) fully
// into memory for the duration of the encode.
func (s *GobSerializer) Write(e *entry.CacheEntry) ([]byte, error) {
	rec := entryRecord{
		RequestDate:     e.RequestDate,
		ResponseDate:    e.ResponseDate,
		StatusCode:      e.StatusCode,
		ReasonPhrase:    e.ReasonPhrase,
		ResponseHeaders: map[string][]string(e.ResponseHeaders),
		VariantMap:      e.VariantMap,
		RequestMethod:   e.RequestMethod,
		ErrorCount:      e.ErrorCount,
	}

	if e.Resource != nil {
		body, err := resource.ReadAll(e.Resource)
		if err != nil {
			return nil, fmt.Errorf("serializer: reading resource: %w", err)
		}
		rec.Body = body
		rec.HasResource = true
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return nil, fmt.Errorf("serializer: encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Read deserializes data into a CacheEntry, reconstructing its Resource (if
// the original entry had one) under identifier id.
func (s *GobSerializer) Read(data []byte, id string) (*entry.CacheEntry, error) {
	var rec entryRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("serializer: decode failed: %w", err)
	}

	e := &entry.CacheEntry{
		RequestDate:     rec.RequestDate,
		ResponseDate:    rec.ResponseDate,
		StatusCode:      rec.StatusCode,
		ReasonPhrase:    rec.ReasonPhrase,
		ResponseHeaders: http.Header(rec.ResponseHeaders),
		VariantMap:      rec.VariantMap,
		RequestMethod:   rec.RequestMethod,
		ErrorCount:      rec.ErrorCount,
	}

	if rec.HasResource {
		res, err := s.factory.Generate(id, bytes.NewReader(rec.Body), int64(len(rec.Body))+1)
		if err != nil {
			return nil, fmt.Errorf("serializer: materializing resource: %w", err)
		}
		e.Resource = res
	}

	return e, nil
}
