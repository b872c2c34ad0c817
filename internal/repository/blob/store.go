// Package blob stores raw document uploads in the shared key-value store.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/rfpflow/internal/db"
	"github.com/kailas-cloud/rfpflow/internal/domain"
)

var blobKeyPrefix = domain.KeyPrefix + "blob:"

// kv is the consumer interface for blob storage (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store persists raw uploads under stable string keys. No versioning.
type Store struct {
	kv kv
}

// New creates a blob store.
func New(kv kv) *Store {
	return &Store{kv: kv}
}

// Put stores the bytes and returns the generated key. The original filename
// is kept in the key for traceability.
func (s *Store) Put(ctx context.Context, data []byte, filename string) (string, error) {
	key := fmt.Sprintf("rfps/%s_%s", uuid.NewString(), filename)
	if err := s.kv.Set(ctx, blobKeyPrefix+key, data); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return key, nil
}

// Get returns the bytes stored under key.
// Returns domain.ErrBlobNotFound for an unknown key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.kv.Get(ctx, blobKeyPrefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}
