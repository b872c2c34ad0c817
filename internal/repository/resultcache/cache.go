// Package resultcache is the content-addressed cache for computed pipeline
// results. Cache failures degrade to always-compute; they never fail the
// request.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/db"
	"github.com/kailas-cloud/rfpflow/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "result:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives the deterministic cache key for one document and operation.
// Keyed on a content fingerprint of the raw bytes, so identical documents
// re-uploaded under a different filename still hit, and same-named
// different documents never collide.
func Key(doc domain.Document, op domain.Operation) string {
	h := sha256.New()
	h.Write(doc.Data)
	h.Write([]byte(":" + string(op)))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Cache stores serialized pipeline results with a TTL.
type Cache struct {
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached result for key. An expired or absent entry, and any
// store failure, report a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read result cache",
				zap.String("key", key),
				zap.Error(fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)))
		}
		c.incCache("miss")
		return nil, false
	}
	if len(data) == 0 {
		c.incCache("miss")
		return nil, false
	}

	c.incCache("hit")
	return data, true
}

// Put stores a result under key, overwriting any existing entry and
// resetting its TTL clock. Store failures are logged and swallowed.
func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.logger.Warn("Failed to write result cache",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)))
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
