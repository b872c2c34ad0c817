package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/db"
	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// fakeKV emulates the store's TTL semantics with an injectable clock:
// an entry past its TTL is absent on read, not proactively purged.
type fakeKV struct {
	now     time.Time
	entries map[string]fakeEntry
	getErr  error
	setErr  error
}

type fakeEntry struct {
	value   []byte
	written time.Time
	ttl     time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{now: time.Unix(1700000000, 0), entries: make(map[string]fakeEntry)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.entries[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if f.now.Sub(e.written) >= e.ttl {
		return nil, db.ErrKeyNotFound
	}
	return e.value, nil
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = fakeEntry{value: value, written: f.now, ttl: ttl}
	return nil
}

func TestKey_ContentFingerprint(t *testing.T) {
	docA := domain.Document{Data: []byte("content A"), Filename: "rfp.pdf"}
	docB := domain.Document{Data: []byte("content B"), Filename: "rfp.pdf"}
	docARenamed := domain.Document{Data: []byte("content A"), Filename: "other.pdf"}

	if Key(docA, domain.OpProposal) == Key(docB, domain.OpProposal) {
		t.Error("different content with the same filename must not collide")
	}
	if Key(docA, domain.OpProposal) != Key(docARenamed, domain.OpProposal) {
		t.Error("identical content under a different filename must share a key")
	}
	if Key(docA, domain.OpProposal) == Key(docA, domain.OpCompliance) {
		t.Error("different operations on one document must have distinct keys")
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil, zap.NewNop())
	key := Key(domain.Document{Data: []byte("doc")}, domain.OpProposal)

	c.Put(context.Background(), key, []byte("result"), time.Hour)

	kv.now = kv.now.Add(59 * time.Minute)
	got, ok := c.Get(context.Background(), key)
	if !ok {
		t.Fatal("expected hit within TTL")
	}
	if string(got) != "result" {
		t.Errorf("got %q", got)
	}
}

func TestCache_MissAfterTTL(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil, zap.NewNop())
	key := Key(domain.Document{Data: []byte("doc")}, domain.OpProposal)

	c.Put(context.Background(), key, []byte("result"), time.Hour)

	kv.now = kv.now.Add(61 * time.Minute)
	if _, ok := c.Get(context.Background(), key); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCache_PutResetsTTLClock(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil, zap.NewNop())
	key := Key(domain.Document{Data: []byte("doc")}, domain.OpProposal)

	c.Put(context.Background(), key, []byte("first"), time.Hour)
	kv.now = kv.now.Add(50 * time.Minute)
	c.Put(context.Background(), key, []byte("second"), time.Hour)

	kv.now = kv.now.Add(50 * time.Minute)
	got, ok := c.Get(context.Background(), key)
	if !ok {
		t.Fatal("overwrite should have reset the TTL clock")
	}
	if string(got) != "second" {
		t.Errorf("got %q, want the overwritten value", got)
	}
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := New(newFakeKV(), nil, zap.NewNop())
	if _, ok := c.Get(context.Background(), cacheKeyPrefix+"missing"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestCache_DegradesOnStoreFailure(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	c := New(kv, nil, zap.NewNop())

	// Neither read nor write failures may propagate.
	if _, ok := c.Get(context.Background(), "any"); ok {
		t.Fatal("expected miss on store failure")
	}
	c.Put(context.Background(), "any", []byte("v"), time.Hour)
}
