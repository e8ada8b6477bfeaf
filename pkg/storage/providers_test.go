package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-blockstore/internal/storage/memory"
	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
	"github.com/google/uuid"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]any)}
}

func (c *mapCache) Get(ctx context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type countingSchemas struct {
	store.BlockSchemaRepository
	byChecksum int
	byID       int
}

func (c *countingSchemas) GetByChecksum(ctx context.Context, checksum string) (*domain.BlockSchema, error) {
	c.byChecksum++
	return c.BlockSchemaRepository.GetByChecksum(ctx, checksum)
}

func (c *countingSchemas) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockSchema, error) {
	c.byID++
	return c.BlockSchemaRepository.GetByID(ctx, id)
}

func TestMemoryProvidersRoundTrip(t *testing.T) {
	providers := NewMemoryProviders()
	ctx := context.Background()

	blockType := &domain.BlockType{Name: "s3-bucket"}
	if err := providers.Types.Create(ctx, blockType); err != nil {
		t.Fatalf("create type: %v", err)
	}

	schema := &domain.BlockSchema{
		Checksum: "sha256:roundtrip",
		Fields:   domain.JSONMap{domain.SchemaKeySecrets: []any{"credentials"}},
	}
	if err := providers.Schemas.Create(ctx, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	doc := &domain.BlockDocument{
		Name:          "prod",
		BlockTypeID:   blockType.ID,
		BlockSchemaID: schema.ID,
		Data:          domain.JSONMap{"bucket": "backups", "credentials": "AKIA123"},
	}
	if err := providers.Documents.Create(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	got, err := providers.Documents.GetByName(ctx, blockType.ID, "prod", store.ReadOptions{})
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Data["credentials"] != secrets.Placeholder {
		t.Fatalf("expected redacted credentials, got %v", got.Data["credentials"])
	}
}

func TestSchemaCacheServesRepeatLookups(t *testing.T) {
	inner := &countingSchemas{BlockSchemaRepository: memory.NewBlockSchemaRepository()}
	cached := newCachedSchemaRepository(inner, newMapCache(), time.Minute, nil)
	ctx := context.Background()

	schema := &domain.BlockSchema{Checksum: "sha256:cached", Fields: domain.JSONMap{"type": "object"}}
	if err := cached.Create(ctx, schema); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := cached.GetByChecksum(ctx, "sha256:cached"); err != nil {
			t.Fatalf("get by checksum: %v", err)
		}
	}
	if inner.byChecksum != 1 {
		t.Fatalf("expected one backing lookup, got %d", inner.byChecksum)
	}

	// The checksum miss warmed the id key as well.
	for i := 0; i < 2; i++ {
		if _, err := cached.GetByID(ctx, schema.ID); err != nil {
			t.Fatalf("get by id: %v", err)
		}
	}
	if inner.byID != 0 {
		t.Fatalf("expected id lookups served from cache, got %d", inner.byID)
	}
}

func TestSchemaCacheEvictsOnDelete(t *testing.T) {
	inner := &countingSchemas{BlockSchemaRepository: memory.NewBlockSchemaRepository()}
	c := newMapCache()
	cached := newCachedSchemaRepository(inner, c, time.Minute, nil)
	ctx := context.Background()

	schema := &domain.BlockSchema{Checksum: "sha256:gone", Fields: domain.JSONMap{"type": "object"}}
	if err := cached.Create(ctx, schema); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cached.GetByChecksum(ctx, "sha256:gone"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := cached.SoftDelete(ctx, schema.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if len(c.entries) != 0 {
		t.Fatalf("expected cache evicted, got %d entries", len(c.entries))
	}

	if _, err := cached.GetByChecksum(ctx, "sha256:gone"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
