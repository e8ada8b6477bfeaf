package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/cache"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/google/uuid"
)

// cachedSchemaRepository decorates a schema repository with a read cache.
// Schema records are immutable once created, keyed by checksum, so cached
// entries never go stale while live; deletes evict best effort and the TTL
// bounds the rest.
type cachedSchemaRepository struct {
	inner  store.BlockSchemaRepository
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Logger
}

var _ store.BlockSchemaRepository = (*cachedSchemaRepository)(nil)

func newCachedSchemaRepository(inner store.BlockSchemaRepository, c cache.Cache, ttl time.Duration, log logger.Logger) *cachedSchemaRepository {
	if log == nil {
		log = logger.Default()
	}
	return &cachedSchemaRepository{inner: inner, cache: c, ttl: ttl, logger: log}
}

func (r *cachedSchemaRepository) Create(ctx context.Context, record *domain.BlockSchema) error {
	return r.inner.Create(ctx, record)
}

func (r *cachedSchemaRepository) Update(ctx context.Context, record *domain.BlockSchema) error {
	if err := r.inner.Update(ctx, record); err != nil {
		return err
	}
	r.evict(ctx, record)
	return nil
}

func (r *cachedSchemaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockSchema, error) {
	key := schemaIDKey(id)
	if record := r.readCache(ctx, key); record != nil {
		return record, nil
	}
	record, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.writeCache(ctx, record)
	return record, nil
}

func (r *cachedSchemaRepository) GetByChecksum(ctx context.Context, checksum string) (*domain.BlockSchema, error) {
	key := schemaChecksumKey(checksum)
	if record := r.readCache(ctx, key); record != nil {
		return record, nil
	}
	record, err := r.inner.GetByChecksum(ctx, checksum)
	if err != nil {
		return nil, err
	}
	r.writeCache(ctx, record)
	return record, nil
}

func (r *cachedSchemaRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockSchema], error) {
	return r.inner.List(ctx, opts)
}

func (r *cachedSchemaRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	record, lookupErr := r.inner.GetByID(ctx, id)
	if err := r.inner.SoftDelete(ctx, id); err != nil {
		return err
	}
	if lookupErr == nil {
		r.evict(ctx, record)
	}
	return nil
}

func (r *cachedSchemaRepository) readCache(ctx context.Context, key string) *domain.BlockSchema {
	value, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("schema cache get failed", logger.Field{Key: "error", Value: err})
		return nil
	}
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case domain.BlockSchema:
		clone := v
		return &clone
	case *domain.BlockSchema:
		if v == nil {
			return nil
		}
		clone := *v
		return &clone
	default:
		r.logger.Warn("schema cache returned unexpected type", logger.Field{Key: "type", Value: fmt.Sprintf("%T", value)})
		return nil
	}
}

func (r *cachedSchemaRepository) writeCache(ctx context.Context, record *domain.BlockSchema) {
	if r.ttl <= 0 || record == nil {
		return
	}
	clone := *record
	for _, key := range []string{schemaIDKey(record.ID), schemaChecksumKey(record.Checksum)} {
		if err := r.cache.Set(ctx, key, clone, r.ttl); err != nil {
			r.logger.Warn("schema cache set failed", logger.Field{Key: "error", Value: err})
		}
	}
}

func (r *cachedSchemaRepository) evict(ctx context.Context, record *domain.BlockSchema) {
	if record == nil {
		return
	}
	for _, key := range []string{schemaIDKey(record.ID), schemaChecksumKey(record.Checksum)} {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn("schema cache delete failed", logger.Field{Key: "error", Value: err})
		}
	}
}

func schemaIDKey(id uuid.UUID) string {
	return "schemas:id:" + id.String()
}

func schemaChecksumKey(checksum string) string {
	return "schemas:sum:" + checksum
}
