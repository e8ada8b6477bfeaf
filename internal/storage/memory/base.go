package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/google/uuid"
)

// baseMemoryRepo implements the shared CRUD surface over an in-memory map.
// Per-entity repositories layer their secondary indexes on top.
type baseMemoryRepo[T any] struct {
	mu      sync.RWMutex
	records map[uuid.UUID]T
	extract func(*T) *domain.RecordMeta
}

func newBaseMemoryRepo[T any](extract func(*T) *domain.RecordMeta) baseMemoryRepo[T] {
	return baseMemoryRepo[T]{
		records: make(map[uuid.UUID]T),
		extract: extract,
	}
}

func (r *baseMemoryRepo[T]) create(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := r.extract(record)
	meta.EnsureID()
	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	r.records[meta.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) update(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := r.extract(record)
	if meta.ID == uuid.Nil {
		return store.ErrNotFound
	}
	if _, ok := r.records[meta.ID]; !ok {
		return store.ErrNotFound
	}
	meta.UpdatedAt = time.Now().UTC()
	r.records[meta.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) getByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	meta := r.extract(&record)
	if !includeDeleted && !meta.DeletedAt.IsZero() {
		return nil, store.ErrNotFound
	}
	out := record
	return &out, nil
}

func (r *baseMemoryRepo[T]) list(ctx context.Context, opts store.ListOptions) (store.ListResult[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []T
	for _, record := range r.records {
		meta := r.extract(&record)
		if !opts.IncludeSoftDeleted && !meta.DeletedAt.IsZero() {
			continue
		}
		if !opts.Since.IsZero() && meta.CreatedAt.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && meta.CreatedAt.After(opts.Until) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return r.extract(&filtered[i]).CreatedAt.Before(r.extract(&filtered[j]).CreatedAt)
	})

	total := len(filtered)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	return store.ListResult[T]{
		Items: filtered[start:end],
		Total: total,
	}, nil
}

func (r *baseMemoryRepo[T]) softDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return store.ErrNotFound
	}
	meta := r.extract(&record)
	if meta.DeletedAt.IsZero() {
		meta.DeletedAt = time.Now().UTC()
	}
	r.records[id] = record
	return nil
}
