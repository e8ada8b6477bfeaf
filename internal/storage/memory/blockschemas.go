package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/google/uuid"
)

// BlockSchemaRepository keeps block schemas in memory, unique by checksum.
type BlockSchemaRepository struct {
	base       baseMemoryRepo[domain.BlockSchema]
	mu         sync.RWMutex
	byChecksum map[string]uuid.UUID
}

// NewBlockSchemaRepository creates an empty in-memory schema repository.
func NewBlockSchemaRepository() *BlockSchemaRepository {
	return &BlockSchemaRepository{
		base: newBaseMemoryRepo(func(s *domain.BlockSchema) *domain.RecordMeta {
			return &s.RecordMeta
		}),
		byChecksum: make(map[string]uuid.UUID),
	}
}

func (r *BlockSchemaRepository) Create(ctx context.Context, record *domain.BlockSchema) error {
	if record == nil {
		return fmt.Errorf("block schema is required")
	}
	if record.Checksum == "" {
		return fmt.Errorf("block schema checksum is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byChecksum[record.Checksum]; ok {
		return fmt.Errorf("%w: block schema %s", store.ErrDuplicate, record.Checksum)
	}
	if err := r.base.create(ctx, record); err != nil {
		return err
	}
	r.byChecksum[record.Checksum] = record.ID
	return nil
}

func (r *BlockSchemaRepository) Update(ctx context.Context, record *domain.BlockSchema) error {
	if record == nil {
		return fmt.Errorf("block schema is required")
	}
	if record.Checksum == "" {
		return fmt.Errorf("block schema checksum is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.base.getByID(ctx, record.ID, true)
	if err != nil {
		return err
	}
	if owner, ok := r.byChecksum[record.Checksum]; ok && owner != record.ID {
		return fmt.Errorf("%w: block schema %s", store.ErrDuplicate, record.Checksum)
	}
	if err := r.base.update(ctx, record); err != nil {
		return err
	}
	if current.Checksum != record.Checksum {
		delete(r.byChecksum, current.Checksum)
	}
	r.byChecksum[record.Checksum] = record.ID
	return nil
}

func (r *BlockSchemaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockSchema, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *BlockSchemaRepository) GetByChecksum(ctx context.Context, checksum string) (*domain.BlockSchema, error) {
	r.mu.RLock()
	id, ok := r.byChecksum[checksum]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.base.getByID(ctx, id, false)
}

func (r *BlockSchemaRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockSchema], error) {
	return r.base.list(ctx, opts)
}

func (r *BlockSchemaRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := r.base.softDelete(ctx, id); err != nil {
		return err
	}
	delete(r.byChecksum, record.Checksum)
	return nil
}
