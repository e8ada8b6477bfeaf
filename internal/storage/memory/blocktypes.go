package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/google/uuid"
)

// BlockTypeRepository keeps block types in memory with a unique slug index.
type BlockTypeRepository struct {
	base   baseMemoryRepo[domain.BlockType]
	mu     sync.RWMutex
	byName map[string]uuid.UUID
}

// NewBlockTypeRepository creates an empty in-memory block type repository.
func NewBlockTypeRepository() *BlockTypeRepository {
	return &BlockTypeRepository{
		base: newBaseMemoryRepo(func(t *domain.BlockType) *domain.RecordMeta {
			return &t.RecordMeta
		}),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *BlockTypeRepository) Create(ctx context.Context, record *domain.BlockType) error {
	if record == nil {
		return fmt.Errorf("block type is required")
	}
	name := normalizeName(record.Name)
	if name == "" {
		return fmt.Errorf("block type name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: block type %q", store.ErrDuplicate, record.Name)
	}
	if err := r.base.create(ctx, record); err != nil {
		return err
	}
	r.byName[name] = record.ID
	return nil
}

func (r *BlockTypeRepository) Update(ctx context.Context, record *domain.BlockType) error {
	if record == nil {
		return fmt.Errorf("block type is required")
	}
	name := normalizeName(record.Name)
	if name == "" {
		return fmt.Errorf("block type name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.base.getByID(ctx, record.ID, true)
	if err != nil {
		return err
	}
	if owner, ok := r.byName[name]; ok && owner != record.ID {
		return fmt.Errorf("%w: block type %q", store.ErrDuplicate, record.Name)
	}
	if err := r.base.update(ctx, record); err != nil {
		return err
	}
	if prev := normalizeName(current.Name); prev != name {
		delete(r.byName, prev)
	}
	r.byName[name] = record.ID
	return nil
}

func (r *BlockTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockType, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *BlockTypeRepository) GetByName(ctx context.Context, name string) (*domain.BlockType, error) {
	r.mu.RLock()
	id, ok := r.byName[normalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.base.getByID(ctx, id, false)
}

func (r *BlockTypeRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockType], error) {
	return r.base.list(ctx, opts)
}

func (r *BlockTypeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := r.base.softDelete(ctx, id); err != nil {
		return err
	}
	delete(r.byName, normalizeName(record.Name))
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
