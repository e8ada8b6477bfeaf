package bunrepo

import (
	"context"
	"strings"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BlockTypeRepository struct {
	base baseRepository[domain.BlockType]
}

func NewBlockTypeRepository(db *bun.DB) *BlockTypeRepository {
	handlers := repository.ModelHandlers[*domain.BlockType]{
		NewRecord: func() *domain.BlockType { return &domain.BlockType{} },
		GetID:     func(t *domain.BlockType) uuid.UUID { return t.ID },
		SetID: func(t *domain.BlockType, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(t *domain.BlockType) string { return t.Name },
	}
	return &BlockTypeRepository{
		base: newBaseRepository[domain.BlockType](db, handlers, func(t *domain.BlockType) *domain.RecordMeta { return &t.RecordMeta }),
	}
}

func (r *BlockTypeRepository) Create(ctx context.Context, blockType *domain.BlockType) error {
	return r.base.create(ctx, blockType)
}

func (r *BlockTypeRepository) Update(ctx context.Context, blockType *domain.BlockType) error {
	return r.base.update(ctx, blockType)
}

func (r *BlockTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockType, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *BlockTypeRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockType], error) {
	return r.base.list(ctx, opts)
}

func (r *BlockTypeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *BlockTypeRepository) GetByName(ctx context.Context, name string) (*domain.BlockType, error) {
	record, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(name) = ?", strings.ToLower(name))
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}
