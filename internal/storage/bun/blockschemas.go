package bunrepo

import (
	"context"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BlockSchemaRepository struct {
	base baseRepository[domain.BlockSchema]
}

func NewBlockSchemaRepository(db *bun.DB) *BlockSchemaRepository {
	handlers := repository.ModelHandlers[*domain.BlockSchema]{
		NewRecord: func() *domain.BlockSchema { return &domain.BlockSchema{} },
		GetID:     func(s *domain.BlockSchema) uuid.UUID { return s.ID },
		SetID: func(s *domain.BlockSchema, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier:      func() string { return "checksum" },
		GetIdentifierValue: func(s *domain.BlockSchema) string { return s.Checksum },
	}
	return &BlockSchemaRepository{
		base: newBaseRepository[domain.BlockSchema](db, handlers, func(s *domain.BlockSchema) *domain.RecordMeta { return &s.RecordMeta }),
	}
}

func (r *BlockSchemaRepository) Create(ctx context.Context, schema *domain.BlockSchema) error {
	return r.base.create(ctx, schema)
}

func (r *BlockSchemaRepository) Update(ctx context.Context, schema *domain.BlockSchema) error {
	return r.base.update(ctx, schema)
}

func (r *BlockSchemaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlockSchema, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *BlockSchemaRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockSchema], error) {
	return r.base.list(ctx, opts)
}

func (r *BlockSchemaRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

// GetByChecksum matches exactly; checksums are canonical lowercase hex.
func (r *BlockSchemaRepository) GetByChecksum(ctx context.Context, checksum string) (*domain.BlockSchema, error) {
	record, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("checksum = ?", checksum)
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}
