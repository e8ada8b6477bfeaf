package bunrepo

import (
	"context"
	"fmt"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/uptrace/bun"
)

// CreateTables creates the block store tables and their unique indexes.
// Uniqueness is scoped to live rows so a soft delete releases the name:
// block type names and document names per type compare case-insensitively,
// schema checksums exactly.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*domain.BlockType)(nil),
		(*domain.BlockSchema)(nil),
		(*domain.BlockDocument)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}

	indexes := []struct {
		model any
		name  string
		expr  string
	}{
		{(*domain.BlockType)(nil), "block_types_name_live", "lower(name)"},
		{(*domain.BlockSchema)(nil), "block_schemas_checksum_live", "checksum"},
		{(*domain.BlockDocument)(nil), "block_documents_type_name_live", "block_type_id, lower(name)"},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Unique().
			IfNotExists().
			ColumnExpr(idx.expr).
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
