package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a uniqueness constraint rejects a write,
// e.g. a second document with the same name for one block type. Callers
// racing on first-create re-read after seeing it.
var ErrDuplicate = errors.New("store: duplicate record")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// ReadOptions control how block documents are materialized on read.
// Secret paths in the payload are redacted unless IncludeSecrets is set.
type ReadOptions struct {
	IncludeSecrets bool
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// BlockTypeRepository persists type descriptors, unique by name.
type BlockTypeRepository interface {
	Repository[domain.BlockType]
	GetByName(ctx context.Context, name string) (*domain.BlockType, error)
}

// BlockSchemaRepository persists schema records, keyed by checksum.
type BlockSchemaRepository interface {
	Repository[domain.BlockSchema]
	GetByChecksum(ctx context.Context, checksum string) (*domain.BlockSchema, error)
}

// BlockDocumentRepository persists block documents. Reads run through the
// document's schema so literal secret values come back redacted unless the
// caller asks for them; reference markers are returned untouched either way.
type BlockDocumentRepository interface {
	Create(ctx context.Context, record *domain.BlockDocument) error
	Update(ctx context.Context, record *domain.BlockDocument) error
	GetByID(ctx context.Context, id uuid.UUID, opts ReadOptions) (*domain.BlockDocument, error)
	GetByName(ctx context.Context, blockTypeID uuid.UUID, name string, opts ReadOptions) (*domain.BlockDocument, error)
	UpdateData(ctx context.Context, id uuid.UUID, data domain.JSONMap) error
	List(ctx context.Context, opts ListOptions) (ListResult[domain.BlockDocument], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
