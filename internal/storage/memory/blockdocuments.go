package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-blockstore/internal/storage/redact"
	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/google/uuid"
)

// docKey identifies a live document: names are unique per block type among
// documents that have not been soft deleted.
type docKey struct {
	typeID uuid.UUID
	name   string
}

// BlockDocumentRepository keeps block documents in memory. Reads consult the
// schema repository so secret paths come back redacted by default.
type BlockDocumentRepository struct {
	base    baseMemoryRepo[domain.BlockDocument]
	schemas store.BlockSchemaRepository
	mu      sync.RWMutex
	byName  map[docKey]uuid.UUID
}

// NewBlockDocumentRepository creates an empty in-memory document repository
// that redacts reads through the given schema repository.
func NewBlockDocumentRepository(schemas store.BlockSchemaRepository) *BlockDocumentRepository {
	return &BlockDocumentRepository{
		base: newBaseMemoryRepo(func(d *domain.BlockDocument) *domain.RecordMeta {
			return &d.RecordMeta
		}),
		schemas: schemas,
		byName:  make(map[docKey]uuid.UUID),
	}
}

func (r *BlockDocumentRepository) Create(ctx context.Context, record *domain.BlockDocument) error {
	if record == nil {
		return fmt.Errorf("block document is required")
	}
	key, err := keyFor(record)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("%w: block document %q for type %s", store.ErrDuplicate, record.Name, record.BlockTypeID)
	}

	stored := *record
	stored.Data, err = record.Data.Clone()
	if err != nil {
		return err
	}
	if err := r.base.create(ctx, &stored); err != nil {
		return err
	}
	record.RecordMeta = stored.RecordMeta
	r.byName[key] = stored.ID
	return nil
}

func (r *BlockDocumentRepository) Update(ctx context.Context, record *domain.BlockDocument) error {
	if record == nil {
		return fmt.Errorf("block document is required")
	}
	key, err := keyFor(record)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.base.getByID(ctx, record.ID, true)
	if err != nil {
		return err
	}
	if owner, ok := r.byName[key]; ok && owner != record.ID {
		return fmt.Errorf("%w: block document %q for type %s", store.ErrDuplicate, record.Name, record.BlockTypeID)
	}

	stored := *record
	stored.Data, err = record.Data.Clone()
	if err != nil {
		return err
	}
	if err := r.base.update(ctx, &stored); err != nil {
		return err
	}
	record.RecordMeta = stored.RecordMeta

	if prev, err := keyFor(current); err == nil && prev != key && current.DeletedAt.IsZero() {
		delete(r.byName, prev)
	}
	if current.DeletedAt.IsZero() {
		r.byName[key] = record.ID
	}
	return nil
}

func (r *BlockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID, opts store.ReadOptions) (*domain.BlockDocument, error) {
	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return r.materialize(ctx, record, opts)
}

func (r *BlockDocumentRepository) GetByName(ctx context.Context, blockTypeID uuid.UUID, name string, opts store.ReadOptions) (*domain.BlockDocument, error) {
	r.mu.RLock()
	id, ok := r.byName[docKey{typeID: blockTypeID, name: normalizeName(name)}]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return r.materialize(ctx, record, opts)
}

func (r *BlockDocumentRepository) UpdateData(ctx context.Context, id uuid.UUID, data domain.JSONMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	record.Data, err = data.Clone()
	if err != nil {
		return err
	}
	return r.base.update(ctx, record)
}

func (r *BlockDocumentRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.BlockDocument], error) {
	result, err := r.base.list(ctx, opts)
	if err != nil {
		return store.ListResult[domain.BlockDocument]{}, err
	}
	items := make([]domain.BlockDocument, 0, len(result.Items))
	for i := range result.Items {
		redacted, err := redact.Document(ctx, r.schemas, &result.Items[i])
		if err != nil {
			return store.ListResult[domain.BlockDocument]{}, err
		}
		items = append(items, *redacted)
	}
	result.Items = items
	return result, nil
}

func (r *BlockDocumentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := r.base.softDelete(ctx, id); err != nil {
		return err
	}
	if key, err := keyFor(record); err == nil {
		delete(r.byName, key)
	}
	return nil
}

// materialize prepares a stored record for the caller: redacted through the
// schema by default, or detached with secrets intact when requested.
func (r *BlockDocumentRepository) materialize(ctx context.Context, record *domain.BlockDocument, opts store.ReadOptions) (*domain.BlockDocument, error) {
	if !opts.IncludeSecrets {
		return redact.Document(ctx, r.schemas, record)
	}
	out := *record
	data, err := record.Data.Clone()
	if err != nil {
		return nil, err
	}
	out.Data = data
	return &out, nil
}

func keyFor(record *domain.BlockDocument) (docKey, error) {
	name := normalizeName(record.Name)
	if name == "" {
		return docKey{}, fmt.Errorf("block document name is required")
	}
	if record.BlockTypeID == uuid.Nil {
		return docKey{}, fmt.Errorf("block document type id is required")
	}
	return docKey{typeID: record.BlockTypeID, name: name}, nil
}
