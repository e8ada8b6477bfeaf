package bunrepo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-blockstore/internal/storage/redact"
	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// sealedKey wraps an encrypted Data payload when at-rest sealing is on.
const sealedKey = "$sealed"

// DocumentOption configures the document repository.
type DocumentOption func(*BlockDocumentRepository)

// WithCipher seals document payloads before they reach the database and
// opens them on read. Rows written before sealing was enabled load as-is.
func WithCipher(cipher *secrets.Cipher) DocumentOption {
	return func(r *BlockDocumentRepository) {
		r.cipher = cipher
	}
}

// BlockDocumentRepository persists block documents through Bun. Reads run
// through the schema repository so secret paths come back redacted unless
// the caller asks for them.
type BlockDocumentRepository struct {
	base    baseRepository[domain.BlockDocument]
	schemas store.BlockSchemaRepository
	cipher  *secrets.Cipher
}

func NewBlockDocumentRepository(db *bun.DB, schemas store.BlockSchemaRepository, opts ...DocumentOption) *BlockDocumentRepository {
	handlers := repository.ModelHandlers[*domain.BlockDocument]{
		NewRecord: func() *domain.BlockDocument { return &domain.BlockDocument{} },
		GetID:     func(d *domain.BlockDocument) uuid.UUID { return d.ID },
		SetID: func(d *domain.BlockDocument, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(d *domain.BlockDocument) string { return d.Name },
	}
	repo := &BlockDocumentRepository{
		base:    newBaseRepository[domain.BlockDocument](db, handlers, func(d *domain.BlockDocument) *domain.RecordMeta { return &d.RecordMeta }),
		schemas: schemas,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *BlockDocumentRepository) Create(ctx context.Context, record *domain.BlockDocument) error {
	stored := *record
	if err := r.seal(&stored); err != nil {
		return err
	}
	if err := r.base.create(ctx, &stored); err != nil {
		return err
	}
	record.RecordMeta = stored.RecordMeta
	return nil
}

func (r *BlockDocumentRepository) Update(ctx context.Context, record *domain.BlockDocument) error {
	stored := *record
	if err := r.seal(&stored); err != nil {
		return err
	}
	if err := r.base.update(ctx, &stored); err != nil {
		return err
	}
	record.RecordMeta = stored.RecordMeta
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
	record, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("block_type_id = ?", blockTypeID).
				Where("LOWER(name) = ?", strings.ToLower(name))
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return r.materialize(ctx, record, opts)
}

func (r *BlockDocumentRepository) UpdateData(ctx context.Context, id uuid.UUID, data domain.JSONMap) error {
	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	record.Data = data
	if err := r.seal(record); err != nil {
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
		record := &result.Items[i]
		if err := r.open(record); err != nil {
			return store.ListResult[domain.BlockDocument]{}, err
		}
		redacted, err := redact.Document(ctx, r.schemas, record)
		if err != nil {
			return store.ListResult[domain.BlockDocument]{}, err
		}
		items = append(items, *redacted)
	}
	result.Items = items
	return result, nil
}

func (r *BlockDocumentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *BlockDocumentRepository) materialize(ctx context.Context, record *domain.BlockDocument, opts store.ReadOptions) (*domain.BlockDocument, error) {
	if err := r.open(record); err != nil {
		return nil, err
	}
	if !opts.IncludeSecrets {
		return redact.Document(ctx, r.schemas, record)
	}
	return record, nil
}

// seal replaces Data with its encrypted envelope when a cipher is set.
func (r *BlockDocumentRepository) seal(record *domain.BlockDocument) error {
	if r.cipher == nil || record.Data == nil {
		return nil
	}
	plain, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("seal document data: %w", err)
	}
	box, err := r.cipher.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal document data: %w", err)
	}
	record.Data = domain.JSONMap{sealedKey: base64.StdEncoding.EncodeToString(box)}
	return nil
}

// open reverses seal. Unsealed rows pass through so payloads written before
// a cipher was configured stay readable; sealed rows without a cipher fail.
func (r *BlockDocumentRepository) open(record *domain.BlockDocument) error {
	raw, ok := record.Data[sealedKey].(string)
	if !ok {
		return nil
	}
	if r.cipher == nil {
		return fmt.Errorf("document %s is sealed but no cipher is configured", record.ID)
	}
	box, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("open document %s: %w", record.ID, err)
	}
	plain, err := r.cipher.Open(box)
	if err != nil {
		return fmt.Errorf("open document %s: %w", record.ID, err)
	}
	var data domain.JSONMap
	if err := json.Unmarshal(plain, &data); err != nil {
		return fmt.Errorf("open document %s: %w", record.ID, err)
	}
	record.Data = data
	return nil
}
