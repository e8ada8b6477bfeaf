package storage

import (
	"context"
	"database/sql"
	"time"

	bunrepo "github.com/goliatone/go-blockstore/internal/storage/bun"
	"github.com/goliatone/go-blockstore/internal/storage/memory"
	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/cache"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// Providers exposes the repositories needed by the block client.
type Providers struct {
	Types       store.BlockTypeRepository
	Schemas     store.BlockSchemaRepository
	Documents   store.BlockDocumentRepository
	Transaction store.TransactionManager
}

type settings struct {
	cache    cache.Cache
	cacheTTL time.Duration
	cipher   *secrets.Cipher
	logger   logger.Logger
}

type Option func(*settings)

// WithSchemaCache layers a read cache over schema lookups. Schemas are
// immutable per checksum, which makes them safe to cache; a TTL of zero
// disables writes.
func WithSchemaCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *settings) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithDocumentCipher seals document payloads at rest. Only database-backed
// providers apply it; in-memory repositories hold data in process anyway.
func WithDocumentCipher(cipher *secrets.Cipher) Option {
	return func(s *settings) {
		s.cipher = cipher
	}
}

// WithLogger sets the logger used by decorators for cache warnings.
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		s.logger = log
	}
}

func newSettings(opts []Option) settings {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Default()
	}
	return cfg
}

func (s settings) wrapSchemas(schemas store.BlockSchemaRepository) store.BlockSchemaRepository {
	if s.cache == nil {
		return schemas
	}
	return newCachedSchemaRepository(schemas, s.cache, s.cacheTTL, s.logger)
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	cfg := newSettings(opts)

	schemas := cfg.wrapSchemas(memory.NewBlockSchemaRepository())
	return Providers{
		Types:       memory.NewBlockTypeRepository(),
		Schemas:     schemas,
		Documents:   memory.NewBlockDocumentRepository(schemas),
		Transaction: &store.NopTransactionManager{},
	}
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller is responsible for creating the *bun.DB instance (potentially
// via go-persistence-bun) and managing its lifecycle; CreateTables covers
// setups without a migration runner.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(
		(*domain.BlockType)(nil),
		(*domain.BlockSchema)(nil),
		(*domain.BlockDocument)(nil),
	)

	cfg := newSettings(opts)

	schemas := cfg.wrapSchemas(bunrepo.NewBlockSchemaRepository(db))
	var docOpts []bunrepo.DocumentOption
	if cfg.cipher != nil {
		docOpts = append(docOpts, bunrepo.WithCipher(cfg.cipher))
	}

	return Providers{
		Types:       bunrepo.NewBlockTypeRepository(db),
		Schemas:     schemas,
		Documents:   bunrepo.NewBlockDocumentRepository(db, schemas, docOpts...),
		Transaction: &bunTxManager{db: db},
	}
}

// CreateTables creates the block store tables and unique indexes. Callers
// running their own migrations can skip it.
func CreateTables(ctx context.Context, db *bun.DB) error {
	return bunrepo.CreateTables(ctx, db)
}

type bunTxManager struct {
	db *bun.DB
}

func (m *bunTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx)
	})
}
