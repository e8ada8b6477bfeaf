package di

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/goliatone/go-blockstore/pkg/blocks"
	"github.com/goliatone/go-blockstore/pkg/commands"
	"github.com/goliatone/go-blockstore/pkg/config"
	"github.com/goliatone/go-blockstore/pkg/interfaces/cache"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/secrets"
	"github.com/goliatone/go-blockstore/pkg/storage"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Options configure the DI container.
type Options struct {
	Config   config.Config
	Storage  storage.Providers
	Registry *blocks.Registry
	Logger   logger.Logger
	Cache    cache.Cache
}

// Container wires repositories, the block client, and commands.
type Container struct {
	Config   config.Config
	Storage  storage.Providers
	Client   *blocks.Client
	Commands *commands.Registry

	// db is set when the container opened the database itself and owns
	// its lifecycle.
	db *bun.DB
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	container := &Container{Config: cfg}

	providers := opts.Storage
	if providers.Types == nil {
		built, db, err := buildProviders(cfg, opts.Cache, lgr)
		if err != nil {
			return nil, err
		}
		providers = built
		container.db = db
	}
	container.Storage = providers

	client, err := blocks.NewClient(blocks.Dependencies{
		Types:     providers.Types,
		Schemas:   providers.Schemas,
		Documents: providers.Documents,
		Registry:  opts.Registry,
		Logger:    lgr,
	})
	if err != nil {
		return nil, err
	}
	container.Client = client

	cmdRegistry, err := commands.New(commands.Dependencies{
		Types:     providers.Types,
		Schemas:   providers.Schemas,
		Documents: providers.Documents,
		Logger:    lgr,
	})
	if err != nil {
		return nil, err
	}
	container.Commands = cmdRegistry

	return container, nil
}

// buildProviders opens storage described by the configuration. The returned
// db is non-nil only when the container opened it and must close it.
func buildProviders(cfg config.Config, c cache.Cache, lgr logger.Logger) (storage.Providers, *bun.DB, error) {
	var storageOpts []storage.Option
	storageOpts = append(storageOpts, storage.WithLogger(lgr))
	if c != nil && cfg.Schemas.CacheTTL > 0 {
		storageOpts = append(storageOpts, storage.WithSchemaCache(c, cfg.Schemas.CacheTTL))
	}
	if cfg.Secrets.AtRestKey != "" {
		cipher, err := secrets.NewCipherFromHex(cfg.Secrets.AtRestKey)
		if err != nil {
			return storage.Providers{}, nil, fmt.Errorf("di: at rest key: %w", err)
		}
		storageOpts = append(storageOpts, storage.WithDocumentCipher(cipher))
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemoryProviders(storageOpts...), nil, nil
	case config.DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.DriverName(), cfg.Storage.DSN)
		if err != nil {
			return storage.Providers{}, nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		if err := storage.CreateTables(context.Background(), db); err != nil {
			db.Close()
			return storage.Providers{}, nil, fmt.Errorf("di: prepare sqlite: %w", err)
		}
		return storage.NewBunProviders(db, storageOpts...), db, nil
	default:
		return storage.Providers{}, nil, fmt.Errorf("di: storage driver %q is not supported", cfg.Storage.Driver)
	}
}

// DB exposes the container-owned database handle, nil when storage was
// injected or runs in memory.
func (c *Container) DB() *bun.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close releases resources the container owns.
func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
