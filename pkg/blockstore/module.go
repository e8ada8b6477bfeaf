// Package blockstore assembles the block system into a host-embeddable
// module: typed configuration blocks registered from Go structs, schema
// derivation, and named document storage with secret redaction.
package blockstore

import (
	"github.com/goliatone/go-blockstore/internal/di"
	"github.com/goliatone/go-blockstore/pkg/blocks"
	"github.com/goliatone/go-blockstore/pkg/commands"
	"github.com/goliatone/go-blockstore/pkg/config"
	"github.com/goliatone/go-blockstore/pkg/interfaces/cache"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/storage"
)

// ModuleOptions configure the block store module facade.
type ModuleOptions struct {
	Config   config.Config
	Storage  storage.Providers
	Registry *blocks.Registry
	Logger   logger.Logger
	Cache    cache.Cache
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
}

// NewModule assembles repositories, the block client, and commands. When no
// storage providers are injected the configured driver decides the backend.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:   opts.Config,
		Storage:  opts.Storage,
		Registry: opts.Registry,
		Logger:   opts.Logger,
		Cache:    opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Client returns the block client used to register types and save, load,
// and delete documents.
func (m *Module) Client() *blocks.Client {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Client
}

// Registry returns the block type registry the client resolves with.
func (m *Module) Registry() *blocks.Registry {
	client := m.Client()
	if client == nil {
		return nil
	}
	return client.Registry()
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Storage exposes the repository providers.
func (m *Module) Storage() storage.Providers {
	if m == nil || m.container == nil {
		return storage.Providers{}
	}
	return m.container.Storage
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Close releases container-owned resources such as a self-opened database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
