package commands

import (
	internalcommands "github.com/goliatone/go-blockstore/internal/commands"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	command "github.com/goliatone/go-command"
)

// Re-export request types so consumers need not import internal packages.
type (
	UpsertBlockType = internalcommands.UpsertBlockType
	SaveDocument    = internalcommands.SaveDocument
	DeleteDocument  = internalcommands.DeleteDocument
)

// Registry exposes go-command compatible handlers backed by the module repositories.
type Registry struct {
	Catalog         *internalcommands.Catalog
	UpsertBlockType command.Commander[UpsertBlockType]
	SaveDocument    command.Commander[SaveDocument]
	DeleteDocument  command.Commander[DeleteDocument]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Types     store.BlockTypeRepository
	Schemas   store.BlockSchemaRepository
	Documents store.BlockDocumentRepository
	Logger    logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Types:     deps.Types,
		Schemas:   deps.Schemas,
		Documents: deps.Documents,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:         catalog,
		UpsertBlockType: catalog.UpsertBlockType,
		SaveDocument:    catalog.SaveDocument,
		DeleteDocument:  catalog.DeleteDocument,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.UpsertBlockType,
		r.SaveDocument,
		r.DeleteDocument,
	}
}
