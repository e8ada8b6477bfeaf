package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
	command "github.com/goliatone/go-command"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	UpsertBlockType command.Commander[UpsertBlockType]
	SaveDocument    command.Commander[SaveDocument]
	DeleteDocument  command.Commander[DeleteDocument]
}

// Dependencies wires repositories into the command catalog.
type Dependencies struct {
	Types     store.BlockTypeRepository
	Schemas   store.BlockSchemaRepository
	Documents store.BlockDocumentRepository
	Logger    logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Types == nil {
		return nil, errors.New("commands: block type repository is required")
	}
	if deps.Schemas == nil {
		return nil, errors.New("commands: block schema repository is required")
	}
	if deps.Documents == nil {
		return nil, errors.New("commands: block document repository is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		UpsertBlockType: blockTypeUpsertCommand{types: deps.Types},
		SaveDocument: documentSaveCommand{
			types:     deps.Types,
			schemas:   deps.Schemas,
			documents: deps.Documents,
			logger:    deps.Logger,
		},
		DeleteDocument: documentDeleteCommand{
			types:     deps.Types,
			documents: deps.Documents,
		},
	}, nil
}

// UpsertBlockType creates a block type record or refreshes its catalog
// metadata when AllowUpdate is set.
type UpsertBlockType struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	CodeExample      string   `json:"code_example"`
	LogoURL          string   `json:"logo_url"`
	DocumentationURL string   `json:"documentation_url"`
	Capabilities     []string `json:"capabilities"`
	AllowUpdate      bool     `json:"allow_update"`
}

type blockTypeUpsertCommand struct {
	types store.BlockTypeRepository
}

func (c blockTypeUpsertCommand) Execute(ctx context.Context, msg UpsertBlockType) error {
	msg.Name = strings.TrimSpace(msg.Name)
	if msg.Name == "" {
		return errors.New("commands: block type name is required")
	}
	record := &domain.BlockType{
		Name:             msg.Name,
		Description:      msg.Description,
		CodeExample:      msg.CodeExample,
		LogoURL:          msg.LogoURL,
		DocumentationURL: msg.DocumentationURL,
		Capabilities:     domain.StringList(msg.Capabilities),
	}
	if existing, err := c.types.GetByName(ctx, msg.Name); err == nil {
		if !msg.AllowUpdate {
			return errors.New("commands: block type already exists")
		}
		existing.Description = record.Description
		existing.CodeExample = record.CodeExample
		existing.LogoURL = record.LogoURL
		existing.DocumentationURL = record.DocumentationURL
		existing.Capabilities = record.Capabilities
		return c.types.Update(ctx, existing)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return c.types.Create(ctx, record)
}

// SaveDocument writes a raw block document payload. SchemaChecksum binds the
// payload to a registered schema and is required when the document does not
// exist yet.
type SaveDocument struct {
	TypeName       string         `json:"block_type"`
	SchemaChecksum string         `json:"schema_checksum"`
	Name           string         `json:"name"`
	Data           map[string]any `json:"data"`
	Overwrite      bool           `json:"overwrite"`
}

type documentSaveCommand struct {
	types     store.BlockTypeRepository
	schemas   store.BlockSchemaRepository
	documents store.BlockDocumentRepository
	logger    logger.Logger
}

func (c documentSaveCommand) Execute(ctx context.Context, msg SaveDocument) error {
	msg.TypeName = strings.TrimSpace(msg.TypeName)
	msg.Name = strings.TrimSpace(msg.Name)
	if msg.TypeName == "" {
		return errors.New("commands: block type is required")
	}
	if msg.Name == "" {
		return errors.New("commands: document name is required")
	}

	blockType, err := c.types.GetByName(ctx, msg.TypeName)
	if err != nil {
		return err
	}

	c.logger.Debug("saving block document",
		logger.Field{Key: "block_type", Value: blockType.Name},
		logger.Field{Key: "document_name", Value: msg.Name},
		logger.Field{Key: "data", Value: secrets.MaskData(msg.Data)},
	)

	existing, err := c.documents.GetByName(ctx, blockType.ID, msg.Name, store.ReadOptions{})
	if err == nil {
		if !msg.Overwrite {
			return errors.New("commands: block document already exists")
		}
		return c.documents.UpdateData(ctx, existing.ID, domain.JSONMap(msg.Data))
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if msg.SchemaChecksum == "" {
		return errors.New("commands: schema checksum is required")
	}
	schema, err := c.schemas.GetByChecksum(ctx, msg.SchemaChecksum)
	if err != nil {
		return err
	}
	doc := &domain.BlockDocument{
		Name:          msg.Name,
		BlockTypeID:   blockType.ID,
		BlockSchemaID: schema.ID,
		Data:          domain.JSONMap(msg.Data),
	}
	return c.documents.Create(ctx, doc)
}

// DeleteDocument removes a named document from a block type.
type DeleteDocument struct {
	TypeName string `json:"block_type"`
	Name     string `json:"name"`
}

type documentDeleteCommand struct {
	types     store.BlockTypeRepository
	documents store.BlockDocumentRepository
}

func (c documentDeleteCommand) Execute(ctx context.Context, msg DeleteDocument) error {
	msg.TypeName = strings.TrimSpace(msg.TypeName)
	msg.Name = strings.TrimSpace(msg.Name)
	if msg.TypeName == "" {
		return errors.New("commands: block type is required")
	}
	if msg.Name == "" {
		return errors.New("commands: document name is required")
	}

	blockType, err := c.types.GetByName(ctx, msg.TypeName)
	if err != nil {
		return err
	}
	doc, err := c.documents.GetByName(ctx, blockType.ID, msg.Name, store.ReadOptions{})
	if err != nil {
		return err
	}
	return c.documents.SoftDelete(ctx, doc.ID)
}
