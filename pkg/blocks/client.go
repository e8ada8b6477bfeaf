package blocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
)

// Dependencies wires repositories and logging into the client.
type Dependencies struct {
	Types     store.BlockTypeRepository
	Schemas   store.BlockSchemaRepository
	Documents store.BlockDocumentRepository
	Registry  *Registry
	Logger    logger.Logger
}

// Client is the block runtime: it registers types and schemas, saves block
// instances as documents, and loads documents back into typed values.
type Client struct {
	types     store.BlockTypeRepository
	schemas   store.BlockSchemaRepository
	documents store.BlockDocumentRepository
	registry  *Registry
	log       logger.Logger
}

var (
	errTypesRequired     = errors.New("blocks: block type repository is required")
	errSchemasRequired   = errors.New("blocks: block schema repository is required")
	errDocumentsRequired = errors.New("blocks: block document repository is required")
)

// NewClient constructs the block runtime client.
func NewClient(deps Dependencies) (*Client, error) {
	if deps.Types == nil {
		return nil, errTypesRequired
	}
	if deps.Schemas == nil {
		return nil, errSchemasRequired
	}
	if deps.Documents == nil {
		return nil, errDocumentsRequired
	}
	if deps.Registry == nil {
		deps.Registry = Default
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	return &Client{
		types:     deps.Types,
		schemas:   deps.Schemas,
		documents: deps.Documents,
		registry:  deps.Registry,
		log:       deps.Logger,
	}, nil
}

// Registry exposes the registry the client populates during registration.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Register persists the block's type descriptor and schema. Registration is
// idempotent: the type record is keyed by name and refreshed in place, the
// schema record is keyed by checksum and immutable. Nested block fields
// register recursively; interface fields register every registered member
// type assignable to them.
func (c *Client) Register(ctx context.Context, b Block) (*domain.BlockType, *domain.BlockSchema, error) {
	return c.registerBlock(ctx, b, map[reflect.Type]bool{})
}

func (c *Client) registerBlock(ctx context.Context, b Block, visited map[reflect.Type]bool) (*domain.BlockType, *domain.BlockSchema, error) {
	t, err := structTypeOf(b)
	if err != nil {
		return nil, nil, err
	}
	visited[t] = true
	c.registry.Register(func() Block { return newBlockOf(t) })

	fields, checksum, err := Schema(b)
	if err != nil {
		return nil, nil, err
	}
	typeRec, err := c.upsertType(ctx, DescriptorFor(b))
	if err != nil {
		return nil, nil, err
	}
	schemaRec, err := c.ensureSchema(ctx, checksum, fields)
	if err != nil {
		return nil, nil, err
	}
	b.blockBase().attachType(typeRec.ID, schemaRec.ID)

	for _, field := range declaredFields(t) {
		if err := c.registerField(ctx, field.typ, visited); err != nil {
			return nil, nil, err
		}
	}

	c.log.Debug("block type registered",
		logger.Field{Key: "block_type", Value: typeRec.Name},
		logger.Field{Key: "checksum", Value: checksum},
	)
	return typeRec, schemaRec, nil
}

func (c *Client) registerField(ctx context.Context, ft reflect.Type, visited map[reflect.Type]bool) error {
	switch {
	case isBlockFieldType(ft):
		nt := derefType(ft)
		if visited[nt] {
			return nil
		}
		_, _, err := c.registerBlock(ctx, newBlockOf(nt), visited)
		return err

	case ft.Kind() == reflect.Interface && ft.NumMethod() > 0:
		for _, ctor := range c.registry.Members(ft) {
			member := ctor()
			mt, err := structTypeOf(member)
			if err != nil {
				continue
			}
			if visited[mt] {
				continue
			}
			if _, _, err := c.registerBlock(ctx, member, visited); err != nil {
				return err
			}
		}
		return nil

	case ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array:
		if isBlockFieldType(ft.Elem()) {
			return c.registerField(ctx, ft.Elem(), visited)
		}
		return nil

	default:
		return nil
	}
}

func (c *Client) upsertType(ctx context.Context, desc *domain.BlockType) (*domain.BlockType, error) {
	existing, err := c.types.GetByName(ctx, desc.Name)
	switch {
	case err == nil:
		existing.Description = desc.Description
		existing.CodeExample = desc.CodeExample
		existing.LogoURL = desc.LogoURL
		existing.DocumentationURL = desc.DocumentationURL
		existing.Capabilities = desc.Capabilities
		if err := c.types.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, store.ErrNotFound):
		desc.EnsureID()
		if err := c.types.Create(ctx, desc); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// lost a first-create race; the winner's record is there now
				return c.upsertType(ctx, desc)
			}
			return nil, err
		}
		return desc, nil

	default:
		return nil, err
	}
}

func (c *Client) ensureSchema(ctx context.Context, checksum string, fields domain.JSONMap) (*domain.BlockSchema, error) {
	existing, err := c.schemas.GetByChecksum(ctx, checksum)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	record := &domain.BlockSchema{Checksum: checksum, Fields: fields}
	record.EnsureID()
	if err := c.schemas.Create(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.schemas.GetByChecksum(ctx, checksum)
		}
		return nil, err
	}
	return record, nil
}

type saveConfig struct {
	name         string
	overwrite    bool
	anonymous    bool
	anonymousSet bool
}

// SaveOption tunes a single Save call.
type SaveOption func(*saveConfig)

// WithName names the document, winning over a name recorded on the block.
func WithName(name string) SaveOption {
	return func(cfg *saveConfig) { cfg.name = name }
}

// WithOverwrite lets the save replace an existing document's data in place,
// keeping its identifier and name.
func WithOverwrite() SaveOption {
	return func(cfg *saveConfig) { cfg.overwrite = true }
}

// AsAnonymous saves the document without a caller-facing name; the store
// name is generated from the content so unchanged payloads keep their
// identifier.
func AsAnonymous() SaveOption {
	return func(cfg *saveConfig) {
		cfg.anonymous = true
		cfg.anonymousSet = true
	}
}

// Save persists the block as a document. Secrets are submitted in clear and
// redacted by the store on reads. Nested blocks become reference markers:
// already persisted children are referenced as-is, unsaved children are
// saved anonymously first.
func (c *Client) Save(ctx context.Context, b Block, options ...SaveOption) (*domain.BlockDocument, error) {
	cfg := saveConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	base := b.blockBase()

	anonymous := base.IsAnonymous
	if cfg.anonymousSet {
		anonymous = cfg.anonymous
	}
	name := cfg.name
	if name == "" {
		name = base.DocumentName()
	}
	if anonymous {
		if cfg.name != "" {
			return nil, ErrAnonymousWithName
		}
		name = ""
	} else if name == "" {
		return nil, ErrNoName
	}

	if err := c.ensureRegistered(ctx, b); err != nil {
		return nil, err
	}
	typeID := *base.blockTypeID
	schemaID := *base.blockSchemaID

	data, err := c.documentData(ctx, b)
	if err != nil {
		return nil, err
	}
	if anonymous {
		name, err = anonymousName(typeID, schemaID, data)
		if err != nil {
			return nil, err
		}
	}

	existing, err := c.documents.GetByName(ctx, typeID, name, store.ReadOptions{IncludeSecrets: true})
	switch {
	case err == nil:
		return c.saveOntoExisting(ctx, base, existing, data, anonymous, cfg.overwrite)

	case errors.Is(err, store.ErrNotFound):
		record := &domain.BlockDocument{
			Name:          name,
			BlockTypeID:   typeID,
			BlockSchemaID: schemaID,
			Data:          data,
			IsAnonymous:   anonymous,
		}
		record.EnsureID()
		if err := c.documents.Create(ctx, record); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				winner, gerr := c.documents.GetByName(ctx, typeID, name, store.ReadOptions{IncludeSecrets: true})
				if gerr != nil {
					return nil, err
				}
				return c.saveOntoExisting(ctx, base, winner, data, anonymous, cfg.overwrite)
			}
			return nil, err
		}
		base.attach(record.ID, record.Name, anonymous)
		c.log.Debug("block document saved",
			logger.Field{Key: "document_id", Value: record.ID.String()},
			logger.Field{Key: "document_name", Value: record.Name},
		)
		return record, nil

	default:
		return nil, err
	}
}

// saveOntoExisting settles a save that found a document already holding the
// name. Anonymous saves converge on the existing document, since identical
// content produced the identical name. Named saves require overwrite.
func (c *Client) saveOntoExisting(ctx context.Context, base *Base, existing *domain.BlockDocument, data domain.JSONMap, anonymous, overwrite bool) (*domain.BlockDocument, error) {
	if anonymous {
		base.attach(existing.ID, existing.Name, true)
		return existing, nil
	}
	if !overwrite {
		return nil, ErrNameConflict
	}
	if err := c.documents.UpdateData(ctx, existing.ID, data); err != nil {
		return nil, err
	}
	existing.Data = data
	base.attach(existing.ID, existing.Name, existing.IsAnonymous)
	c.log.Debug("block document overwritten",
		logger.Field{Key: "document_id", Value: existing.ID.String()},
		logger.Field{Key: "document_name", Value: existing.Name},
	)
	return existing, nil
}

func (c *Client) ensureRegistered(ctx context.Context, b Block) error {
	base := b.blockBase()
	if base.blockTypeID != nil && base.blockSchemaID != nil {
		return nil
	}
	_, _, err := c.Register(ctx, b)
	return err
}

// documentData renders the block for persistence: secrets revealed, nested
// blocks turned into reference markers, everything else JSON normalized.
func (c *Client) documentData(ctx context.Context, b Block) (domain.JSONMap, error) {
	t, err := structTypeOf(b)
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(b).Elem()
	out := domain.JSONMap{}
	for _, field := range declaredFields(t) {
		fv := v.Field(field.index)
		switch {
		case isSecretType(field.typ):
			value, ok := secretValue(fv, true)
			if !ok {
				continue
			}
			out[field.key] = value

		case isBlockFieldType(field.typ):
			child, ok := blockFromField(fv)
			if !ok {
				continue
			}
			marker, err := c.childRef(ctx, child)
			if err != nil {
				return nil, err
			}
			out[field.key] = marker

		case field.typ.Kind() == reflect.Interface:
			if fv.IsNil() {
				continue
			}
			if child, ok := fv.Interface().(Block); ok {
				marker, err := c.childRef(ctx, child)
				if err != nil {
					return nil, err
				}
				out[field.key] = marker
				continue
			}
			normalized, err := normalizeValue(fv.Interface())
			if err != nil {
				return nil, fmt.Errorf("blocks: field %s: %w", field.key, err)
			}
			out[field.key] = normalized

		default:
			normalized, err := normalizeValue(fv.Interface())
			if err != nil {
				return nil, fmt.Errorf("blocks: field %s: %w", field.key, err)
			}
			out[field.key] = normalized
		}
	}
	return out, nil
}

// childRef returns the reference marker for a nested block, saving the child
// anonymously first when it has never been persisted.
func (c *Client) childRef(ctx context.Context, child Block) (map[string]any, error) {
	if child.blockBase().BlockDocumentID == nil {
		if _, err := c.Save(ctx, child, AsAnonymous()); err != nil {
			return nil, fmt.Errorf("blocks: save nested block: %w", err)
		}
	}
	return domain.NewRef(*child.blockBase().BlockDocumentID), nil
}

// anonymousName derives the stable content address used as an anonymous
// document's store name. Identical payloads under the same type and schema
// always produce the same name, so concurrent first saves converge.
func anonymousName(typeID, schemaID uuid.UUID, data domain.JSONMap) (string, error) {
	canonical, err := json.Marshal(map[string]any{
		"block_type_id":   typeID.String(),
		"block_schema_id": schemaID.String(),
		"data":            map[string]any(data),
	})
	if err != nil {
		return "", fmt.Errorf("blocks: canonicalize anonymous payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return "anonymous:" + hex.EncodeToString(sum[:]), nil
}

// Load fetches the named document for the block's type and hydrates b from
// it: references resolved, schema defaults overlaid, secrets held revealed
// on the instance, bookkeeping attached.
func (c *Client) Load(ctx context.Context, b Block, name string) error {
	typeName := TypeNameFor(b)
	typeRec, err := c.types.GetByName(ctx, typeName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError(typeName, name)
		}
		return err
	}
	doc, err := c.documents.GetByName(ctx, typeRec.ID, name, store.ReadOptions{IncludeSecrets: true})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError(typeName, name)
		}
		return err
	}
	return c.hydrate(ctx, b, doc)
}

// LoadByID hydrates b from a document fetched by identifier, the way
// anonymous documents are usually reached.
func (c *Client) LoadByID(ctx context.Context, b Block, id uuid.UUID) error {
	doc, err := c.documents.GetByID(ctx, id, store.ReadOptions{IncludeSecrets: true})
	if err != nil {
		return fmt.Errorf("blocks: load document %s: %w", id, err)
	}
	return c.hydrate(ctx, b, doc)
}

func (c *Client) hydrate(ctx context.Context, b Block, doc *domain.BlockDocument) error {
	t, err := structTypeOf(b)
	if err != nil {
		return err
	}
	data, refs, err := c.resolveData(ctx, doc.Data)
	if err != nil {
		return err
	}
	schemaRec, err := c.schemas.GetByID(ctx, doc.BlockSchemaID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if schemaRec != nil {
		data, err = applyDefaults(schemaRec, data)
		if err != nil {
			return err
		}
	}
	if err := decodeInto(decodableCopy(t, data), b); err != nil {
		return err
	}
	if err := c.hydrateUnions(ctx, b, data, "", refs); err != nil {
		return err
	}
	base := b.blockBase()
	base.attach(doc.ID, doc.Name, doc.IsAnonymous)
	base.attachType(doc.BlockTypeID, doc.BlockSchemaID)
	if v, ok := b.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("blocks: validate %s %q: %w", TypeNameFor(b), doc.Name, err)
		}
	}
	return nil
}

// Load fetches the named document into a fresh instance of B.
func Load[B Block](ctx context.Context, c *Client, name string) (B, error) {
	var zero B
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return zero, fmt.Errorf("%w: Load requires a struct pointer type", ErrBaseType)
	}
	instance := reflect.New(t.Elem()).Interface().(B)
	if err := c.Load(ctx, instance, name); err != nil {
		return zero, err
	}
	return instance, nil
}

// Delete soft deletes the named document for the block's type, freeing the
// name for reuse.
func (c *Client) Delete(ctx context.Context, b Block, name string) error {
	typeName := TypeNameFor(b)
	typeRec, err := c.types.GetByName(ctx, typeName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError(typeName, name)
		}
		return err
	}
	doc, err := c.documents.GetByName(ctx, typeRec.ID, name, store.ReadOptions{})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError(typeName, name)
		}
		return err
	}
	if err := c.documents.SoftDelete(ctx, doc.ID); err != nil {
		return err
	}
	c.log.Debug("block document deleted",
		logger.Field{Key: "document_id", Value: doc.ID.String()},
		logger.Field{Key: "document_name", Value: doc.Name},
	)
	return nil
}
