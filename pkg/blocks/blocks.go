package blocks

import (
	"github.com/google/uuid"
)

// Block is implemented by struct pointers that embed Base. The embedded Base
// carries document bookkeeping; the struct's remaining exported fields are
// the block's declared fields and drive schema derivation and serialization.
type Block interface {
	blockBase() *Base
}

// Base holds the bookkeeping that ties a block instance to its persisted
// document. Embed it in a block struct; it never contributes to the schema
// or the payload properties. The JSON tags match the keys the resolver
// injects into nested payloads so decoding populates nested bookkeeping.
type Base struct {
	BlockDocumentID   *uuid.UUID `json:"_block_document_id,omitempty"`
	BlockDocumentName *string    `json:"_block_document_name,omitempty"`
	IsAnonymous       bool       `json:"_is_anonymous,omitempty"`

	blockTypeID   *uuid.UUID
	blockSchemaID *uuid.UUID
}

func (b *Base) blockBase() *Base { return b }

// Saved reports whether the block has a persisted document behind it.
func (b *Base) Saved() bool {
	return b.BlockDocumentID != nil
}

// DocumentName returns the persisted document name, or "" when unsaved.
func (b *Base) DocumentName() string {
	if b.BlockDocumentName == nil {
		return ""
	}
	return *b.BlockDocumentName
}

func (b *Base) attach(docID uuid.UUID, name string, anonymous bool) {
	id := docID
	b.BlockDocumentID = &id
	n := name
	b.BlockDocumentName = &n
	b.IsAnonymous = anonymous
}

func (b *Base) attachType(typeID, schemaID uuid.UUID) {
	t := typeID
	s := schemaID
	b.blockTypeID = &t
	b.blockSchemaID = &s
}

// TypeNamer overrides the descriptor name derived from the Go type name.
type TypeNamer interface {
	BlockTypeName() string
}

// CapabilityProvider declares capability tags for a block type. Tags from
// embedded structs are unioned in as well, see Capabilities.
type CapabilityProvider interface {
	BlockCapabilities() []string
}

// DescriptionProvider sets the descriptor description explicitly, winning
// over the one parsed from BlockDoc text.
type DescriptionProvider interface {
	BlockDescription() string
}

// CodeExampleProvider sets the descriptor code example explicitly, winning
// over the one parsed from BlockDoc text. The value is dedented.
type CodeExampleProvider interface {
	BlockCodeExample() string
}

// LogoURLProvider sets the descriptor logo URL.
type LogoURLProvider interface {
	BlockLogoURL() string
}

// DocURLProvider sets the descriptor documentation URL.
type DocURLProvider interface {
	BlockDocumentationURL() string
}

// DocProvider supplies free doc text for the type. The first paragraph
// becomes the description and the body of an "Example:" or "Examples:"
// section becomes the code example.
type DocProvider interface {
	BlockDoc() string
}

// Validator lets a block verify its decoded state after a load.
type Validator interface {
	Validate() error
}
