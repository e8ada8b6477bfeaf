package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary JSON object fields.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// Clone returns a deep copy produced through a JSON round trip, so nested
// values are detached from the source map.
func (m JSONMap) Clone() (JSONMap, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("JSONMap: clone: %w", err)
	}
	var out JSONMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("JSONMap: clone: %w", err)
	}
	return out, nil
}

// StringList stores []string as JSON.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(value any) error {
	if s == nil {
		return errors.New("StringList: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("StringList: unsupported type %T", value)
	}
}

// BlockType describes a class of configuration object: its unique name plus
// the human-facing metadata shown in catalogs and docs. Created the first
// time a type registers; re-registration refreshes the metadata in place.
type BlockType struct {
	bun.BaseModel `bun:"table:block_types"`
	RecordMeta

	Name             string     `bun:",nullzero,notnull" json:"name"`
	Description      string     `bun:",nullzero" json:"description,omitempty"`
	CodeExample      string     `bun:",nullzero" json:"code_example,omitempty"`
	LogoURL          string     `bun:",nullzero" json:"logo_url,omitempty"`
	DocumentationURL string     `bun:",nullzero" json:"documentation_url,omitempty"`
	Capabilities     StringList `bun:"type:jsonb,nullzero" json:"capabilities,omitempty"`
}

// BlockSchema is the checksummed structural description of a block type.
// Records are keyed by checksum and immutable once created; two type names
// may share a schema when their checksums coincide.
type BlockSchema struct {
	bun.BaseModel `bun:"table:block_schemas"`
	RecordMeta

	Checksum string  `bun:",nullzero,notnull" json:"checksum"`
	Fields   JSONMap `bun:"type:jsonb,nullzero" json:"fields"`
}

// BlockDocument is the persisted instance of a block: a named-or-anonymous
// payload bound to a type and a schema. Data holds field values in clear;
// stores redact secret paths on read unless secrets are requested.
type BlockDocument struct {
	bun.BaseModel `bun:"table:block_documents"`
	RecordMeta

	Name          string    `bun:",nullzero,notnull" json:"name"`
	BlockTypeID   uuid.UUID `bun:",nullzero,notnull,type:uuid" json:"block_type_id"`
	BlockSchemaID uuid.UUID `bun:",nullzero,notnull,type:uuid" json:"block_schema_id"`
	Data          JSONMap   `bun:"type:jsonb,nullzero" json:"data"`
	IsAnonymous   bool      `bun:",nullzero" json:"is_anonymous"`
}

// Schema document keys shared by the deriver, the stores, and the resolver.
const (
	SchemaKeyTitle       = "title"
	SchemaKeyType        = "type"
	SchemaKeyProperties  = "properties"
	SchemaKeyRequired    = "required"
	SchemaKeyTypeName    = "block_type_name"
	SchemaKeyReferences  = "block_schema_references"
	SchemaKeyChecksumRef = "block_schema_checksum"
	SchemaKeySecrets     = "secret_fields"
	SchemaKeyDefinitions = "definitions"
)

// SecretFieldPaths extracts the ordered secret path list from a schema
// fields document, tolerating both fresh and JSON round-tripped maps.
func (s *BlockSchema) SecretFieldPaths() []string {
	if s == nil || s.Fields == nil {
		return nil
	}
	switch v := s.Fields[SchemaKeySecrets].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
