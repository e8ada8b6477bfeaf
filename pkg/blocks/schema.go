package blocks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goliatone/go-blockstore/pkg/domain"
)

// Schema derives the self-contained fields document for a block type along
// with its checksum. The document carries properties for every declared
// field, required names in declaration order, nested references and their
// flattened definitions, and the ordered secret field paths.
func Schema(b Block) (domain.JSONMap, string, error) {
	builder := &schemaBuilder{visiting: map[reflect.Type]bool{}}
	doc, defs, err := builder.build(b)
	if err != nil {
		return nil, "", err
	}
	if len(defs) > 0 {
		doc[domain.SchemaKeyDefinitions] = defs
	}
	sum, err := Checksum(doc)
	if err != nil {
		return nil, "", err
	}
	return doc, sum, nil
}

type schemaBuilder struct {
	visiting map[reflect.Type]bool
}

// build returns the fields document without its definitions entry plus the
// definitions produced by the subtree. Keeping them separate lets a parent
// flatten every nested definition to its own top level while still hashing
// each nested type exactly as it would hash standalone.
func (sb *schemaBuilder) build(b Block) (domain.JSONMap, map[string]any, error) {
	t, err := structTypeOf(b)
	if err != nil {
		return nil, nil, err
	}
	if sb.visiting[t] {
		return nil, nil, fmt.Errorf("%w: %s nests itself", ErrRecursiveType, t.Name())
	}
	sb.visiting[t] = true
	defer delete(sb.visiting, t)

	properties := map[string]any{}
	required := []string{}
	references := map[string]any{}
	secretPaths := []string{}
	defs := map[string]any{}

	for _, field := range declaredFields(t) {
		defaultRaw, hasDefault := field.tag.Lookup("default")
		var defaultValue any
		if hasDefault {
			parsed, err := parseDefault(defaultRaw, field.typ)
			if err != nil {
				return nil, nil, fmt.Errorf("blocks: field %s.%s: %w", t.Name(), field.name, err)
			}
			defaultValue = parsed
		}

		prop := map[string]any{}
		switch {
		case isSecretType(field.typ):
			prop["title"] = field.name
			prop["type"] = "string"
			prop["format"] = "password"
			prop["writeOnly"] = true
			secretPaths = append(secretPaths, field.key)

		case isBlockFieldType(field.typ):
			nested := newBlockOf(field.typ)
			nestedDoc, nestedDefs, err := sb.build(nested)
			if err != nil {
				return nil, nil, err
			}
			nestedSum, err := checksumWithDefs(nestedDoc, nestedDefs)
			if err != nil {
				return nil, nil, err
			}
			nestedName := goTypeName(nested)
			if err := mergeDefinitions(defs, nestedDefs); err != nil {
				return nil, nil, err
			}
			if err := addDefinition(defs, nestedName, nestedDoc); err != nil {
				return nil, nil, err
			}
			prop["$ref"] = "#/definitions/" + nestedName
			references[field.key] = map[string]any{
				domain.SchemaKeyChecksumRef: nestedSum,
				domain.SchemaKeyTypeName:    TypeNameFor(nested),
			}
			for _, path := range secretPathsOf(nestedDoc) {
				secretPaths = append(secretPaths, field.key+"."+path)
			}

		case field.typ.Kind() == reflect.Interface:
			prop["title"] = field.name
			prop["type"] = "object"

		default:
			prop["title"] = field.name
			for k, v := range scalarSchema(field.typ) {
				prop[k] = v
			}
		}

		if hasDefault {
			prop["default"] = defaultValue
		}
		if desc, ok := field.tag.Lookup("desc"); ok {
			prop["description"] = desc
		}
		properties[field.key] = prop

		if !hasDefault && field.typ.Kind() != reflect.Pointer {
			required = append(required, field.key)
		}
	}

	doc := domain.JSONMap{
		domain.SchemaKeyTitle:      t.Name(),
		domain.SchemaKeyType:       "object",
		domain.SchemaKeyProperties: properties,
		domain.SchemaKeyTypeName:   TypeNameFor(b),
		domain.SchemaKeyReferences: references,
		domain.SchemaKeySecrets:    secretPaths,
	}
	if len(required) > 0 {
		doc[domain.SchemaKeyRequired] = required
	}
	return doc, defs, nil
}

func checksumWithDefs(doc domain.JSONMap, defs map[string]any) (string, error) {
	if len(defs) == 0 {
		return Checksum(doc)
	}
	full := make(domain.JSONMap, len(doc)+1)
	for k, v := range doc {
		full[k] = v
	}
	full[domain.SchemaKeyDefinitions] = defs
	return Checksum(full)
}

func mergeDefinitions(dst, src map[string]any) error {
	for name, def := range src {
		if err := addDefinition(dst, name, def); err != nil {
			return err
		}
	}
	return nil
}

func addDefinition(defs map[string]any, name string, doc any) error {
	if existing, ok := defs[name]; ok {
		if !reflect.DeepEqual(existing, doc) {
			return fmt.Errorf("blocks: definition name %q is used by two different types", name)
		}
		return nil
	}
	defs[name] = doc
	return nil
}

func secretPathsOf(doc domain.JSONMap) []string {
	paths, _ := doc[domain.SchemaKeySecrets].([]string)
	return paths
}

func scalarSchema(t reflect.Type) map[string]any {
	t = derefType(t)
	switch t {
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case uuidType:
		return map[string]any{"type": "string", "format": "uuid"}
	}
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		// byte slices travel as strings through the JSON codec
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string"}
		}
		return map[string]any{"type": "array"}
	default:
		return map[string]any{"type": "object"}
	}
}

func parseDefault(raw string, t reflect.Type) (any, error) {
	t = derefType(t)
	if t == timeType || t == uuidType || isSecretType(t) {
		return raw, nil
	}
	switch t.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q", raw)
		}
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q", raw)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number default %q", raw)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean default %q", raw)
		}
		return v, nil
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON default %q", raw)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported default on %s field", t.Kind())
	}
}

// Checksum computes the content address of a fields document: canonical JSON
// of the document with its documentation entries removed, hashed with
// SHA-256 and rendered as "sha256:<hex>". Documentation-only edits never
// move a checksum; structural edits always do.
func Checksum(doc domain.JSONMap) (string, error) {
	raw, err := json.Marshal(stripDocForHash(doc))
	if err != nil {
		return "", fmt.Errorf("blocks: canonicalize schema: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// stripDocForHash drops the prose and derived entries of a fields document
// at the positions the deriver writes them: secret_fields and description
// at the document level, description inside each property object, and the
// same positions inside every definitions entry. Stripping stays positional
// so a declared field that happens to be keyed "description" is structure,
// not prose, and still moves the checksum.
func stripDocForHash(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		if key == domain.SchemaKeySecrets || key == "description" {
			continue
		}
		out[key] = value
	}
	if props, ok := domain.AsMap(out[domain.SchemaKeyProperties]); ok {
		cleaned := make(map[string]any, len(props))
		for name, raw := range props {
			prop, ok := domain.AsMap(raw)
			if !ok {
				cleaned[name] = raw
				continue
			}
			cp := make(map[string]any, len(prop))
			for key, value := range prop {
				if key == "description" {
					continue
				}
				cp[key] = value
			}
			cleaned[name] = cp
		}
		out[domain.SchemaKeyProperties] = cleaned
	}
	if defs, ok := domain.AsMap(out[domain.SchemaKeyDefinitions]); ok {
		cleaned := make(map[string]any, len(defs))
		for name, raw := range defs {
			def, ok := domain.AsMap(raw)
			if !ok {
				cleaned[name] = raw
				continue
			}
			cleaned[name] = stripDocForHash(def)
		}
		out[domain.SchemaKeyDefinitions] = cleaned
	}
	return out
}
