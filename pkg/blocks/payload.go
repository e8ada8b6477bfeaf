package blocks

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/secrets"
)

// ToPayload renders the block's declared fields into a payload map. Secret
// values come back as the placeholder unless includeSecrets is set; nested
// blocks render inline as embedded objects. Bookkeeping never enters the
// payload.
func ToPayload(b Block, includeSecrets bool) (map[string]any, error) {
	t, err := structTypeOf(b)
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(b).Elem()
	out := map[string]any{}
	for _, field := range declaredFields(t) {
		fv := v.Field(field.index)
		switch {
		case isSecretType(field.typ):
			value, ok := secretValue(fv, includeSecrets)
			if !ok {
				continue
			}
			out[field.key] = value

		case isBlockFieldType(field.typ):
			nested, ok := blockFromField(fv)
			if !ok {
				continue
			}
			nestedPayload, err := ToPayload(nested, includeSecrets)
			if err != nil {
				return nil, err
			}
			out[field.key] = nestedPayload

		case field.typ.Kind() == reflect.Interface:
			if fv.IsNil() {
				continue
			}
			if nested, ok := fv.Interface().(Block); ok {
				nestedPayload, err := ToPayload(nested, includeSecrets)
				if err != nil {
					return nil, err
				}
				out[field.key] = nestedPayload
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

// secretValue extracts a secret field's rendered form, reporting false for
// nil pointer secrets.
func secretValue(v reflect.Value, includeSecrets bool) (any, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch s := v.Interface().(type) {
	case secrets.Text:
		if includeSecrets {
			return s.Reveal(), true
		}
		return s.String(), true
	case secrets.Bytes:
		if includeSecrets {
			return string(s.Reveal()), true
		}
		return s.String(), true
	default:
		return nil, false
	}
}

// normalizeValue pushes a Go value through the JSON codec so payload maps
// hold only JSON generic shapes (strings, numbers, bools, maps, slices).
func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeInto hydrates the block from a payload using JSON codec rules. The
// injected bookkeeping keys land in the embedded Base via its tags.
func decodeInto(data map[string]any, dst Block) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("blocks: encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("blocks: decode payload into %s: %w", goTypeName(dst), err)
	}
	return nil
}

// decodableCopy strips keys the JSON decoder cannot place: values for
// non-empty interface fields, which are rebuilt afterwards from the registry.
// Concrete nested block payloads are stripped recursively.
func decodableCopy(t reflect.Type, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	for _, field := range declaredFields(t) {
		switch {
		case field.typ.Kind() == reflect.Interface && field.typ.NumMethod() > 0:
			delete(out, field.key)
		case isBlockFieldType(field.typ):
			if m, ok := domain.AsMap(out[field.key]); ok {
				out[field.key] = decodableCopy(derefType(field.typ), m)
			}
		}
	}
	return out
}
