package blocks

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
)

// Bookkeeping keys injected into resolved nested payloads so decoding
// populates the nested block's Base.
const (
	bookkeepingID        = "_block_document_id"
	bookkeepingName      = "_block_document_name"
	bookkeepingAnonymous = "_is_anonymous"
)

// resolvedRef records which document a resolved nested payload came from so
// interface fields can be rebuilt through the registry.
type resolvedRef struct {
	DocumentID uuid.UUID
	TypeID     uuid.UUID
}

// resolveData expands every reference marker in a document payload into the
// referenced document's payload, recursively, fetching referenced documents
// with their secrets. Embedded literal objects pass through untouched apart
// from their own nested markers. A document revisited while still on the
// resolution path is a cycle; the same document reachable through two
// independent branches is not.
func (c *Client) resolveData(ctx context.Context, data domain.JSONMap) (map[string]any, map[string]resolvedRef, error) {
	refs := map[string]resolvedRef{}
	visiting := map[uuid.UUID]bool{}
	resolved, err := c.resolveValue(ctx, map[string]any(data), "", visiting, refs)
	if err != nil {
		return nil, nil, err
	}
	out, ok := resolved.(map[string]any)
	if !ok {
		out = map[string]any{}
	}
	return out, refs, nil
}

func (c *Client) resolveValue(ctx context.Context, value any, path string, visiting map[uuid.UUID]bool, refs map[string]resolvedRef) (any, error) {
	if domain.IsRef(value) {
		id, ok := domain.RefID(value)
		if !ok {
			return nil, fmt.Errorf("blocks: malformed reference marker at %q", pathLabel(path))
		}
		return c.resolveReference(ctx, id, path, visiting, refs)
	}
	if m, ok := domain.AsMap(value); ok {
		out := make(map[string]any, len(m))
		for key, item := range m {
			resolved, err := c.resolveValue(ctx, item, joinPath(path, key), visiting, refs)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	}
	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			resolved, err := c.resolveValue(ctx, item, joinPath(path, strconv.Itoa(i)), visiting, refs)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return value, nil
}

func (c *Client) resolveReference(ctx context.Context, id uuid.UUID, path string, visiting map[uuid.UUID]bool, refs map[string]resolvedRef) (any, error) {
	if visiting[id] {
		return nil, fmt.Errorf("%w: document %s revisited at %q", ErrCircularReference, id, pathLabel(path))
	}
	visiting[id] = true
	defer delete(visiting, id)

	doc, err := c.documents.GetByID(ctx, id, store.ReadOptions{IncludeSecrets: true})
	if err != nil {
		return nil, fmt.Errorf("blocks: resolve reference %s at %q: %w", id, pathLabel(path), err)
	}
	nested, err := c.resolveValue(ctx, map[string]any(doc.Data), path, visiting, refs)
	if err != nil {
		return nil, err
	}
	payload, ok := nested.(map[string]any)
	if !ok {
		payload = map[string]any{}
	}
	payload[bookkeepingID] = doc.ID.String()
	payload[bookkeepingName] = doc.Name
	payload[bookkeepingAnonymous] = doc.IsAnonymous
	refs[path] = resolvedRef{DocumentID: doc.ID, TypeID: doc.BlockTypeID}
	return payload, nil
}

// hydrateUnions rebuilds non-empty interface fields from resolved payloads.
// The registry entry for the referenced document's type name wins; when the
// lookup fails closed the field is left as decoded. Concrete nested blocks
// only need their own unions walked.
func (c *Client) hydrateUnions(ctx context.Context, b Block, data map[string]any, path string, refs map[string]resolvedRef) error {
	t, err := structTypeOf(b)
	if err != nil {
		return err
	}
	v := reflect.ValueOf(b).Elem()
	for _, field := range declaredFields(t) {
		fieldPath := joinPath(path, field.key)
		raw, ok := data[field.key]
		if !ok {
			continue
		}
		switch {
		case field.typ.Kind() == reflect.Interface && field.typ.NumMethod() > 0:
			ref, ok := refs[fieldPath]
			if !ok {
				continue
			}
			payload, ok := domain.AsMap(raw)
			if !ok {
				continue
			}
			typeRec, err := c.types.GetByID(ctx, ref.TypeID)
			if err != nil {
				return fmt.Errorf("blocks: hydrate %q: %w", fieldPath, err)
			}
			member, err := c.registry.New(typeRec.Name)
			if err != nil {
				continue
			}
			memberType, err := structTypeOf(member)
			if err != nil {
				continue
			}
			if err := decodeInto(decodableCopy(memberType, payload), member); err != nil {
				return err
			}
			if err := c.hydrateUnions(ctx, member, payload, fieldPath, refs); err != nil {
				return err
			}
			if reflect.TypeOf(member).AssignableTo(field.typ) {
				v.Field(field.index).Set(reflect.ValueOf(member))
			}

		case isBlockFieldType(field.typ):
			nested, ok := blockFromField(v.Field(field.index))
			if !ok {
				continue
			}
			payload, ok := domain.AsMap(raw)
			if !ok {
				continue
			}
			if err := c.hydrateUnions(ctx, nested, payload, fieldPath, refs); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathLabel(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
