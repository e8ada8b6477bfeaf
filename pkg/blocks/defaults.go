package blocks

import (
	"fmt"

	opts "github.com/goliatone/go-options"

	"github.com/goliatone/go-blockstore/pkg/domain"
)

// applyDefaults overlays schema defaults under the document payload. The two
// maps merge as scope layers with the document on top, so a stored value
// always wins and absent keys resolve from the defaults layer.
func applyDefaults(schema *domain.BlockSchema, data map[string]any) (map[string]any, error) {
	defaults := schemaDefaults(schema)
	if len(defaults) == 0 {
		return data, nil
	}

	layers := []opts.Layer[map[string]any]{
		opts.NewLayer(
			opts.NewScope("defaults", opts.ScopePrioritySystem-1000, opts.WithScopeLabel("Schema Defaults")),
			defaults,
			opts.WithSnapshotID[map[string]any]("schema-defaults"),
		),
		opts.NewLayer(
			opts.NewScope("document", opts.ScopePrioritySystem, opts.WithScopeLabel("Stored Document")),
			data,
			opts.WithSnapshotID[map[string]any]("document"),
		),
	}
	stack, err := opts.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("blocks: layer defaults: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return nil, fmt.Errorf("blocks: merge defaults: %w", err)
	}

	out := make(map[string]any, len(data)+len(defaults))
	for key, value := range data {
		out[key] = value
	}
	for key := range defaults {
		value, _, err := merged.ResolveWithTrace(key)
		if err != nil {
			continue
		}
		out[key] = value
	}
	return out, nil
}

func schemaDefaults(schema *domain.BlockSchema) map[string]any {
	if schema == nil || schema.Fields == nil {
		return nil
	}
	props, ok := domain.AsMap(schema.Fields[domain.SchemaKeyProperties])
	if !ok {
		return nil
	}
	defaults := map[string]any{}
	for key, raw := range props {
		prop, ok := domain.AsMap(raw)
		if !ok {
			continue
		}
		if value, ok := prop["default"]; ok {
			defaults[key] = value
		}
	}
	return defaults
}
