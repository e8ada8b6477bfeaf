// Package redact applies schema-driven secret masking to block documents
// on their way out of storage.
package redact

import (
	"context"
	"fmt"

	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
)

// Document returns a copy of doc with every secret path in its schema
// replaced by the redaction placeholder. The lookup fails closed: when the
// schema cannot be loaded the document is withheld rather than returned
// with live secrets.
func Document(ctx context.Context, schemas store.BlockSchemaRepository, doc *domain.BlockDocument) (*domain.BlockDocument, error) {
	if doc == nil {
		return nil, nil
	}

	out := *doc
	if len(doc.Data) == 0 {
		if doc.Data != nil {
			out.Data = domain.JSONMap{}
		}
		return &out, nil
	}

	schema, err := schemas.GetByID(ctx, doc.BlockSchemaID)
	if err != nil {
		return nil, fmt.Errorf("redact document %s: load schema %s: %w", doc.ID, doc.BlockSchemaID, err)
	}

	paths := schema.SecretFieldPaths()
	if len(paths) == 0 {
		cloned, err := doc.Data.Clone()
		if err != nil {
			return nil, fmt.Errorf("redact document %s: %w", doc.ID, err)
		}
		out.Data = cloned
		return &out, nil
	}

	masked, err := secrets.Obscure(doc.Data, paths)
	if err != nil {
		return nil, fmt.Errorf("redact document %s: %w", doc.ID, err)
	}
	out.Data = domain.JSONMap(masked)
	return &out, nil
}
