package blocks

import (
	"reflect"
	"strings"

	"github.com/goliatone/go-blockstore/internal/docparse"
	"github.com/goliatone/go-blockstore/pkg/domain"
)

// TypeNameFor resolves the descriptor name for a block: the TypeNamer
// override when one is implemented and non-empty, else the Go type name.
func TypeNameFor(b Block) string {
	if namer, ok := b.(TypeNamer); ok {
		if name := strings.TrimSpace(namer.BlockTypeName()); name != "" {
			return name
		}
	}
	return goTypeName(b)
}

func goTypeName(b Block) string {
	return derefType(reflect.TypeOf(b)).Name()
}

// DescriptorFor builds the catalog record for a block type. Doc text from
// DocProvider fills description and code example; the explicit provider
// interfaces win over parsed text. Explicit code examples are dedented,
// explicit descriptions are used untouched.
func DescriptorFor(b Block) *domain.BlockType {
	record := &domain.BlockType{
		Name:         TypeNameFor(b),
		Capabilities: domain.StringList(Capabilities(b)),
	}
	if provider, ok := b.(DocProvider); ok {
		doc := docparse.Parse(provider.BlockDoc())
		record.Description = doc.Description
		record.CodeExample = doc.Example
	}
	if provider, ok := b.(DescriptionProvider); ok {
		record.Description = provider.BlockDescription()
	}
	if provider, ok := b.(CodeExampleProvider); ok {
		record.CodeExample = docparse.Dedent(provider.BlockCodeExample())
	}
	if provider, ok := b.(LogoURLProvider); ok {
		record.LogoURL = provider.BlockLogoURL()
	}
	if provider, ok := b.(DocURLProvider); ok {
		record.DocumentationURL = provider.BlockDocumentationURL()
	}
	return record
}
