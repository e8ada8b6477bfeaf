package blocks

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
)

var (
	// ErrNoName rejects a non-anonymous save with no name in reach.
	ErrNoName = errors.New("blocks: no name provided, either as an argument or on the block")

	// ErrAnonymousWithName rejects the contradiction of an anonymous save
	// carrying an explicit name.
	ErrAnonymousWithName = errors.New("blocks: anonymous block document must not carry a name")

	// ErrNameConflict rejects a save onto an existing name without overwrite.
	ErrNameConflict = errors.New("blocks: you are attempting to save values with a name that is already in use for this block type; specify a different name or overwrite")

	// ErrBaseType rejects registration of Base itself or of a non struct.
	ErrBaseType = errors.New("blocks: register requires a concrete block type, Base itself is not registrable")

	// ErrUnregisteredType is the fail-closed registry lookup result.
	ErrUnregisteredType = errors.New("blocks: block type is not registered")

	// ErrCircularReference reports a document reference cycle.
	ErrCircularReference = errors.New("blocks: circular block document reference")

	// ErrRecursiveType rejects schema derivation over a type that nests
	// itself; recursive block types have no stable checksum.
	ErrRecursiveType = errors.New("blocks: recursive block type")
)

func notFoundError(typeName, name string) error {
	return fmt.Errorf("blocks: unable to find block document named %q for block type %q: %w", name, typeName, store.ErrNotFound)
}
