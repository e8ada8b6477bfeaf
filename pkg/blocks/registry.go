package blocks

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Constructor builds a fresh zero instance of a block type.
type Constructor func() Block

// Registry maps block type names to constructors so documents can be turned
// back into typed values without the caller naming the concrete type.
// Lookups fail closed: an unknown name is an error, never a guess.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Constructor
}

// Default is the package-level registry the client falls back to.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{types: map[string]Constructor{}}
}

// Register adds a constructor under the block's type name. Registering the
// same type again replaces the entry, which keeps registration idempotent.
func (r *Registry) Register(ctor Constructor) {
	name := TypeNameFor(ctor())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = ctor
}

// Lookup returns the constructor for a type name or ErrUnregisteredType.
func (r *Registry) Lookup(name string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredType, name)
	}
	return ctor, nil
}

// New builds a fresh instance of the named type.
func (r *Registry) New(name string) (Block, error) {
	ctor, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

// Names lists registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns constructors for every registered type assignable to the
// given interface type, in name order. Union fields use this to enumerate
// their member types.
func (r *Registry) Members(iface reflect.Type) []Constructor {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Constructor
	for _, name := range names {
		ctor := r.types[name]
		if reflect.TypeOf(ctor()).Implements(iface) {
			out = append(out, ctor)
		}
	}
	return out
}
