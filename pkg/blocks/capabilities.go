package blocks

import (
	"reflect"
	"sort"
)

// Capabilities returns the union of capability tags declared by the block's
// own type and by every embedded struct, recursively. The result is sorted
// and free of duplicates; a block with no capability-bearing parts yields an
// empty set.
func Capabilities(b Block) []string {
	seen := map[string]struct{}{}
	collectCapabilities(reflect.TypeOf(b), seen)
	if len(seen) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func collectCapabilities(t reflect.Type, seen map[string]struct{}) {
	t = derefType(t)
	if t.Kind() != reflect.Struct || t == baseType {
		return
	}
	if provider, ok := reflect.New(t).Interface().(CapabilityProvider); ok {
		for _, tag := range provider.BlockCapabilities() {
			seen[tag] = struct{}{}
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		collectCapabilities(f.Type, seen)
	}
}
