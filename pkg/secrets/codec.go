package secrets

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blockstore/pkg/domain"
)

// Obscure returns a copy of data with the value at every dot delimited path
// replaced by Placeholder. Paths that are absent from the payload are
// skipped, as are paths that run into a reference marker, since the
// referenced document redacts its own secrets. A path whose intermediate
// segment resolves to a non object value is reported as an error.
func Obscure(data map[string]any, paths []string) (map[string]any, error) {
	out, _ := copyTree(data).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	for _, path := range paths {
		if err := obscurePath(out, path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func obscurePath(data map[string]any, path string) error {
	segments := strings.Split(path, ".")
	cur := data
	for i, segment := range segments {
		value, ok := cur[segment]
		if !ok {
			return nil
		}
		if i == len(segments)-1 {
			if domain.IsRef(value) {
				return nil
			}
			cur[segment] = Placeholder
			return nil
		}
		if domain.IsRef(value) {
			return nil
		}
		next, ok := domain.AsMap(value)
		if !ok {
			return fmt.Errorf("%w: segment %q of %q is not an object", ErrUnredactablePath, segment, path)
		}
		cur[segment] = next
		cur = next
	}
	return nil
}

// copyTree deep copies the map and slice spine of a decoded payload. Leaf
// values are shared, they are replaced wholesale and never mutated.
func copyTree(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = copyTree(item)
		}
		return out
	case domain.JSONMap:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = copyTree(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyTree(item)
		}
		return out
	default:
		return value
	}
}
