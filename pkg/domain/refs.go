package domain

import "github.com/google/uuid"

// Keys that make up a reference marker inside a block document payload.
// A field whose value is {"$ref": {"block_document_id": "<uuid>"}} points
// at another stored block document instead of carrying the data inline.
const (
	RefKey   = "$ref"
	RefIDKey = "block_document_id"
)

// NewRef builds the payload marker that points a field at another block document.
func NewRef(id uuid.UUID) map[string]any {
	return map[string]any{
		RefKey: map[string]any{RefIDKey: id.String()},
	}
}

// AsMap normalizes the map shapes that show up in decoded payloads.
func AsMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case JSONMap:
		return m, true
	default:
		return nil, false
	}
}

// IsRef reports whether the value carries a reference marker. It only checks
// for the marker key, so a marker with a malformed id still reports true.
func IsRef(value any) bool {
	m, ok := AsMap(value)
	if !ok {
		return false
	}
	_, ok = m[RefKey]
	return ok
}

// RefID extracts the referenced document id from a marker value. The second
// return is false when the value is not a well formed reference marker.
func RefID(value any) (uuid.UUID, bool) {
	m, ok := AsMap(value)
	if !ok {
		return uuid.Nil, false
	}
	inner, ok := AsMap(m[RefKey])
	if !ok {
		return uuid.Nil, false
	}
	switch raw := inner[RefIDKey].(type) {
	case string:
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	case uuid.UUID:
		return raw, true
	default:
		return uuid.Nil, false
	}
}
