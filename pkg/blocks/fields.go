package blocks

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockstore/pkg/secrets"
)

var (
	blockIfaceType  = reflect.TypeOf((*Block)(nil)).Elem()
	baseType        = reflect.TypeOf(Base{})
	secretTextType  = reflect.TypeOf(secrets.Text{})
	secretBytesType = reflect.TypeOf(secrets.Bytes{})
	timeType        = reflect.TypeOf(time.Time{})
	uuidType        = reflect.TypeOf(uuid.UUID{})
)

// declaredField describes one exported, non-anonymous field of a block
// struct. The embedded Base and capability mixins are bookkeeping and never
// show up here.
type declaredField struct {
	index int
	name  string
	key   string
	typ   reflect.Type
	tag   reflect.StructTag
}

// structTypeOf validates the block shape and returns the underlying struct
// type. Blocks are struct pointers; Base itself is not a block type.
func structTypeOf(b Block) (reflect.Type, error) {
	t := reflect.TypeOf(b)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrBaseType, b)
	}
	elem := t.Elem()
	if elem == baseType {
		return nil, ErrBaseType
	}
	return elem, nil
}

// declaredFields lists the block's fields in declaration order. Fields
// tagged `json:"-"` are invisible to schema and serialization.
func declaredFields(t reflect.Type) []declaredField {
	fields := make([]declaredField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		tagName, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tagName == "-" {
			continue
		}
		key := f.Name
		if tagName != "" {
			key = tagName
		}
		fields = append(fields, declaredField{
			index: i,
			name:  f.Name,
			key:   key,
			typ:   f.Type,
			tag:   f.Tag,
		})
	}
	return fields
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isSecretType(t reflect.Type) bool {
	t = derefType(t)
	return t == secretTextType || t == secretBytesType
}

// isBlockFieldType reports whether a field of this type holds a nested
// block, either by value or behind a pointer.
func isBlockFieldType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct && t.Elem() != baseType && t.Implements(blockIfaceType)
	case reflect.Struct:
		return t != baseType && reflect.PointerTo(t).Implements(blockIfaceType)
	default:
		return false
	}
}

// newBlockOf builds a fresh zero instance of the block struct type.
func newBlockOf(t reflect.Type) Block {
	return reflect.New(derefType(t)).Interface().(Block)
}

// blockFromField extracts the nested block behind a struct field value,
// reporting false for nil pointers.
func blockFromField(v reflect.Value) (Block, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		return v.Interface().(Block), true
	}
	return v.Addr().Interface().(Block), true
}
