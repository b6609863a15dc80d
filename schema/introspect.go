package schema

import (
	"fmt"
	"reflect"
	"sync"
)

var metaCache sync.Map // map[reflect.Type]*TypeMeta

var propertyFieldType = reflect.TypeOf((*PropertyField)(nil)).Elem()

// TypeMeta is the reflected shape of a struct: its embedded parent and its
// exported fields, including promoted ones.
type TypeMeta struct {
	Type   reflect.Type
	Name   string
	Parent reflect.Type

	Fields   []*FieldMeta
	FieldMap map[string]*FieldMeta
}

// FieldMeta describes one exported field.
type FieldMeta struct {
	Name  string
	Type  reflect.Type
	Index []int
	// Path is the dotted source path from a `path` tag.
	Path string
	// Property is set when the field is a Contract property descriptor.
	Property PropertyField
}

// Value reads the field from a pointer to the owning struct.
func (f *FieldMeta) Value(structPtr reflect.Value) reflect.Value {
	return structPtr.Elem().FieldByIndex(f.Index)
}

// Introspect retrieves or builds metadata for a struct type.
func Introspect(t reflect.Type) (*TypeMeta, error) {
	if t == nil {
		return nil, ErrNotStruct
	}
	t = structType(t)
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t.Kind())
	}

	if meta, ok := metaCache.Load(t); ok {
		return meta.(*TypeMeta), nil
	}

	meta := buildMeta(t)
	actual, _ := metaCache.LoadOrStore(t, meta)
	return actual.(*TypeMeta), nil
}

func buildMeta(t reflect.Type) *TypeMeta {
	meta := &TypeMeta{
		Type:     t,
		Name:     FullName(t),
		FieldMap: make(map[string]*FieldMeta),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			meta.Parent = f.Type
			break
		}
	}

	for _, f := range reflect.VisibleFields(t) {
		// Skip unexported fields and the embedded structs themselves
		if !f.IsExported() || f.Anonymous {
			continue
		}

		fm := &FieldMeta{
			Name:  f.Name,
			Type:  f.Type,
			Index: f.Index,
			Path:  f.Tag.Get("path"),
		}
		if f.Type.Implements(propertyFieldType) {
			fm.Property, _ = reflect.Zero(f.Type).Interface().(PropertyField)
		}

		meta.Fields = append(meta.Fields, fm)
		meta.FieldMap[f.Name] = fm
	}

	return meta
}

// Embeds reports whether t is root or embeds root through its chain of
// first embedded structs.
func Embeds(t, root reflect.Type) bool {
	if t == nil || root == nil {
		return false
	}
	t = structType(t)
	root = structType(root)

	for t != nil {
		if t == root {
			return true
		}
		meta, err := Introspect(t)
		if err != nil {
			return false
		}
		t = meta.Parent
	}
	return false
}

// ParentOf returns the first embedded struct of t, or nil.
func ParentOf(t reflect.Type) reflect.Type {
	meta, err := Introspect(t)
	if err != nil {
		return nil
	}
	return meta.Parent
}

// EmbedPath returns the field index path at which target is embedded in t,
// following anonymous struct fields at any depth. An empty path means t is
// target itself.
func EmbedPath(t, target reflect.Type) ([]int, bool) {
	t = structType(t)
	target = structType(target)
	if t == target {
		return []int{}, true
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}
		if rest, ok := EmbedPath(f.Type, target); ok {
			return append([]int{i}, rest...), true
		}
	}
	return nil, false
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
