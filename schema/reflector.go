package schema

import (
	"reflect"
	"strings"
)

// PropertyGetter is implemented by objects exposing properties by name.
type PropertyGetter interface {
	GetProperty(name string) any
}

// PropertySetter is implemented by objects accepting property writes by name.
type PropertySetter interface {
	SetProperty(name string, value any)
}

// Reflector evaluates property names and dotted property paths against
// objects. Every lookup is soft: a missing property or a nil hop yields nil.
type Reflector struct{}

// NewReflector returns a Reflector.
func NewReflector() *Reflector {
	return &Reflector{}
}

// ParsePath splits a dotted path into its components.
func (r *Reflector) ParsePath(path string) []string {
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetProperties returns the exported fields of a struct type, including
// promoted ones.
func (r *Reflector) GetProperties(t reflect.Type) []*FieldMeta {
	meta, err := Introspect(t)
	if err != nil {
		return nil
	}
	return meta.Fields
}

// GetPropertyValue reads a property from an object by name.
func (r *Reflector) GetPropertyValue(target any, name string) any {
	if isNil(target) {
		return nil
	}
	if g, ok := target.(PropertyGetter); ok {
		return g.GetProperty(name)
	}
	if m, ok := target.(map[string]any); ok {
		return m[name]
	}
	v, ok := r.FieldValue(target, name)
	if !ok {
		return nil
	}
	return v
}

// SetPropertyValue writes a property by name and reports whether a target
// property was found.
func (r *Reflector) SetPropertyValue(target any, name string, value any) bool {
	if isNil(target) {
		return false
	}
	if s, ok := target.(PropertySetter); ok {
		s.SetProperty(name, value)
		return true
	}
	if m, ok := target.(map[string]any); ok {
		m[name] = value
		return true
	}
	return r.SetFieldValue(target, name, value) == nil
}

// GetPathValue resolves a dotted path hop by hop.
func (r *Reflector) GetPathValue(target any, path string) any {
	current := target
	for _, part := range r.ParsePath(path) {
		if isNil(current) {
			return nil
		}
		current = r.GetPropertyValue(current, part)
	}
	return current
}

// SetPathValue resolves every component but the last and writes value to
// the final property.
func (r *Reflector) SetPathValue(target any, path string, value any) bool {
	parts := r.ParsePath(path)
	if len(parts) == 0 {
		return false
	}

	current := target
	for _, part := range parts[:len(parts)-1] {
		current = r.GetPropertyValue(current, part)
		if isNil(current) {
			return false
		}
	}
	return r.SetPropertyValue(current, parts[len(parts)-1], value)
}

// FieldValue reads an exported struct field directly, bypassing any
// GetProperty method.
func (r *Reflector) FieldValue(target any, name string) (any, bool) {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	meta, err := Introspect(v.Type())
	if err != nil {
		return nil, false
	}
	f, ok := meta.FieldMap[name]
	if !ok {
		return nil, false
	}
	return v.FieldByIndex(f.Index).Interface(), true
}

// SetFieldValue writes an exported struct field directly, converting value
// to the field type. target must be a pointer to a struct.
func (r *Reflector) SetFieldValue(target any, name string, value any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotStruct
	}

	meta, err := Introspect(v.Type())
	if err != nil {
		return err
	}
	f, ok := meta.FieldMap[name]
	if !ok {
		return ErrUnknownProperty
	}

	converted, err := ConvertValue(value, f.Type)
	if err != nil {
		return err
	}
	field := v.Elem().FieldByIndex(f.Index)
	if converted == nil {
		field.Set(reflect.Zero(f.Type))
		return nil
	}
	field.Set(reflect.ValueOf(converted))
	return nil
}

// HasField reports whether the struct behind target has an exported field
// called name.
func (r *Reflector) HasField(target any, name string) bool {
	t := structType(reflect.TypeOf(target))
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	meta, err := Introspect(t)
	if err != nil {
		return false
	}
	_, ok := meta.FieldMap[name]
	return ok
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
