package core

import (
	"reflect"

	"github.com/Konsultn-Engineering/metaobject/cache"
	"github.com/Konsultn-Engineering/metaobject/schema"
	"github.com/Konsultn-Engineering/metaobject/utils"
)

type objectKind uint8

const (
	unknownKind objectKind = iota
	dynamicSurrogateKind
	typedSurrogateKind
	dataKind
	contractKind
)

// surrogatePath maps a surrogate field to the source path it is copied from.
type surrogatePath struct {
	Field string
	Type  reflect.Type
	Path  string
}

// Converter converts objects between their Data, Contract and Surrogate
// representations. Unsupported conversions yield nil.
type Converter struct {
	engine *Engine
	paths  *cache.CompiledCache[[]surrogatePath]
}

func newConverter(e *Engine, size int) *Converter {
	return &Converter{
		engine: e,
		paths:  cache.NewCompiledCache[[]surrogatePath](size),
	}
}

// ConvertTo converts source to an object of type target. paths lists the
// dotted source paths copied into a dynamic surrogate.
func (c *Converter) ConvertTo(target reflect.Type, source any, paths []string) any {
	if target == nil || isNil(source) {
		return nil
	}

	switch c.targetKind(target) {
	case dynamicSurrogateKind:
		return c.toDynamicSurrogate(source, paths)
	case typedSurrogateKind:
		return c.toTypedSurrogate(target, source)
	case dataKind:
		return c.toData(target, source)
	case contractKind:
		return c.toContract(target, source)
	}
	return nil
}

// ConvertTo converts source to T. Unsupported conversions yield the zero T.
func ConvertTo[T any](e *Engine, source any, paths ...string) T {
	var zero T
	v, ok := e.converter.ConvertTo(reflect.TypeOf((*T)(nil)).Elem(), source, paths).(T)
	if !ok {
		return zero
	}
	return v
}

func (c *Converter) targetKind(t reflect.Type) objectKind {
	loc := c.engine.locator

	switch {
	case t == surrogateInterface || t == surrogateObjectPtrType:
		return dynamicSurrogateKind
	case t.Kind() == reflect.Ptr && loc.IsSurrogateType(t):
		return typedSurrogateKind
	case t == dataInterface || (t.Kind() == reflect.Ptr && loc.IsDataType(t)):
		return dataKind
	case t.Kind() == reflect.Interface && t.Implements(contractInterface):
		return contractKind
	case t.Kind() == reflect.Ptr && loc.IsContractType(t):
		return contractKind
	}
	return unknownKind
}

func (c *Converter) toDynamicSurrogate(source any, paths []string) *SurrogateObject {
	s := c.engine.builder.NewSurrogate()
	s.SetID(idOf(source))

	for _, p := range paths {
		v := c.engine.reflector.GetPathValue(source, p)
		s.SetProperty(p, surrogateValue(v))
	}
	return s
}

func (c *Converter) toTypedSurrogate(t reflect.Type, source any) any {
	v, err := c.engine.builder.Get(t)
	if err != nil {
		c.engine.logger.Warn("building surrogate failed", "type", fullName(t), "error", err)
		return nil
	}
	s := v.(Surrogate)
	s.SetID(idOf(source))

	r := c.engine.reflector
	for _, p := range c.surrogatePaths(t) {
		value := r.GetPathValue(source, p.Path)
		if value == nil {
			continue
		}
		// Objects the field cannot hold are copied in string form.
		if !reflect.TypeOf(value).AssignableTo(p.Type) {
			value = surrogateValue(value)
		}
		if err := r.SetFieldValue(s, p.Field, value); err != nil {
			c.engine.logger.Debug("copying surrogate path failed",
				"type", fullName(t),
				"path", p.Path,
				"error", err,
			)
		}
	}
	return s
}

// surrogatePaths returns the path-tagged fields of a typed surrogate.
func (c *Converter) surrogatePaths(t reflect.Type) []surrogatePath {
	paths, _ := c.paths.GetOrCompile(utils.FingerprintString(fullName(t)), func() ([]surrogatePath, error) {
		meta, err := schema.Introspect(t)
		if err != nil {
			return nil, err
		}
		var out []surrogatePath
		for _, f := range meta.Fields {
			if f.Path != "" {
				out = append(out, surrogatePath{Field: f.Name, Type: f.Type, Path: f.Path})
			}
		}
		return out, nil
	})
	return paths
}

// toData returns the Data object behind a Contract source when it has the
// requested type. Every other source yields a new proxied Data object that
// carries only the source's ID.
func (c *Converter) toData(t reflect.Type, source any) Data {
	if src, ok := source.(Contract); ok {
		if d := src.Data(); d != nil && dataAssignable(d, t) {
			return d
		}
	}

	d, err := c.newProxyData(t, source)
	if err != nil || d == nil {
		if err != nil {
			c.engine.logger.Debug("converting to data failed", "type", fullName(t), "error", err)
		}
		return nil
	}
	d.SetProperty(IDProperty, idOf(source))
	return d
}

func (c *Converter) newProxyData(t reflect.Type, source any) (Data, error) {
	b := c.engine.builder
	if t != dataInterface {
		return b.GetDataObject(t, true)
	}

	switch src := source.(type) {
	case Data:
		return b.GetDataObjectByName(src.GetDataType(), true)
	case Contract:
		return b.GetDataObjectFor(src, true)
	case SurrogateTypeInfo:
		ct, err := b.GetContractObject(src.ContractType(), true)
		if err != nil {
			return nil, err
		}
		return ct.Data(), nil
	}
	return nil, nil
}

func (c *Converter) toContract(t reflect.Type, source any) Contract {
	switch src := source.(type) {
	case Data:
		return BaseOf(src).AsContract(t)
	case Contract:
		if d := src.Data(); d != nil {
			return BaseOf(d).AsContract(t)
		}
		return viewAs(src, t)
	case Surrogate:
		ct := t
		if info, ok := source.(SurrogateTypeInfo); ok && t.Kind() == reflect.Interface {
			ct = info.ContractType()
		}
		if ct.Kind() == reflect.Interface {
			return nil
		}
		built, err := c.engine.builder.GetContractObject(ct, true)
		if err != nil {
			c.engine.logger.Debug("converting surrogate failed", "type", fullName(ct), "error", err)
			return nil
		}
		built.Data().SetProperty(IDProperty, src.ID())
		return viewAs(built, t)
	}
	return nil
}

func dataAssignable(d Data, t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return reflect.TypeOf(d).Implements(t)
	}
	return reflect.TypeOf(d) == t
}

func idOf(source any) string {
	if o, ok := source.(Object); ok && !isNil(o) {
		return o.ID()
	}
	return ""
}

// surrogateValue flattens Data and Contract objects to their Contract
// string form.
func surrogateValue(v any) any {
	switch o := v.(type) {
	case Contract:
		if isNil(o) {
			return nil
		}
		return ContractBaseOf(o).String()
	case Data:
		if isNil(o) {
			return nil
		}
		if ct := BaseOf(o).defaultContract(); ct != nil {
			return ContractBaseOf(ct).String()
		}
		return BaseOf(o).String()
	}
	return v
}
