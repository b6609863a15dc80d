package schema

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/Konsultn-Engineering/metaobject/cache"
)

// Module is a named group of types registered together, typically one per
// Go package. Types are given as prototype values, e.g. Person{} or
// (*Person)(nil).
type Module struct {
	Name  string
	Types []any
}

// NewModule is a convenience constructor for Module.
func NewModule(name string, prototypes ...any) Module {
	return Module{Name: name, Types: prototypes}
}

// loadKnownTypes indexes every registered type by full name. It runs once;
// concurrent callers block on the sync.Once until it completes.
func (l *Locator) loadKnownTypes() {
	l.discoverOnce.Do(func() {
		l.regMu.Lock()
		modules := append([]Module(nil), l.modules...)
		l.sealed = true
		l.regMu.Unlock()

		for _, root := range []reflect.Type{l.dataRoot, l.contractRoot, l.surrogateRoot} {
			if root != nil {
				l.cache.Add(FullName(root), root, cache.RegionKnownTypes)
			}
		}

		sort.SliceStable(modules, func(i, j int) bool {
			return modules[i].Name < modules[j].Name
		})

		for _, m := range modules {
			if err := l.knownTypesOfModule(m); err != nil {
				l.logger.Warn("loading module types failed",
					"module", m.Name,
					"error", err,
				)
			}
		}
	})
}

// knownTypesOfModule validates every type of m before adding any of them, so
// a broken module contributes nothing.
func (l *Locator) knownTypesOfModule(m Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %s: %v", m.Name, r)
		}
	}()

	types := make([]reflect.Type, 0, len(m.Types))
	for _, proto := range m.Types {
		t := structType(reflect.TypeOf(proto))
		if t == nil || t.Kind() != reflect.Struct {
			return fmt.Errorf("%w: %v in module %s", ErrNotStruct, reflect.TypeOf(proto), m.Name)
		}
		if _, err := Introspect(t); err != nil {
			return err
		}
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool {
		return FullName(types[i]) < FullName(types[j])
	})

	for _, t := range types {
		l.cache.Add(FullName(t), t, cache.RegionKnownTypes)
	}
	return nil
}

// GetType returns the known type with the given full name, or nil.
func (l *Locator) GetType(fullName string) reflect.Type {
	l.loadKnownTypes()
	return cache.Get[reflect.Type](l.cache, fullName, cache.RegionKnownTypes)
}

// GetKnownTypes returns every known type in discovery order.
func (l *Locator) GetKnownTypes() []reflect.Type {
	l.loadKnownTypes()

	entries := l.cache.GetObjectsInRegion(cache.RegionKnownTypes)
	out := make([]reflect.Type, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value.(reflect.Type))
	}
	return out
}
