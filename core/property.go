package core

import (
	"reflect"

	"github.com/Konsultn-Engineering/metaobject/schema"
)

type binder interface {
	bind(owner *ContractObject, name string)
}

// Property declares a scalar Contract property of type T.
type Property[T any] struct {
	owner *ContractObject
	name  string
}

func (Property[T]) PropertyKind() schema.PropertyKind { return schema.ScalarProperty }

func (Property[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (p *Property[T]) bind(owner *ContractObject, name string) {
	p.owner = owner
	p.name = name
}

func (p Property[T]) Name() string { return p.name }

// Get returns the value, loading it first when it is proxy. A missing or
// unconvertible value yields the zero T.
func (p Property[T]) Get() T {
	var zero T
	if p.owner == nil {
		return zero
	}
	v, _ := schema.Convert[T](p.owner.GetProperty(p.name))
	return v
}

func (p Property[T]) Set(value T) {
	if p.owner != nil {
		p.owner.SetProperty(p.name, value)
	}
}

// Ref declares a property holding another Contract object.
type Ref[T Contract] struct {
	owner *ContractObject
	name  string
}

func (Ref[T]) PropertyKind() schema.PropertyKind { return schema.ReferenceProperty }

func (Ref[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (r *Ref[T]) bind(owner *ContractObject, name string) {
	r.owner = owner
	r.name = name
}

func (r Ref[T]) Name() string { return r.name }

// Get returns the referenced object viewed as T, or the zero T.
func (r Ref[T]) Get() T {
	var zero T
	if r.owner == nil {
		return zero
	}

	switch v := r.owner.GetProperty(r.name).(type) {
	case T:
		return v
	case Contract:
		if d := v.Data(); d != nil {
			return As[T](d)
		}
	case Data:
		return As[T](v)
	}
	return zero
}

func (r Ref[T]) Set(value T) {
	if r.owner != nil {
		r.owner.SetProperty(r.name, value)
	}
}

// List declares a property holding a list of Contract objects. The list is
// stored as a DataList of the matching Data type.
type List[T Contract] struct {
	owner *ContractObject
	name  string
}

func (List[T]) PropertyKind() schema.PropertyKind { return schema.ListProperty }

func (List[T]) ValueType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (l *List[T]) bind(owner *ContractObject, name string) {
	l.owner = owner
	l.name = name
}

func (l List[T]) Name() string { return l.name }

// Get returns the list. An unset list is created empty and stored, so
// additions are kept.
func (l List[T]) Get() *ContractList[T] {
	if l.owner == nil {
		return ToContractList[T](NewDataList(nil))
	}

	switch v := l.owner.GetProperty(l.name).(type) {
	case *ContractList[T]:
		if v != nil {
			return v
		}
	case dataLister:
		if !isNil(v) {
			return ToContractList[T](v.DataList())
		}
	}

	var list *DataList
	if e := l.owner.engine; e != nil {
		list = e.builder.GetDataList(l.ValueType())
	} else {
		list = NewDataList(nil)
	}
	if l.owner.Data() != nil {
		l.owner.SetProperty(l.name, list)
	}
	return ToContractList[T](list)
}

func (l List[T]) Set(list *ContractList[T]) {
	if l.owner == nil {
		return
	}
	if list == nil {
		l.owner.SetProperty(l.name, nil)
		return
	}
	l.owner.SetProperty(l.name, list.DataList())
}

// PropertyOf reads a property by name and converts it to T. Misses yield
// the zero T.
func PropertyOf[T any](obj Object, name string) T {
	var zero T
	if isNil(obj) {
		return zero
	}
	v, _ := schema.Convert[T](obj.GetProperty(name))
	return v
}
