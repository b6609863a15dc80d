package core

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/metaobject/schema"
)

// ContractObject is embedded by every Contract struct. It holds no state of
// its own: it wraps either a Data object or another Contract object, and
// every property access ends at the Data object.
type ContractObject struct {
	engine *Engine
	self   Contract

	data  Data
	inner Contract
}

func (c *ContractObject) init(e *Engine, self Contract) {
	c.engine = e
	c.self = self
	c.bindProperties()
}

func (c *ContractObject) contractObject() *ContractObject { return c }

// Self returns the outermost Contract struct embedding c.
func (c *ContractObject) Self() Contract {
	if c.self != nil {
		return c.self
	}
	return c
}

// Engine returns the Engine that built the object, or nil.
func (c *ContractObject) Engine() *Engine { return c.engine }

// Data returns the Data object at the end of the wrapping chain, or nil.
func (c *ContractObject) Data() Data {
	if c.data != nil {
		return c.data
	}
	if c.inner != nil {
		return c.inner.Data()
	}
	return nil
}

// Wrap makes c a view over another Contract object.
func (c *ContractObject) Wrap(inner Contract) {
	c.inner = inner
	c.data = nil
}

func (c *ContractObject) attach(d Data) {
	c.data = d
	c.inner = nil
}

func (c *ContractObject) ID() string {
	if d := c.Data(); d != nil {
		return d.ID()
	}
	return ""
}

func (c *ContractObject) SetID(id string) {
	c.SetProperty(IDProperty, id)
}

// GetProperty reads a property through the Data object, loading it when it
// is proxy.
func (c *ContractObject) GetProperty(name string) any {
	d := c.Data()
	if d == nil {
		return nil
	}
	return d.dataObject().GetContractProperty(name)
}

func (c *ContractObject) SetProperty(name string, value any) {
	if d := c.Data(); d != nil {
		d.dataObject().SetContractProperty(name, value)
	}
}

// GetProxyState is true for a Contract object without Data.
func (c *ContractObject) GetProxyState(name string) bool {
	d := c.Data()
	if d == nil {
		return true
	}
	return d.GetProxyState(name)
}

// Equals compares identities. Two unsaved objects are equal only when they
// share the same Data object.
func (c *ContractObject) Equals(other Contract) bool {
	if isNil(other) {
		return false
	}
	if c.ID() != "" || other.ID() != "" {
		return c.ID() == other.ID()
	}
	return c.Data() != nil && BaseOf(c.Data()) == BaseOf(other.Data())
}

func (c *ContractObject) String() string {
	return fmt.Sprintf("%s(%s)", fullName(reflect.TypeOf(c.Self())), c.ID())
}

// bindProperties points every property descriptor of the outer struct at c.
func (c *ContractObject) bindProperties() {
	self := c.Self()
	meta, err := schema.Introspect(reflect.TypeOf(self))
	if err != nil {
		return
	}

	v := reflect.ValueOf(self).Elem()
	for _, f := range meta.Fields {
		if f.Property == nil {
			continue
		}
		if b, ok := v.FieldByIndex(f.Index).Addr().Interface().(binder); ok {
			b.bind(c, f.Name)
		}
	}
}

// viewAs returns c as type t: c itself when its type is t or implements
// interface t, or a pointer to the embedded struct t. It returns nil when c
// is not assignable to t.
func viewAs(c Contract, t reflect.Type) Contract {
	if isNil(c) || t == nil {
		return nil
	}
	ct := reflect.TypeOf(c)

	if t.Kind() == reflect.Interface {
		if ct.Implements(t) {
			return c
		}
		return nil
	}

	path, ok := schema.EmbedPath(ct, t)
	if !ok {
		return nil
	}
	if len(path) == 0 {
		return c
	}
	view, _ := reflect.ValueOf(c).Elem().FieldByIndex(path).Addr().Interface().(Contract)
	return view
}

// contractAssignable reports whether a Contract of struct type from can be
// viewed as t.
func contractAssignable(from, t reflect.Type) bool {
	ptr := reflect.PointerTo(structOf(from))
	if t.Kind() == reflect.Interface {
		return ptr.Implements(t)
	}
	_, ok := schema.EmbedPath(ptr, t)
	return ok
}

func structOf(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
