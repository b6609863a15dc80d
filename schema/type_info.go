package schema

import "reflect"

// Binding declares that a Data struct represents a Contract type.
type Binding struct {
	Type    reflect.Type
	Default bool
}

// Bind builds a Binding from a prototype value such as (*Person)(nil).
func Bind(prototype any, isDefault bool) Binding {
	return Binding{Type: structType(reflect.TypeOf(prototype)), Default: isDefault}
}

// ContractBinder is implemented by Data structs that represent one or more
// Contract types. It is called on a zero value.
type ContractBinder interface {
	ContractBindings() []Binding
}

// PropertyKind classifies a declared Contract property.
type PropertyKind uint8

const (
	ScalarProperty PropertyKind = iota
	ReferenceProperty
	ListProperty
)

// PropertyField is implemented by the descriptor types used to declare
// Contract properties. Both methods are called on a zero value.
type PropertyField interface {
	PropertyKind() PropertyKind
	// ValueType is the scalar type, or the Contract type of a reference or
	// list element.
	ValueType() reflect.Type
}

// DataTypeInfo describes one Data type, compiled or dynamic.
type DataTypeInfo struct {
	// DataType is the Go struct backing the objects. For dynamic types it is
	// the nearest compiled ancestor.
	DataType        reflect.Type
	BaseType        reflect.Type
	DynamicType     string
	DynamicBaseType string
	IsInAssembly    bool

	Plural     string
	Collection string

	ContractTypeInfos []*ContractTypeInfo
	PropertyInfos     []*PropertyInfo
}

// Name is the registry key: the dynamic type name, else the compiled full name.
func (i *DataTypeInfo) Name() string {
	if i.DynamicType != "" {
		return i.DynamicType
	}
	return FullName(i.DataType)
}

// PropertyInfo returns the named property, or nil.
func (i *DataTypeInfo) PropertyInfo(name string) *PropertyInfo {
	for _, p := range i.PropertyInfos {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ContractTypeInfo describes a Contract type and its candidate Data types,
// default first.
type ContractTypeInfo struct {
	ContractType           reflect.Type
	IsDataObjectInAssembly bool
	DataTypeInfos          []*DataTypeInfo
}

// Default returns the Data type the Contract resolves to.
func (c *ContractTypeInfo) Default() *DataTypeInfo {
	if c == nil || len(c.DataTypeInfos) == 0 {
		return nil
	}
	return c.DataTypeInfos[0]
}

func (c *ContractTypeInfo) inAssembly() *DataTypeInfo {
	for _, d := range c.DataTypeInfos {
		if d.IsInAssembly {
			return d
		}
	}
	return nil
}

// PropertyInfo describes one property of a Data type. Exactly one of
// PropertyType and DataTypeInfo is set.
type PropertyInfo struct {
	Name         string
	PropertyType reflect.Type
	DataTypeInfo *DataTypeInfo
	IsList       bool
}
