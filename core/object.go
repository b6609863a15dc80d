package core

import (
	"reflect"

	"github.com/Konsultn-Engineering/metaobject/schema"
)

// Object is implemented by every Data, Contract and Surrogate object.
type Object interface {
	ID() string
	SetID(id string)
	GetProperty(name string) any
	SetProperty(name string, value any)
}

// Data is implemented by structs embedding DataObject.
type Data interface {
	Object
	DynamicType() string
	SetDynamicType(dynamicType string)
	GetDataType() string
	GetProxyState(name string) bool
	SetProxyState(name string, proxy bool)

	dataObject() *DataObject
}

// Contract is implemented by structs embedding ContractObject.
type Contract interface {
	Object
	Data() Data
	GetProxyState(name string) bool

	contractObject() *ContractObject
}

// Surrogate is implemented by SurrogateObject and structs embedding it.
type Surrogate interface {
	Object

	surrogateObject() *SurrogateObject
}

// ReferenceObject is a Data object referenced by identity. Merges resolve
// saved references instead of copying them.
type ReferenceObject interface {
	Data
	Reference() string
	SetReference(reference string)
}

// SurrogateTypeInfo is implemented by typed surrogates that know the
// Contract type they stand for.
type SurrogateTypeInfo interface {
	ContractType() reflect.Type
}

var (
	dataObjectType         = reflect.TypeOf(DataObject{})
	dataObjectPtrType      = reflect.TypeOf((*DataObject)(nil))
	contractObjectType     = reflect.TypeOf(ContractObject{})
	surrogateObjectType    = reflect.TypeOf(SurrogateObject{})
	surrogateObjectPtrType = reflect.TypeOf((*SurrogateObject)(nil))

	dataInterface      = reflect.TypeOf((*Data)(nil)).Elem()
	contractInterface  = reflect.TypeOf((*Contract)(nil)).Elem()
	surrogateInterface = reflect.TypeOf((*Surrogate)(nil)).Elem()
)

// BaseOf returns the DataObject embedded in d.
func BaseOf(d Data) *DataObject {
	if isNil(d) {
		return nil
	}
	return d.dataObject()
}

// ContractBaseOf returns the ContractObject embedded in c.
func ContractBaseOf(c Contract) *ContractObject {
	if isNil(c) {
		return nil
	}
	return c.contractObject()
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

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

func fullName(t reflect.Type) string {
	return schema.FullName(t)
}
