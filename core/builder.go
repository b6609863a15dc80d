package core

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Konsultn-Engineering/metaobject/cache"
	"github.com/Konsultn-Engineering/metaobject/notify"
	"github.com/Konsultn-Engineering/metaobject/schema"
	"github.com/Konsultn-Engineering/metaobject/utils"
)

// Invoker constructs an object from positional arguments.
type Invoker func(args ...any) (any, error)

// Factory allocates a zero object of a registered type. The Builder
// initializes what it returns.
type Factory func() any

// Constructor signatures, named by their ordered parameter types.
const (
	SignatureDefault       = ""
	SignatureProxy         = "bool"
	SignatureContractProxy = "core.Contract,bool"
	SignatureData          = "core.Data"
	SignatureContract      = "core.Contract"
)

// Builder constructs Data, Contract and Surrogate objects and lists.
//
// Invokers are compiled once per type and signature and cached. A type
// whose invoker cannot be compiled is logged once and stays unbuildable.
type Builder struct {
	engine    *Engine
	invokers  *cache.CompiledCache[Invoker]
	factories sync.Map // map[reflect.Type]Factory
}

func newBuilder(e *Engine, size int) *Builder {
	return &Builder{
		engine:   e,
		invokers: cache.NewCompiledCache[Invoker](size),
	}
}

// RegisterFactory makes the Builder allocate t through f instead of
// reflection.
func (b *Builder) RegisterFactory(t reflect.Type, f Factory) {
	b.factories.Store(structOf(t), f)
}

// Get constructs an object of type t with its parameterless constructor.
// Contract objects get a new, non-proxied Data object.
func (b *Builder) Get(t reflect.Type) (any, error) {
	return b.invoke(t, SignatureDefault)
}

// GetByName constructs an object of the known type named fullName.
func (b *Builder) GetByName(fullName string) (any, error) {
	t := b.engine.locator.GetType(fullName)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, fullName)
	}
	return b.Get(t)
}

// GetKnownTypes returns every type the Locator discovered.
func (b *Builder) GetKnownTypes() []reflect.Type {
	return b.engine.locator.GetKnownTypes()
}

// GetDataObject constructs a Data object of type t.
func (b *Builder) GetDataObject(t reflect.Type, proxied bool) (Data, error) {
	v, err := b.invoke(t, SignatureProxy, proxied)
	if err != nil {
		return nil, err
	}
	return v.(Data), nil
}

// GetDataObjectByName constructs a Data object of a compiled or dynamic
// Data type.
func (b *Builder) GetDataObjectByName(dataType string, proxied bool) (Data, error) {
	info := b.engine.locator.GetDataTypeInfo(dataType)
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, dataType)
	}
	d, err := b.GetDataObject(info.DataType, proxied)
	if err != nil {
		return nil, err
	}
	if info.DynamicType != "" {
		d.SetDynamicType(info.DynamicType)
	}
	return d, nil
}

// GetDataObjectFor constructs the default Data object of a Contract object
// and stamps its dynamic type. It fails when the Contract type has no Data
// type registered.
func (b *Builder) GetDataObjectFor(c Contract, proxied bool) (Data, error) {
	ct := reflect.TypeOf(c)
	info := b.engine.locator.ContractTypeInfoOf(ct).Default()
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataTypeInfo, fullName(ct))
	}

	v, err := b.invoke(info.DataType, SignatureContractProxy, c, proxied)
	if err != nil {
		return nil, err
	}
	d := v.(Data)
	if info.DynamicType != "" {
		d.SetDynamicType(info.DynamicType)
	}
	return d, nil
}

// GetContractObject constructs a Contract object of type t with a new Data
// object whose properties are proxy when isProxy is set.
func (b *Builder) GetContractObject(t reflect.Type, isProxy bool) (Contract, error) {
	v, err := b.invoke(t, SignatureProxy, isProxy)
	if err != nil {
		return nil, err
	}
	return v.(Contract), nil
}

// GetContractObjectOf returns the Contract view t of d. See
// DataObject.AsContract.
func (b *Builder) GetContractObjectOf(t reflect.Type, d Data) Contract {
	if isNil(d) {
		return nil
	}
	return BaseOf(d).AsContract(t)
}

// GetDataList creates an empty list for elements of t, a Data type or a
// Contract type resolved to its default Data type.
func (b *Builder) GetDataList(t reflect.Type) *DataList {
	if t == nil {
		return NewDataList(nil)
	}
	loc := b.engine.locator
	if loc.IsDataType(t) {
		return NewDataList(structOf(t))
	}

	info := loc.ContractTypeInfoOf(t).Default()
	if info == nil {
		return NewDataList(nil)
	}
	list := NewDataList(info.DataType)
	list.SetDynamicType(info.DynamicType)
	return list
}

// GetDataListLike creates an empty list with the element type of list,
// which is a DataList or a ContractList.
func (b *Builder) GetDataListLike(list any) *DataList {
	l, ok := list.(dataLister)
	if !ok || isNil(l) {
		return NewDataList(nil)
	}
	src := l.DataList()
	out := NewDataList(src.ElemType())
	out.SetDynamicType(src.DynamicType())
	return out
}

// NewSurrogate constructs an empty dynamic surrogate.
func (b *Builder) NewSurrogate() *SurrogateObject {
	s := NewSurrogate()
	b.created(s)
	return s
}

// Build constructs a T with its parameterless constructor.
func Build[T any](b *Builder) (T, error) {
	var zero T
	v, err := b.Get(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnknownType, v)
	}
	return out, nil
}

// GetContractList returns a typed view over list.
func GetContractList[T Contract](list *DataList) *ContractList[T] {
	return ToContractList[T](list)
}

// newContractOver constructs a Contract object of type t wrapping d.
func (b *Builder) newContractOver(t reflect.Type, d Data) Contract {
	v, err := b.invoke(t, SignatureData, d)
	if err != nil {
		b.engine.logger.Warn("building contract object failed",
			"type", fullName(t),
			"error", err,
		)
		return nil
	}
	return v.(Contract)
}

func (b *Builder) invoke(t reflect.Type, signature string, args ...any) (any, error) {
	if t == nil {
		return nil, ErrUnknownType
	}
	inv := b.invoker(t, signature)
	if inv == nil {
		return nil, fmt.Errorf("%w: %s(%s)", ErrNoConstructor, fullName(t), signature)
	}

	v, err := inv(args...)
	if err != nil {
		return nil, err
	}
	b.created(v)
	return v, nil
}

func (b *Builder) invoker(t reflect.Type, signature string) Invoker {
	key := utils.Fingerprint(fullName(t), signature)
	inv, err := b.invokers.GetOrCompile(key, func() (Invoker, error) {
		return b.compile(structOf(t), signature)
	})
	if err != nil {
		b.engine.logger.Error("compiling constructor failed",
			"type", fullName(t),
			"signature", signature,
			"error", err,
		)
	}
	return inv
}

func (b *Builder) created(obj any) {
	notify.Notify(b.engine.notifier, obj, notify.ObjectCreated{Object: obj})
}

// compile returns the invoker of t for signature.
func (b *Builder) compile(t reflect.Type, signature string) (Invoker, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", schema.ErrNotStruct, t)
	}
	loc := b.engine.locator

	switch {
	case loc.IsDataType(t):
		return b.compileData(t, signature)
	case loc.IsContractType(t):
		return b.compileContract(t, signature)
	case loc.IsSurrogateType(t):
		if signature != SignatureDefault {
			break
		}
		return func(...any) (any, error) {
			s, err := allocate[Surrogate](b, t)
			if err != nil {
				return nil, err
			}
			s.surrogateObject().init(s)
			return s, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, fullName(t))
	}
	return nil, fmt.Errorf("%w: %s(%s)", ErrNoConstructor, fullName(t), signature)
}

func (b *Builder) compileData(t reflect.Type, signature string) (Invoker, error) {
	newData := func(proxied bool) (Data, error) {
		d, err := allocate[Data](b, t)
		if err != nil {
			return nil, err
		}
		d.dataObject().init(b.engine, d, proxied)
		return d, nil
	}

	switch signature {
	case SignatureDefault, SignatureProxy:
		return func(args ...any) (any, error) {
			return newData(boolArg(args, 0))
		}, nil
	case SignatureContractProxy:
		return func(args ...any) (any, error) {
			d, err := newData(boolArg(args, 1))
			if err != nil {
				return nil, err
			}
			if c, ok := arg[Contract](args, 0); ok {
				d.dataObject().cache().Add(fullName(reflect.TypeOf(c)), c, cache.RegionContractObjects)
			}
			return d, nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %s(%s)", ErrNoConstructor, fullName(t), signature)
}

func (b *Builder) compileContract(t reflect.Type, signature string) (Invoker, error) {
	newContract := func() (Contract, error) {
		c, err := allocate[Contract](b, t)
		if err != nil {
			return nil, err
		}
		c.contractObject().init(b.engine, c)
		return c, nil
	}

	switch signature {
	case SignatureDefault, SignatureProxy:
		return func(args ...any) (any, error) {
			c, err := newContract()
			if err != nil {
				return nil, err
			}
			d, err := b.GetDataObjectFor(c, boolArg(args, 0))
			if err != nil {
				return nil, err
			}
			c.contractObject().attach(d)
			return c, nil
		}, nil
	case SignatureData:
		return func(args ...any) (any, error) {
			c, err := newContract()
			if err != nil {
				return nil, err
			}
			if d, ok := arg[Data](args, 0); ok {
				c.contractObject().attach(d)
			}
			return c, nil
		}, nil
	case SignatureContract:
		return func(args ...any) (any, error) {
			c, err := newContract()
			if err != nil {
				return nil, err
			}
			if inner, ok := arg[Contract](args, 0); ok {
				c.contractObject().Wrap(inner)
			}
			return c, nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %s(%s)", ErrNoConstructor, fullName(t), signature)
}

// allocate returns a new *t as T, from a registered factory when present.
func allocate[T any](b *Builder, t reflect.Type) (T, error) {
	var zero T
	var v any
	if f, ok := b.factories.Load(t); ok {
		v = f.(Factory)()
	} else {
		v = reflect.New(t).Interface()
	}

	out, ok := v.(T)
	if !ok || isNil(out) {
		return zero, fmt.Errorf("%w: factory of %s returned %T", ErrUnknownType, fullName(t), v)
	}
	return out, nil
}

func arg[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) || isNil(args[i]) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}

func boolArg(args []any, i int) bool {
	v, _ := arg[bool](args, i)
	return v
}
