package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/Konsultn-Engineering/metaobject/cache"
	"github.com/Konsultn-Engineering/metaobject/notify"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

// Built-in pseudo-properties of every Data object.
const (
	IDProperty          = "ID"
	DynamicTypeProperty = "DynamicType"
)

// ProxyInformation is a snapshot of the proxy flags of a Data object.
type ProxyInformation struct {
	Default bool
	States  map[string]bool
}

// IsProxy reports the flag of name, falling back to the default.
func (p ProxyInformation) IsProxy(name string) bool {
	if proxy, ok := p.States[name]; ok {
		return proxy
	}
	return p.Default
}

// DataObject is the state holder embedded by every Data struct.
//
// Static properties are the exported fields of the outer struct. Every other
// property is kept in the object's cache, next to the proxy flags and the
// Contract objects currently wrapping it. Objects must be created through
// the Builder so the outer struct and the Engine are known.
type DataObject struct {
	engine *Engine
	self   Data

	id           string
	dynamicType  string
	defaultProxy bool

	once    sync.Once
	objects *cache.DataCache
}

func (d *DataObject) init(e *Engine, self Data, proxied bool) {
	d.engine = e
	d.self = self
	d.defaultProxy = proxied
}

func (d *DataObject) dataObject() *DataObject { return d }

func (d *DataObject) cache() *cache.DataCache {
	d.once.Do(func() {
		d.objects = cache.NewDataCache()
	})
	return d.objects
}

// Engine returns the Engine that built the object, or nil.
func (d *DataObject) Engine() *Engine { return d.engine }

// Self returns the outermost Data struct embedding d.
func (d *DataObject) Self() Data {
	if d.self != nil {
		return d.self
	}
	return d
}

func (d *DataObject) ID() string { return d.id }

// SetID assigns the identity of an unsaved object. Once set, the ID only
// changes through SetProperty(IDProperty, ...).
func (d *DataObject) SetID(id string) {
	if d.id != "" {
		return
	}
	d.setProperty(IDProperty, id)
}

func (d *DataObject) DynamicType() string { return d.dynamicType }

func (d *DataObject) SetDynamicType(dynamicType string) {
	d.dynamicType = dynamicType
}

// GetDataType returns the dynamic type name, or the full name of the
// compiled struct.
func (d *DataObject) GetDataType() string {
	if d.dynamicType != "" {
		return d.dynamicType
	}
	return fullName(reflect.TypeOf(d.Self()))
}

// DefaultProxyState is the proxy flag of properties never set or loaded.
func (d *DataObject) DefaultProxyState() bool { return d.defaultProxy }

// GetProxyState reports whether the named property is not loaded yet. An
// object with an ID never reports its ID as proxy.
func (d *DataObject) GetProxyState(name string) bool {
	name = lastSegment(name)
	if name == IDProperty && d.id != "" {
		return false
	}
	if v, ok := d.cache().Lookup(name, cache.RegionProxies); ok {
		return v.(bool)
	}
	return d.defaultProxy
}

func (d *DataObject) SetProxyState(name string, proxy bool) {
	d.cache().Add(lastSegment(name), proxy, cache.RegionProxies)
}

// GetProxyInformation returns a snapshot of the proxy flags.
func (d *DataObject) GetProxyInformation() ProxyInformation {
	entries := d.cache().GetObjectsInRegion(cache.RegionProxies)
	info := ProxyInformation{
		Default: d.defaultProxy,
		States:  make(map[string]bool, len(entries)),
	}
	for _, e := range entries {
		info.States[e.Key] = e.Value.(bool)
	}
	return info
}

// GetProperty returns the stored value of a property without loading it.
// Unknown properties yield nil.
func (d *DataObject) GetProperty(name string) any {
	switch name {
	case IDProperty:
		return d.id
	case DynamicTypeProperty:
		return d.dynamicType
	}
	if f, v, ok := d.staticField(name); ok {
		return v.FieldByIndex(f.Index).Interface()
	}
	return d.cache().Get(name, cache.RegionProperties)
}

// SetProperty stores a property value and marks it loaded. Contract values
// are stored as their Data objects.
func (d *DataObject) SetProperty(name string, value any) {
	d.setProperty(name, value)
}

// GetContractProperty reads a property on behalf of a Contract object. A
// proxy property is loaded first. Data values are returned as their default
// Contract object and DataList values as a ContractList[Contract].
func (d *DataObject) GetContractProperty(name string) any {
	name = lastSegment(name)
	if d.GetProxyState(name) {
		d.load(name)
	}

	switch v := d.GetProperty(name).(type) {
	case Data:
		if !isNil(v) {
			if c := v.dataObject().defaultContract(); c != nil {
				return c
			}
		}
		return v
	case *DataList:
		if v != nil {
			return ToContractList[Contract](v)
		}
		return v
	default:
		return v
	}
}

// SetContractProperty writes a property on behalf of a Contract object.
func (d *DataObject) SetContractProperty(name string, value any) {
	d.setProperty(lastSegment(name), value)
}

// PropertyNames returns the static property names followed by the names of
// the dynamic properties set so far.
func (d *DataObject) PropertyNames() []string {
	var names []string
	if meta := d.meta(); meta != nil {
		for _, f := range meta.Fields {
			names = append(names, f.Name)
		}
	}
	for _, e := range d.cache().GetObjectsInRegion(cache.RegionProperties) {
		names = append(names, e.Key)
	}
	return names
}

// HasStaticProperty reports whether name is a field of the outer struct.
func (d *DataObject) HasStaticProperty(name string) bool {
	_, _, ok := d.staticField(name)
	return ok
}

// DynamicProperties returns a snapshot of the properties kept in the cache.
func (d *DataObject) DynamicProperties() []cache.Entry {
	return d.cache().GetObjectsInRegion(cache.RegionProperties)
}

// AsContract returns a Contract view of type t over this object.
//
// A Contract cached under t's name wins, then any cached Contract
// assignable to t. Otherwise the first Contract type of the object's Data
// type info that is assignable to t is built and cached under both names.
// The result is nil when no Contract type fits.
func (d *DataObject) AsContract(t reflect.Type) Contract {
	if t == nil {
		return nil
	}
	key := fullName(t)
	objects := d.cache()

	if v, ok := objects.Lookup(key, cache.RegionContractObjects); ok {
		return v.(Contract)
	}

	for _, e := range objects.GetObjectsInRegion(cache.RegionContractObjects) {
		if view := viewAs(e.Value.(Contract), t); view != nil {
			objects.Add(key, view, cache.RegionContractObjects)
			return view
		}
	}

	built := d.buildContract(t)
	if built == nil {
		return nil
	}
	objects.Add(fullName(reflect.TypeOf(built)), built, cache.RegionContractObjects)

	view := viewAs(built, t)
	if view != nil {
		objects.Add(key, view, cache.RegionContractObjects)
	}
	return view
}

// ContractObjects returns the distinct Contract objects wrapping d.
func (d *DataObject) ContractObjects() []Contract {
	entries := d.cache().GetObjectsInRegion(cache.RegionContractObjects)
	out := make([]Contract, 0, len(entries))
	seen := make(map[*ContractObject]bool, len(entries))
	for _, e := range entries {
		c := e.Value.(Contract)
		base := c.contractObject()
		if seen[base] {
			continue
		}
		seen[base] = true
		out = append(out, base.Self())
	}
	return out
}

// IsHoldingContractObjectTypes reports whether a cached Contract object is
// assignable to any of types.
func (d *DataObject) IsHoldingContractObjectTypes(types ...reflect.Type) bool {
	for _, e := range d.cache().GetObjectsInRegion(cache.RegionContractObjects) {
		c := e.Value.(Contract)
		for _, t := range types {
			if viewAs(c, t) != nil {
				return true
			}
		}
	}
	return false
}

// Clone copies the object into a new, non-proxied instance.
func (d *DataObject) Clone(paths []string, proxyReferences bool) Data {
	if d.engine == nil {
		return nil
	}
	return d.engine.cloner.CloneDataObject(d.Self(), paths, proxyReferences, nil)
}

func (d *DataObject) String() string {
	return fmt.Sprintf("%s(%s)", d.GetDataType(), d.id)
}

func (d *DataObject) setProperty(name string, value any) {
	switch v := value.(type) {
	case Contract:
		if isNil(v) {
			value = nil
		} else {
			value = v.Data()
		}
	case dataLister:
		value = v.DataList()
	}

	old := d.GetProperty(name)
	if name == IDProperty {
		id, _ := schema.Convert[string](value)
		if id == d.id {
			return
		}
		value = id
	}

	d.notify(func(sender any) {
		notify.Notify(d.notifier(), sender, notify.PropertyChanging{Name: name, OldValue: old, NewValue: value})
	})

	d.store(name, value)
	d.SetProxyState(name, false)

	d.notify(func(sender any) {
		notify.Notify(d.notifier(), sender, notify.PropertyChanged{Name: name, Value: value})
	})
}

func (d *DataObject) store(name string, value any) {
	switch name {
	case IDProperty:
		d.id, _ = value.(string)
		return
	case DynamicTypeProperty:
		d.dynamicType, _ = schema.Convert[string](value)
		return
	}

	f, v, ok := d.staticField(name)
	if !ok {
		d.cache().Add(name, value, cache.RegionProperties)
		return
	}

	field := v.FieldByIndex(f.Index)
	if isNil(value) {
		field.Set(reflect.Zero(f.Type))
		return
	}
	if rv := reflect.ValueOf(value); rv.Type().AssignableTo(f.Type) {
		field.Set(rv)
		return
	}
	converted, err := schema.ConvertValue(value, f.Type)
	if err != nil {
		d.logger().Debug("property value not assignable",
			"type", d.GetDataType(),
			"property", name,
			"error", err,
		)
		return
	}
	field.Set(reflect.ValueOf(converted))
}

// notify calls send for the Data object and every Contract wrapping it.
func (d *DataObject) notify(send func(sender any)) {
	if d.notifier() == nil {
		return
	}
	send(d.Self())
	for _, c := range d.ContractObjects() {
		send(c)
	}
}

// load requests name from the loader. A list property also requests the
// paths included on the list, relative to d.
func (d *DataObject) load(name string) {
	if d.engine != nil {
		paths := []string{name}
		if list, ok := d.GetProperty(name).(*DataList); ok && list != nil {
			for _, p := range list.Includes() {
				paths = append(paths, name+"."+p)
			}
		}
		d.engine.loader.Load(d.Self(), d.GetProxyInformation(), paths)
	}
	d.SetProxyState(name, false)
}

func (d *DataObject) defaultContract() Contract {
	if d.engine == nil {
		return nil
	}
	info := d.engine.locator.GetDataTypeInfo(d.GetDataType())
	if info == nil || len(info.ContractTypeInfos) == 0 {
		return nil
	}
	return d.AsContract(info.ContractTypeInfos[0].ContractType)
}

func (d *DataObject) buildContract(t reflect.Type) Contract {
	e := d.engine
	if e == nil {
		return nil
	}

	if info := e.locator.GetDataTypeInfo(d.GetDataType()); info != nil {
		for _, ci := range info.ContractTypeInfos {
			if contractAssignable(ci.ContractType, t) {
				return e.builder.newContractOver(ci.ContractType, d.Self())
			}
		}
	}
	if t.Kind() != reflect.Interface && e.locator.IsContractType(t) {
		return e.builder.newContractOver(t, d.Self())
	}
	return nil
}

func (d *DataObject) meta() *schema.TypeMeta {
	t := reflect.TypeOf(d.Self())
	if t == dataObjectPtrType {
		return nil
	}
	meta, err := schema.Introspect(t)
	if err != nil {
		return nil
	}
	return meta
}

func (d *DataObject) staticField(name string) (*schema.FieldMeta, reflect.Value, bool) {
	meta := d.meta()
	if meta == nil {
		return nil, reflect.Value{}, false
	}
	f, ok := meta.FieldMap[name]
	if !ok {
		return nil, reflect.Value{}, false
	}
	return f, reflect.ValueOf(d.Self()).Elem(), true
}

func (d *DataObject) notifier() *notify.Notifier {
	if d.engine == nil {
		return nil
	}
	return d.engine.notifier
}

func (d *DataObject) logger() *slog.Logger {
	if d.engine == nil {
		return slog.Default()
	}
	return d.engine.logger
}
