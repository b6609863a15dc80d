package schema

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Konsultn-Engineering/metaobject/cache"
	"github.com/Konsultn-Engineering/metaobject/utils"
)

// DynamicTyped is implemented by Data objects that may carry a dynamic type
// name in place of a compiled struct.
type DynamicTyped interface {
	DynamicType() string
}

// Locator is the type registry. It maps Contract types to the Data types
// that back them, in both directions, and tracks dynamic type chains.
//
// Registration happens before the first lookup. The first lookup discovers
// the registered types and builds every type info under a single lock;
// afterwards the infos are read-only.
type Locator struct {
	dataRoot      reflect.Type
	contractRoot  reflect.Type
	surrogateRoot reflect.Type

	logger *slog.Logger
	cache  *cache.DataCache

	regMu     sync.Mutex
	modules   []Module
	manifests []*Manifest
	sealed    bool

	discoverOnce sync.Once

	infoMu sync.Mutex
	loaded atomic.Bool

	// per contract: which of its DataTypeInfos were declared default
	defaults map[*ContractTypeInfo]int
}

// Option configures a Locator.
type Option func(*Locator)

// WithRoots sets the root structs every Data, Contract and Surrogate struct
// embeds. Types are classified by the root they reach.
func WithRoots(data, contract, surrogate reflect.Type) Option {
	return func(l *Locator) {
		l.dataRoot = structType(data)
		l.contractRoot = structType(contract)
		l.surrogateRoot = structType(surrogate)
	}
}

// WithLogger sets the logger for swallowed registration failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

// WithModules registers modules at construction.
func WithModules(modules ...Module) Option {
	return func(l *Locator) { l.modules = append(l.modules, modules...) }
}

// WithManifest registers a manifest of dynamic types at construction.
func WithManifest(m *Manifest) Option {
	return func(l *Locator) {
		if m != nil {
			l.manifests = append(l.manifests, m)
		}
	}
}

// NewLocator creates a Locator. Without WithRoots no type is classified as
// Data or Contract.
func NewLocator(options ...Option) *Locator {
	l := &Locator{
		logger:   slog.Default(),
		cache:    cache.NewDataCache(),
		defaults: make(map[*ContractTypeInfo]int),
	}

	for _, opt := range options {
		opt(l)
	}

	for _, region := range []string{
		cache.RegionKnownTypes,
		cache.RegionDataTypeInfos,
		cache.RegionContractTypeInfos,
		cache.RegionDynamicChildrenTypes,
	} {
		l.cache.CreateRegion(region)
	}

	return l
}

// Register adds modules. It fails once discovery has started.
func (l *Locator) Register(modules ...Module) error {
	l.regMu.Lock()
	defer l.regMu.Unlock()

	if l.sealed {
		return ErrLocatorSealed
	}
	l.modules = append(l.modules, modules...)
	return nil
}

// RegisterManifest adds a manifest of dynamic types. It fails once
// discovery has started.
func (l *Locator) RegisterManifest(m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}

	l.regMu.Lock()
	defer l.regMu.Unlock()

	if l.sealed {
		return ErrLocatorSealed
	}
	l.manifests = append(l.manifests, m)
	return nil
}

// DataRoot returns the root Data struct type.
func (l *Locator) DataRoot() reflect.Type { return l.dataRoot }

// ContractRoot returns the root Contract struct type.
func (l *Locator) ContractRoot() reflect.Type { return l.contractRoot }

// IsDataType reports whether t embeds the Data root.
func (l *Locator) IsDataType(t reflect.Type) bool {
	return l.dataRoot != nil && Embeds(t, l.dataRoot)
}

// IsContractType reports whether t embeds the Contract root.
func (l *Locator) IsContractType(t reflect.Type) bool {
	return l.contractRoot != nil && Embeds(t, l.contractRoot)
}

// IsSurrogateType reports whether t embeds the Surrogate root.
func (l *Locator) IsSurrogateType(t reflect.Type) bool {
	return l.surrogateRoot != nil && Embeds(t, l.surrogateRoot)
}

// GetContractTypeInfo returns the info of the named Contract type, or nil.
func (l *Locator) GetContractTypeInfo(fullName string) *ContractTypeInfo {
	l.loadInfos()
	return l.contractInfo(fullName)
}

// ContractTypeInfoOf returns the info of Contract type t, or nil.
func (l *Locator) ContractTypeInfoOf(t reflect.Type) *ContractTypeInfo {
	return l.GetContractTypeInfo(FullName(t))
}

// GetDataTypeInfo returns the info of the named Data type, compiled or
// dynamic, or nil.
func (l *Locator) GetDataTypeInfo(fullName string) *DataTypeInfo {
	l.loadInfos()
	return l.dataInfo(fullName)
}

// DataTypeInfoOf returns the info of the compiled Data type t, or nil.
func (l *Locator) DataTypeInfoOf(t reflect.Type) *DataTypeInfo {
	return l.GetDataTypeInfo(FullName(t))
}

// DataTypeInfos returns every Data type info in registration order.
func (l *Locator) DataTypeInfos() []*DataTypeInfo {
	l.loadInfos()

	entries := l.cache.GetObjectsInRegion(cache.RegionDataTypeInfos)
	out := make([]*DataTypeInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value.(*DataTypeInfo))
	}
	return out
}

// GetDataObjectDataType returns the compiled Data struct used for objects
// of Contract type t: the Data type of the nearest ancestor with a compiled
// Data struct, defaulting to the Data root.
func (l *Locator) GetDataObjectDataType(t reflect.Type) reflect.Type {
	l.loadInfos()
	return l.dataObjectDataType(structType(t))
}

// GetBaseTypes returns the ancestor type names of a Data object, most
// derived first, excluding the Data root. Dynamic objects follow their
// dynamic chain; compiled ones their embedded structs. obj must be the
// outermost value so its compiled type is visible.
func (l *Locator) GetBaseTypes(obj DynamicTyped) []string {
	if obj == nil {
		return nil
	}
	if dt := obj.DynamicType(); dt != "" {
		info := l.GetDataTypeInfo(dt)
		if info == nil {
			return nil
		}
		return l.GetBaseTypesOf(info)
	}

	out := []string{}
	l.compiledBaseTypes(ParentOf(reflect.TypeOf(obj)), &out)
	return out
}

// GetBaseTypesOf returns the ancestor type names of a Data type info.
func (l *Locator) GetBaseTypesOf(info *DataTypeInfo) []string {
	out := []string{}
	seen := make(map[*DataTypeInfo]bool)

	for info != nil && !seen[info] {
		seen[info] = true

		if info.DynamicBaseType == "" {
			l.compiledBaseTypes(info.BaseType, &out)
			break
		}
		out = append(out, info.DynamicBaseType)
		info = l.GetDataTypeInfo(info.DynamicBaseType)
	}
	return out
}

// GetDynamicChildrenTypes returns every dynamic type descending from info,
// depth first.
func (l *Locator) GetDynamicChildrenTypes(info *DataTypeInfo) []*DataTypeInfo {
	if info == nil || info.DynamicType == "" {
		return nil
	}
	l.loadInfos()
	return cache.Get[[]*DataTypeInfo](l.cache, info.DynamicType, cache.RegionDynamicChildrenTypes)
}

// Dump writes a readable summary of every Data type info to w.
func (l *Locator) Dump(w io.Writer) {
	type summary struct {
		DataType        string
		BaseType        string
		DynamicType     string
		DynamicBaseType string
		IsInAssembly    bool
		Collection      string
		Contracts       []string
		Properties      []string
	}

	out := make(map[string]summary)
	for _, info := range l.DataTypeInfos() {
		s := summary{
			DataType:        FullName(info.DataType),
			BaseType:        FullName(info.BaseType),
			DynamicType:     info.DynamicType,
			DynamicBaseType: info.DynamicBaseType,
			IsInAssembly:    info.IsInAssembly,
			Collection:      info.Collection,
		}
		for _, c := range info.ContractTypeInfos {
			s.Contracts = append(s.Contracts, FullName(c.ContractType))
		}
		for _, p := range info.PropertyInfos {
			s.Properties = append(s.Properties, p.Name)
		}
		out[info.Name()] = s
	}
	utils.Fdump(w, out)
}

func (l *Locator) compiledBaseTypes(t reflect.Type, out *[]string) {
	for t != nil && t != l.dataRoot {
		*out = append(*out, FullName(t))
		t = ParentOf(t)
	}
}

func (l *Locator) dataInfo(name string) *DataTypeInfo {
	return cache.Get[*DataTypeInfo](l.cache, name, cache.RegionDataTypeInfos)
}

func (l *Locator) contractInfo(name string) *ContractTypeInfo {
	return cache.Get[*ContractTypeInfo](l.cache, name, cache.RegionContractTypeInfos)
}

// loadInfos builds every type info once.
func (l *Locator) loadInfos() {
	if l.loaded.Load() {
		return
	}

	l.infoMu.Lock()
	defer l.infoMu.Unlock()

	if l.loaded.Load() {
		return
	}

	l.loadKnownTypes()
	known := l.GetKnownTypes()

	l.regMu.Lock()
	manifests := append([]*Manifest(nil), l.manifests...)
	l.regMu.Unlock()

	for _, t := range known {
		if t == l.dataRoot || !l.IsDataType(t) {
			continue
		}
		base := ParentOf(t)

		l.addInfos(nil, t, base, "", "", true, false)
		for _, b := range l.bindingsOf(t) {
			l.addInfos(b.Type, t, base, "", "", true, b.Default)
		}
	}

	for _, m := range manifests {
		l.addManifest(m)
	}

	for _, t := range known {
		if t == l.contractRoot || !l.IsContractType(t) {
			continue
		}
		if ci := l.contractInfo(FullName(t)); ci != nil && ci.IsDataObjectInAssembly {
			continue
		}

		parent := ParentOf(t)
		dynamicBase := l.dynamicBaseType(t)
		dataType := l.dataObjectDataType(parent)

		var baseType reflect.Type
		if dynamicBase == "" {
			baseType = l.dataObjectBaseType(parent)
		}

		l.addInfos(t, dataType, baseType, DynamicDataName(FullName(t)), dynamicBase, false, true)
	}

	entries := l.cache.GetObjectsInRegion(cache.RegionDataTypeInfos)
	for _, e := range entries {
		info := e.Value.(*DataTypeInfo)
		if len(info.ContractTypeInfos) > 0 && len(info.PropertyInfos) == 0 {
			info.PropertyInfos = l.contractProperties(info.ContractTypeInfos[0].ContractType)
		}
	}

	for _, e := range entries {
		info := e.Value.(*DataTypeInfo)
		if info.DynamicType == "" {
			continue
		}
		children := []*DataTypeInfo{}
		l.collectDynamicChildren(info, entries, &children, map[*DataTypeInfo]bool{info: true})
		l.cache.Add(info.DynamicType, children, cache.RegionDynamicChildrenTypes)
	}

	l.loaded.Store(true)
}

func (l *Locator) bindingsOf(t reflect.Type) (bindings []Binding) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("reading contract bindings failed", "type", FullName(t), "error", r)
			bindings = nil
		}
	}()

	binder, ok := reflect.New(t).Interface().(ContractBinder)
	if !ok {
		return nil
	}
	for _, b := range binder.ContractBindings() {
		if b.Type == nil {
			continue
		}
		b.Type = structType(b.Type)
		bindings = append(bindings, b)
	}
	return bindings
}

func (l *Locator) addInfos(contractType, dataType, baseType reflect.Type, dynamicType, dynamicBaseType string, inAssembly, isDefault bool) *DataTypeInfo {
	key := dynamicType
	if key == "" {
		key = FullName(dataType)
	}

	info := l.dataInfo(key)
	if info == nil {
		info = &DataTypeInfo{
			DataType:        dataType,
			BaseType:        baseType,
			DynamicType:     dynamicType,
			DynamicBaseType: dynamicBaseType,
			IsInAssembly:    inAssembly,
			Plural:          Plural(key),
			Collection:      CollectionName(key),
		}
		l.cache.Add(key, info, cache.RegionDataTypeInfos)
	}

	if contractType == nil {
		return info
	}

	name := FullName(contractType)
	ci := l.contractInfo(name)
	if ci == nil {
		ci = &ContractTypeInfo{ContractType: contractType}
		l.cache.Add(name, ci, cache.RegionContractTypeInfos)
	}
	for _, existing := range ci.DataTypeInfos {
		if existing == info {
			return info
		}
	}

	// Defaults stay ahead of non-defaults, each group in registration order.
	if isDefault {
		at := l.defaults[ci]
		ci.DataTypeInfos = append(ci.DataTypeInfos, nil)
		copy(ci.DataTypeInfos[at+1:], ci.DataTypeInfos[at:])
		ci.DataTypeInfos[at] = info
		l.defaults[ci] = at + 1
	} else {
		ci.DataTypeInfos = append(ci.DataTypeInfos, info)
	}
	ci.IsDataObjectInAssembly = ci.IsDataObjectInAssembly || inAssembly
	info.ContractTypeInfos = append(info.ContractTypeInfos, ci)

	return info
}

// dynamicBaseType is non-empty only when the parent Contract of t has no
// compiled Data struct, in which case the parent is represented dynamically.
func (l *Locator) dynamicBaseType(t reflect.Type) string {
	if t == l.contractRoot {
		return ""
	}
	parent := ParentOf(t)
	if parent == nil || parent == l.contractRoot {
		return ""
	}

	if ci := l.contractInfo(FullName(parent)); ci == nil || !ci.IsDataObjectInAssembly {
		return DynamicDataName(FullName(parent))
	}
	return ""
}

func (l *Locator) dataObjectDataType(t reflect.Type) reflect.Type {
	for t != nil && t != l.contractRoot {
		if ci := l.contractInfo(FullName(t)); ci != nil && ci.IsDataObjectInAssembly {
			return ci.inAssembly().DataType
		}
		t = ParentOf(t)
	}
	return l.dataRoot
}

func (l *Locator) dataObjectBaseType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if ci := l.contractInfo(FullName(t)); ci != nil && ci.IsDataObjectInAssembly {
		return ci.inAssembly().DataType
	}
	return nil
}

func (l *Locator) contractProperties(ct reflect.Type) []*PropertyInfo {
	meta, err := Introspect(ct)
	if err != nil {
		return nil
	}

	props := make([]*PropertyInfo, 0, len(meta.Fields))
	for _, f := range meta.Fields {
		if f.Property == nil {
			continue
		}

		pi := &PropertyInfo{Name: f.Name}
		valueType := f.Property.ValueType()

		switch f.Property.PropertyKind() {
		case ReferenceProperty, ListProperty:
			pi.IsList = f.Property.PropertyKind() == ListProperty
			if ci := l.contractInfo(FullName(valueType)); ci != nil {
				pi.DataTypeInfo = ci.Default()
			}
			if pi.DataTypeInfo == nil {
				pi.PropertyType = valueType
			}
		default:
			pi.PropertyType = valueType
		}
		props = append(props, pi)
	}
	return props
}

func (l *Locator) collectDynamicChildren(base *DataTypeInfo, entries []cache.Entry, out *[]*DataTypeInfo, seen map[*DataTypeInfo]bool) {
	for _, e := range entries {
		info := e.Value.(*DataTypeInfo)
		if seen[info] || info.DynamicBaseType != base.DynamicType {
			continue
		}
		seen[info] = true
		*out = append(*out, info)
		l.collectDynamicChildren(info, entries, out, seen)
	}
}
