package core

import (
	"reflect"
)

// ResolveFunc looks up an existing Data object by type name and ID, for
// example in an identity map. It returns nil when the object is unknown.
type ResolveFunc func(typeName, id string) Data

// Merger merges Data object graphs.
type Merger struct {
	engine *Engine
}

// MergeDataObject merges merging into base. Only properties named in paths
// are merged at the top level; a nil paths merges everything. merging is
// never modified. Saved references are resolved through resolve, or
// replaced by stubs that are proxied when proxyReferences is set.
func (m *Merger) MergeDataObject(base, merging Data, paths []string, proxyReferences bool, resolve ResolveFunc) {
	if isNil(base) || isNil(merging) {
		return
	}
	x := m.NewExecutor(paths, proxyReferences, resolve)
	x.Execute(base, merging)
}

// NewExecutor returns a MergeExecutor for one merge.
func (m *Merger) NewExecutor(paths []string, proxyReferences bool, resolve ResolveFunc) *MergeExecutor {
	x := &MergeExecutor{
		engine:          m.engine,
		proxyReferences: proxyReferences,
		resolve:         resolve,
		converted:       make(map[*DataObject]Data),
	}
	if paths != nil {
		x.paths = make(map[string]bool, len(paths))
		for _, p := range paths {
			x.paths[p] = true
		}
	}
	return x
}

// MergeExecutor holds the state of a single merge. Every source object is
// copied at most once per executor; a repeated or cyclic reference gets
// the same destination.
type MergeExecutor struct {
	engine          *Engine
	paths           map[string]bool
	proxyReferences bool
	resolve         ResolveFunc

	converted map[*DataObject]Data
}

// Execute merges merging into base.
func (x *MergeExecutor) Execute(base, merging Data) {
	x.converted[BaseOf(merging)] = base
	x.mergeObject(base, merging, true)
}

func (x *MergeExecutor) mergeObject(base, merging Data, checkPaths bool) {
	bb, mb := BaseOf(base), BaseOf(merging)

	if mb.DynamicType() != "" {
		bb.SetDynamicType(mb.DynamicType())
	}

	for _, e := range mb.DynamicProperties() {
		x.mergeProperty(bb, mb, e.Key, checkPaths)
	}

	x.mergeProperty(bb, mb, IDProperty, checkPaths)
	if meta := mb.meta(); meta != nil {
		for _, f := range meta.Fields {
			x.mergeProperty(bb, mb, f.Name, checkPaths)
		}
	}
}

func (x *MergeExecutor) mergeProperty(base, merging *DataObject, name string, checkPaths bool) {
	if checkPaths && x.paths != nil && !x.paths[name] {
		return
	}
	if merging.GetProxyState(name) {
		return
	}

	switch v := merging.GetProperty(name).(type) {
	case nil:
		base.SetProperty(name, nil)
	case *DataList:
		if v == nil {
			base.SetProperty(name, nil)
			return
		}
		base.SetProperty(name, x.copyList(v))
	case Data:
		if isNil(v) {
			base.SetProperty(name, nil)
			return
		}
		base.SetProperty(name, x.copyObject(v))
	default:
		if name == IDProperty && v == "" && base.ID() != "" {
			return
		}
		base.SetProperty(name, v)
	}
}

func (x *MergeExecutor) copyList(src *DataList) *DataList {
	out := x.engine.builder.GetDataListLike(src)
	out.SetQuery(src.Query())
	out.SetObjectPath(src.ObjectPath())
	out.Include(src.Includes()...)

	// Nil elements keep their position.
	for _, item := range src.Snapshot() {
		if isNil(item) {
			out.Add(nil)
			continue
		}
		out.Add(x.copyObject(item))
	}
	return out
}

// copyObject returns the destination for a referenced source object: the
// resolved or stubbed object for a saved reference, else a deep copy.
func (x *MergeExecutor) copyObject(src Data) Data {
	if ref, ok := src.(ReferenceObject); ok && ref.ID() != "" {
		return x.referenced(src)
	}

	sb := BaseOf(src)
	if dst, ok := x.converted[sb]; ok {
		return dst
	}

	dst, err := x.engine.builder.GetDataObject(reflect.TypeOf(src), false)
	if err != nil {
		x.engine.logger.Warn("merge: allocating copy failed",
			"type", sb.GetDataType(),
			"error", err,
		)
		return nil
	}
	x.converted[sb] = dst
	x.mergeObject(dst, src, false)
	return dst
}

// referenced resolves a saved reference, falling back to a stub carrying
// only its identity. Stubs are shared within the merge.
func (x *MergeExecutor) referenced(src Data) Data {
	sb := BaseOf(src)
	if dst, ok := x.converted[sb]; ok {
		return dst
	}

	var dst Data
	if x.resolve != nil {
		dst = x.resolve(sb.GetDataType(), src.ID())
	}
	if isNil(dst) {
		stub, err := x.engine.builder.GetDataObject(reflect.TypeOf(src), x.proxyReferences)
		if err != nil {
			x.engine.logger.Warn("merge: allocating reference failed",
				"type", sb.GetDataType(),
				"error", err,
			)
			return nil
		}
		stub.SetProperty(IDProperty, src.ID())
		stub.SetDynamicType(src.DynamicType())
		dst = stub
	}

	x.converted[sb] = dst
	return dst
}
