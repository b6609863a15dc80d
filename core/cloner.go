package core

import "reflect"

// Cloner copies Data objects.
type Cloner struct {
	engine *Engine
}

// CloneDataObject allocates a non-proxied object of the same type as obj
// and merges obj into it. A nil paths copies every property.
func (c *Cloner) CloneDataObject(obj Data, paths []string, proxyReferences bool, resolve ResolveFunc) Data {
	if isNil(obj) {
		return nil
	}

	clone, err := c.engine.builder.GetDataObject(reflect.TypeOf(obj), false)
	if err != nil {
		c.engine.logger.Warn("clone: allocating object failed",
			"type", obj.GetDataType(),
			"error", err,
		)
		return nil
	}
	clone.SetDynamicType(obj.DynamicType())

	c.engine.merger.MergeDataObject(clone, obj, paths, proxyReferences, resolve)
	return clone
}

// Clone copies obj and returns it typed as T.
func Clone[T Data](e *Engine, obj T, paths ...string) T {
	var zero T
	if len(paths) == 0 {
		paths = nil
	}
	out, ok := e.cloner.CloneDataObject(obj, paths, true, nil).(T)
	if !ok {
		return zero
	}
	return out
}
