package core

import (
	"reflect"
	"sync"

	"github.com/Konsultn-Engineering/metaobject/cache"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

// SurrogateObject is a detached snapshot of an object. Used on its own it
// is a property bag keyed by path; embedded in a struct, the struct's
// exported fields hold the values named by their path tags.
type SurrogateObject struct {
	self Surrogate
	id   string

	once       sync.Once
	properties *cache.DataRegion
}

// NewSurrogate returns an empty dynamic surrogate.
func NewSurrogate() *SurrogateObject {
	s := &SurrogateObject{}
	s.init(s)
	return s
}

func (s *SurrogateObject) init(self Surrogate) {
	s.self = self
}

func (s *SurrogateObject) surrogateObject() *SurrogateObject { return s }

func (s *SurrogateObject) region() *cache.DataRegion {
	s.once.Do(func() {
		s.properties = cache.NewDataCache().Region(cache.RegionProperties)
	})
	return s.properties
}

func (s *SurrogateObject) ID() string { return s.id }

func (s *SurrogateObject) SetID(id string) { s.id = id }

// GetProperty returns a struct field of a typed surrogate, else the stored
// value, else nil.
func (s *SurrogateObject) GetProperty(name string) any {
	if name == IDProperty {
		return s.id
	}
	if s.typed() {
		if v, ok := (&schema.Reflector{}).FieldValue(s.self, name); ok {
			return v
		}
	}
	return s.region().Get(name)
}

func (s *SurrogateObject) SetProperty(name string, value any) {
	if name == IDProperty {
		s.id, _ = schema.Convert[string](value)
		return
	}
	if s.typed() {
		if err := (&schema.Reflector{}).SetFieldValue(s.self, name, value); err == nil {
			return
		}
	}
	s.region().Add(name, value)
}

// Properties returns a snapshot of the values not held in struct fields.
func (s *SurrogateObject) Properties() []cache.Entry {
	return s.region().Objects()
}

func (s *SurrogateObject) typed() bool {
	return s.self != nil && reflect.TypeOf(s.self) != surrogateObjectPtrType
}
