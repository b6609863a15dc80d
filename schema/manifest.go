package schema

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest declares dynamic Data types: entity types known by name only,
// backed at runtime by the nearest compiled Data struct.
//
//	types:
//	  - name: acme.InvoiceData
//	    dataType: acme.EntityData
//	    baseType: acme.EntityData
//	    properties:
//	      - {name: Number, type: string}
//	      - {name: Lines, ref: acme.InvoiceLineData, list: true}
type Manifest struct {
	Types []ManifestType `yaml:"types"`
}

// ManifestType is one dynamic Data type.
type ManifestType struct {
	Name        string             `yaml:"name"`
	DataType    string             `yaml:"dataType,omitempty"`
	BaseType    string             `yaml:"baseType,omitempty"`
	DynamicBase string             `yaml:"dynamicBase,omitempty"`
	Properties  []ManifestProperty `yaml:"properties,omitempty"`
}

// ManifestProperty is one property of a dynamic type. Exactly one of Type
// and Ref is set.
type ManifestProperty struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
	List bool   `yaml:"list,omitempty"`
}

var manifestScalars = map[string]reflect.Type{
	"string":   reflect.TypeOf(""),
	"bool":     reflect.TypeOf(false),
	"int":      reflect.TypeOf(0),
	"int32":    reflect.TypeOf(int32(0)),
	"int64":    reflect.TypeOf(int64(0)),
	"uint64":   reflect.TypeOf(uint64(0)),
	"float32":  reflect.TypeOf(float32(0)),
	"float64":  reflect.TypeOf(float64(0)),
	"time":     reflect.TypeOf(time.Time{}),
	"duration": reflect.TypeOf(time.Duration(0)),
	"bytes":    reflect.TypeOf([]byte(nil)),
	"any":      reflect.TypeOf((*any)(nil)).Elem(),
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// Validate checks names and property declarations. Type references are
// resolved later against the registered types.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", ErrInvalidManifest)
	}

	seen := make(map[string]bool, len(m.Types))
	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("%w: type %d has no name", ErrInvalidManifest, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate type %s", ErrInvalidManifest, t.Name)
		}
		seen[t.Name] = true

		for _, p := range t.Properties {
			switch {
			case p.Name == "":
				return fmt.Errorf("%w: %s has a property without name", ErrInvalidManifest, t.Name)
			case p.Type != "" && p.Ref != "":
				return fmt.Errorf("%w: %s.%s sets both type and ref", ErrInvalidManifest, t.Name, p.Name)
			case p.Ref == "" && manifestScalars[scalarName(p.Type)] == nil:
				return fmt.Errorf("%w: %s.%s has unknown type %q", ErrInvalidManifest, t.Name, p.Name, p.Type)
			}
		}
	}
	return nil
}

func scalarName(name string) string {
	if name == "" {
		return "any"
	}
	return name
}

// addManifest registers the dynamic types of m. Entries naming unknown
// compiled types are logged and skipped.
func (l *Locator) addManifest(m *Manifest) {
	added := make(map[*DataTypeInfo]ManifestType, len(m.Types))

	for _, t := range m.Types {
		dataType := l.dataRoot
		if t.DataType != "" {
			if dataType = l.GetType(t.DataType); dataType == nil || !l.IsDataType(dataType) {
				l.logger.Warn("manifest type skipped", "type", t.Name, "error", fmt.Errorf("%w: %s", ErrUnknownType, t.DataType))
				continue
			}
		}

		var baseType reflect.Type
		if t.BaseType != "" {
			if baseType = l.GetType(t.BaseType); baseType == nil {
				l.logger.Warn("manifest type skipped", "type", t.Name, "error", fmt.Errorf("%w: %s", ErrUnknownType, t.BaseType))
				continue
			}
		} else if t.DynamicBase == "" && dataType != l.dataRoot {
			baseType = dataType
		}

		info := l.addInfos(nil, dataType, baseType, t.Name, t.DynamicBase, false, false)
		added[info] = t
	}

	// Second pass so refs may point at types declared later.
	for info, t := range added {
		for _, p := range t.Properties {
			pi := &PropertyInfo{Name: p.Name, IsList: p.List}
			if p.Ref != "" {
				if pi.DataTypeInfo = l.dataInfo(p.Ref); pi.DataTypeInfo == nil {
					l.logger.Warn("manifest property has unknown ref", "type", t.Name, "property", p.Name, "ref", p.Ref)
					continue
				}
			} else {
				pi.PropertyType = manifestScalars[scalarName(p.Type)]
			}
			info.PropertyInfos = append(info.PropertyInfos, pi)
		}
	}
}
