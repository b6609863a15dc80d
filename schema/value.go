package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ValueConverter converts a value to a fixed destination type.
type ValueConverter func(value any) (any, error)

// Pre-compiled converter cache keyed by destination and source type
var converterCache = sync.Map{} // map[string]ValueConverter

var timeType = reflect.TypeOf(time.Time{})

func converterKey(destType, sourceType reflect.Type) string {
	return destType.String() + "<-" + sourceType.String()
}

// GetValueConverter returns a cached converter from sourceType to destType.
func GetValueConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	key := converterKey(destType, sourceType)

	// Fast path: check cache first
	if cached, ok := converterCache.Load(key); ok {
		return cached.(ValueConverter), nil
	}

	// Slow path: build converter once and cache it
	converter, err := buildConverter(destType, sourceType)
	if err != nil {
		return nil, err
	}
	converterCache.Store(key, converter)
	return converter, nil
}

// ConvertValue converts value to destType. A nil value yields the zero value.
func ConvertValue(value any, destType reflect.Type) (any, error) {
	if value == nil {
		return reflect.Zero(destType).Interface(), nil
	}
	converter, err := GetValueConverter(destType, reflect.TypeOf(value))
	if err != nil {
		return nil, err
	}
	return converter(value)
}

// Convert converts value to T and reports whether it succeeded. Failures
// return the zero T.
func Convert[T any](value any) (T, bool) {
	var zero T
	if value == nil {
		return zero, false
	}
	if v, ok := value.(T); ok {
		return v, true
	}

	destType := reflect.TypeOf((*T)(nil)).Elem()
	out, err := ConvertValue(value, destType)
	if err != nil {
		return zero, false
	}
	v, ok := out.(T)
	return v, ok
}

func buildConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	// Direct assignment (same types or interface targets)
	if sourceType == destType || sourceType.AssignableTo(destType) {
		return func(value any) (any, error) { return value, nil }, nil
	}

	switch destType.Kind() {
	case reflect.String:
		return buildStringConverter(destType, sourceType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if destType != reflect.TypeOf(time.Duration(0)) || sourceType.Kind() != reflect.String {
			return buildIntConverter(destType, sourceType)
		}
		return func(value any) (any, error) {
			d, err := time.ParseDuration(reflect.ValueOf(value).String())
			if err != nil {
				return nil, err
			}
			return d, nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return buildUintConverter(destType, sourceType)
	case reflect.Float32, reflect.Float64:
		return buildFloatConverter(destType, sourceType)
	case reflect.Bool:
		return buildBoolConverter(destType, sourceType)
	case reflect.Struct:
		if destType == timeType {
			return buildTimeConverter(sourceType)
		}
	}

	if sourceType.ConvertibleTo(destType) {
		return func(value any) (any, error) {
			return reflect.ValueOf(value).Convert(destType).Interface(), nil
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, sourceType, destType)
}

// ===================
// STRING CONVERTERS
// ===================
func buildStringConverter(destType, sourceType reflect.Type) ValueConverter {
	wrap := func(s string) any { return reflect.ValueOf(s).Convert(destType).Interface() }

	if sourceType == timeType {
		return func(value any) (any, error) {
			return wrap(value.(time.Time).Format(time.RFC3339Nano)), nil
		}
	}
	if sourceType.Implements(reflect.TypeOf((*fmt.Stringer)(nil)).Elem()) {
		return func(value any) (any, error) {
			return wrap(value.(fmt.Stringer).String()), nil
		}
	}

	switch sourceType.Kind() {
	case reflect.String:
		return func(value any) (any, error) {
			return wrap(reflect.ValueOf(value).String()), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			return wrap(strconv.FormatInt(reflect.ValueOf(value).Int(), 10)), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value any) (any, error) {
			return wrap(strconv.FormatUint(reflect.ValueOf(value).Uint(), 10)), nil
		}
	case reflect.Float32, reflect.Float64:
		bits := sourceType.Bits()
		return func(value any) (any, error) {
			return wrap(strconv.FormatFloat(reflect.ValueOf(value).Float(), 'f', -1, bits)), nil
		}
	case reflect.Bool:
		return func(value any) (any, error) {
			return wrap(strconv.FormatBool(reflect.ValueOf(value).Bool())), nil
		}
	case reflect.Slice:
		if sourceType.Elem().Kind() == reflect.Uint8 { // []byte
			return func(value any) (any, error) {
				return wrap(string(reflect.ValueOf(value).Bytes())), nil
			}
		}
	}

	return func(value any) (any, error) {
		return wrap(fmt.Sprintf("%v", value)), nil
	}
}

// ===================
// INTEGER CONVERTERS
// ===================
func buildIntConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	bits := destType.Bits()
	out := func(i int64) (any, error) {
		v := reflect.New(destType).Elem()
		if v.OverflowInt(i) {
			return nil, fmt.Errorf("value %d overflows %s", i, destType)
		}
		v.SetInt(i)
		return v.Interface(), nil
	}

	switch sourceType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Int())
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value any) (any, error) {
			u := reflect.ValueOf(value).Uint()
			if u > 1<<63-1 {
				return nil, fmt.Errorf("value %d overflows %s", u, destType)
			}
			return out(int64(u))
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(value any) (any, error) {
			f := reflect.ValueOf(value).Float()
			if f != float64(int64(f)) {
				return nil, fmt.Errorf("cannot convert %f to %s: precision loss", f, destType)
			}
			return out(int64(f))
		}, nil
	case reflect.String:
		return func(value any) (any, error) {
			s := strings.TrimSpace(reflect.ValueOf(value).String())
			if s == "" {
				return out(0)
			}
			i, err := strconv.ParseInt(s, 10, bits)
			if err != nil {
				return nil, err
			}
			return out(i)
		}, nil
	case reflect.Bool:
		return func(value any) (any, error) {
			if reflect.ValueOf(value).Bool() {
				return out(1)
			}
			return out(0)
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, sourceType, destType)
}

func buildUintConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	bits := destType.Bits()
	out := func(u uint64) (any, error) {
		v := reflect.New(destType).Elem()
		if v.OverflowUint(u) {
			return nil, fmt.Errorf("value %d overflows %s", u, destType)
		}
		v.SetUint(u)
		return v.Interface(), nil
	}

	switch sourceType.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Uint())
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			i := reflect.ValueOf(value).Int()
			if i < 0 {
				return nil, fmt.Errorf("negative value %d cannot convert to %s", i, destType)
			}
			return out(uint64(i))
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(value any) (any, error) {
			f := reflect.ValueOf(value).Float()
			if f < 0 || f != float64(uint64(f)) {
				return nil, fmt.Errorf("cannot convert %f to %s", f, destType)
			}
			return out(uint64(f))
		}, nil
	case reflect.String:
		return func(value any) (any, error) {
			s := strings.TrimSpace(reflect.ValueOf(value).String())
			if s == "" {
				return out(0)
			}
			u, err := strconv.ParseUint(s, 10, bits)
			if err != nil {
				return nil, err
			}
			return out(u)
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, sourceType, destType)
}

// ===================
// FLOAT CONVERTERS
// ===================
func buildFloatConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	out := func(f float64) (any, error) {
		v := reflect.New(destType).Elem()
		v.SetFloat(f)
		return v.Interface(), nil
	}

	switch sourceType.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Float())
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			return out(float64(reflect.ValueOf(value).Int()))
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value any) (any, error) {
			return out(float64(reflect.ValueOf(value).Uint()))
		}, nil
	case reflect.String:
		return func(value any) (any, error) {
			s := strings.TrimSpace(reflect.ValueOf(value).String())
			if s == "" {
				return out(0)
			}
			f, err := strconv.ParseFloat(s, destType.Bits())
			if err != nil {
				return nil, err
			}
			return out(f)
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, sourceType, destType)
}

// ===================
// BOOL CONVERTERS
// ===================
func buildBoolConverter(destType, sourceType reflect.Type) (ValueConverter, error) {
	out := func(b bool) (any, error) {
		return reflect.ValueOf(b).Convert(destType).Interface(), nil
	}

	switch sourceType.Kind() {
	case reflect.Bool:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Bool())
		}, nil
	case reflect.String:
		return func(value any) (any, error) {
			s := strings.TrimSpace(reflect.ValueOf(value).String())
			if s == "" {
				return out(false)
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, err
			}
			return out(b)
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Int() != 0)
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(value any) (any, error) {
			return out(reflect.ValueOf(value).Uint() != 0)
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, sourceType, destType)
}

// ===================
// TIME CONVERTERS
// ===================
func buildTimeConverter(sourceType reflect.Type) (ValueConverter, error) {
	switch sourceType.Kind() {
	case reflect.String:
		return func(value any) (any, error) {
			s := strings.TrimSpace(reflect.ValueOf(value).String())
			if s == "" {
				return time.Time{}, nil
			}
			for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
				if t, err := time.Parse(layout, s); err == nil {
					return t, nil
				}
			}
			return nil, fmt.Errorf("unable to parse time %q", s)
		}, nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		return func(value any) (any, error) {
			return time.Unix(reflect.ValueOf(value).Int(), 0).UTC(), nil
		}, nil
	}

	return nil, fmt.Errorf("%w: %s to time.Time", ErrUnsupportedConversion, sourceType)
}
