package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string

type celsius float64

func TestConvertValue(t *testing.T) {
	moonLanding := time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		dest  reflect.Type
		want  any
	}{
		{"nil gives zero", nil, reflect.TypeOf(0), 0},
		{"same type", "x", reflect.TypeOf(""), "x"},
		{"int to string", 42, reflect.TypeOf(""), "42"},
		{"float to string", 1.5, reflect.TypeOf(""), "1.5"},
		{"bool to string", true, reflect.TypeOf(""), "true"},
		{"bytes to string", []byte("abc"), reflect.TypeOf(""), "abc"},
		{"time to string", moonLanding, reflect.TypeOf(""), "1969-07-20T20:17:00Z"},
		{"string to named string", "open", reflect.TypeOf(status("")), status("open")},
		{"string to int", " 12 ", reflect.TypeOf(0), 12},
		{"empty string to int", "", reflect.TypeOf(int64(0)), int64(0)},
		{"float to int", 3.0, reflect.TypeOf(int32(0)), int32(3)},
		{"bool to int", true, reflect.TypeOf(0), 1},
		{"int to uint", 7, reflect.TypeOf(uint8(0)), uint8(7)},
		{"int to float", 2, reflect.TypeOf(0.0), 2.0},
		{"float to named float", 21.5, reflect.TypeOf(celsius(0)), celsius(21.5)},
		{"string to bool", "true", reflect.TypeOf(false), true},
		{"int to bool", 0, reflect.TypeOf(false), false},
		{"string to duration", "90s", reflect.TypeOf(time.Duration(0)), 90 * time.Second},
		{"rfc3339 to time", "1969-07-20T20:17:00Z", reflect.TypeOf(time.Time{}), moonLanding},
		{"date to time", "1969-07-20", reflect.TypeOf(time.Time{}), time.Date(1969, 7, 20, 0, 0, 0, 0, time.UTC)},
		{"unix to time", int64(0), reflect.TypeOf(time.Time{}), time.Unix(0, 0).UTC()},
		{"anything to interface", 5, reflect.TypeOf((*any)(nil)).Elem(), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertValue(tt.value, tt.dest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValue_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value any
		dest  reflect.Type
	}{
		{"int overflow", 300, reflect.TypeOf(int8(0))},
		{"negative to uint", -1, reflect.TypeOf(uint(0))},
		{"fraction to int", 1.5, reflect.TypeOf(0)},
		{"bad int string", "twelve", reflect.TypeOf(0)},
		{"bad bool string", "maybe", reflect.TypeOf(false)},
		{"bad time string", "yesterday", reflect.TypeOf(time.Time{})},
		{"slice to int", []int{1}, reflect.TypeOf(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertValue(tt.value, tt.dest)
			assert.Error(t, err)
		})
	}

	_, err := ConvertValue(struct{}{}, reflect.TypeOf(time.Time{}))
	assert.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestConvert(t *testing.T) {
	s, ok := Convert[string](12)
	assert.True(t, ok)
	assert.Equal(t, "12", s)

	n, ok := Convert[int]("x")
	assert.False(t, ok)
	assert.Equal(t, 0, n)

	_, ok = Convert[string](nil)
	assert.False(t, ok)
}

func TestGetValueConverterIsCached(t *testing.T) {
	dest, src := reflect.TypeOf(uint16(0)), reflect.TypeOf("")
	_, err := GetValueConverter(dest, src)
	require.NoError(t, err)

	_, ok := converterCache.Load(converterKey(dest, src))
	assert.True(t, ok)

	_, err = GetValueConverter(reflect.TypeOf(0), reflect.TypeOf([]int{}))
	require.ErrorIs(t, err, ErrUnsupportedConversion)
	_, ok = converterCache.Load(converterKey(reflect.TypeOf(0), reflect.TypeOf([]int{})))
	assert.False(t, ok, "failed builds are not cached")
}
