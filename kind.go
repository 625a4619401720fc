package keycase

import (
	"encoding/json"
	"math"
	"reflect"
	"time"
)

// ValueKind is the shape of a node in a mapped tree. Every node is
// classified exactly once and the engine dispatches on the result.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindNull
	KindPrimitive
	KindDate
	KindSequence
	KindObject

	// KindTotal is the number of kinds defined
	KindTotal = int(iota)
)

var kindNames = [KindTotal]string{"unknown", "null", "primitive", "date", "sequence", "object"}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= KindTotal {
		return "invalid"
	}
	return kindNames[k]
}

// Classify returns the shape of v.
//
//   - nil, nil pointers, nil maps and nil slices are KindNull
//   - time.Time (or a pointer to one) is KindDate
//   - bool, numbers, strings, []byte and any type implementing
//     json.Marshaler or encoding.TextMarshaler (uuid.UUID, net.IP, ...)
//     are KindPrimitive
//   - slices and arrays are KindSequence
//   - Object, *Object and maps keyed by a string kind are KindObject
//   - everything else (structs, channels, funcs, complex numbers) is
//     KindUnknown
func Classify(v any) ValueKind {
	// Fast path for what a decoded JSON document contains.
	switch t := v.(type) {
	case nil:
		return KindNull
	case *Object:
		if t == nil {
			return KindNull
		}
		return KindObject
	case map[string]any:
		if t == nil {
			return KindNull
		}
		return KindObject
	case []any:
		if t == nil {
			return KindNull
		}
		return KindSequence
	case string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return KindPrimitive
	case time.Time:
		return KindDate
	}

	return classifyValue(reflect.ValueOf(v))
}

func classifyValue(rv reflect.Value) ValueKind {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type() == objectPtrType {
			return KindObject
		}
		rv = rv.Elem()
	}

	typ := rv.Type()
	if typ == timeType || typ.ConvertibleTo(timeType) && typ.Kind() == reflect.Struct {
		return KindDate
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
	}

	if typ == objectPtrType.Elem() {
		return KindObject
	}
	if implementsMarshaler(typ) {
		return KindPrimitive
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindPrimitive
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return KindPrimitive
		}
		return KindSequence
	case reflect.Array:
		return KindSequence
	case reflect.Map:
		if typ.Key().Kind() == reflect.String {
			return KindObject
		}
		return KindUnknown
	default:
		return KindUnknown
	}
}

func implementsMarshaler(typ reflect.Type) bool {
	if typ.Implements(jsonMarshalerType) || typ.Implements(textMarshalerType) {
		return true
	}
	ptr := reflect.PointerTo(typ)
	return ptr.Implements(jsonMarshalerType) || ptr.Implements(textMarshalerType)
}

// isFalsy reports whether v counts as "no value produced" while a node is
// being classified: nil, false, numeric zero, NaN and the empty string.
// Containers are never falsy, even when empty.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0 || math.IsNaN(t)
	case int:
		return t == 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	default:
		return false
	}
}

// toTime returns the time held by a KindDate value.
func toTime(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	return rv.Convert(timeType).Interface().(time.Time)
}
