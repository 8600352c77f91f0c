package localstore

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// isObject reports whether v is stored as JSON rather than by its string
// form: a non-nil map, slice, array or struct, possibly behind pointers.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(json.Number); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	case reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}

// stringify renders a scalar the way it is stored by Write and the way
// non-string keys are coerced: numbers in shortest decimal form, nil as "null".
func stringify(v any) string {
	if v == nil {
		return "null"
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); (k == reflect.Pointer || k == reflect.Map || k == reflect.Slice) && rv.IsNil() {
		return "null"
	}

	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return stringify(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatNumber(rv.Float(), 32)
	case reflect.Float64:
		return formatNumber(rv.Float(), 64)
	}
	return fmt.Sprint(v)
}

// formatNumber switches to exponent notation below 1e-6 and from 1e21 up,
// with no zero padding in the exponent.
func formatNumber(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, bits)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// encode produces the raw string Write stores for value.
func encode(value any) (string, error) {
	if !isObject(value) {
		return stringify(value), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", &SerializationError{Err: err}
	}
	return string(data), nil
}

// decode parses raw as JSON, falling back to raw itself when it is not
// valid JSON.
func decode(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
