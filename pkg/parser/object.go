package parser

import (
	"encoding/json"
	"math"
	"strings"
)

// Object is a decoded JSON object. Every accessor tolerates an absent key, an explicit null
// and a value of the wrong JSON type by reporting it as absent.
type Object map[string]any

func (o Object) value(key string) (any, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// OptString returns the string at key.
func (o Object) OptString(key string) (string, bool) {
	v, ok := o.value(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// String returns the string at key or def.
func (o Object) String(key, def string) string {
	if s, ok := o.OptString(key); ok {
		return s
	}
	return def
}

// NonBlank returns the string at key when it is not blank.
func (o Object) NonBlank(key string) (string, bool) {
	s, ok := o.OptString(key)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// OptBool returns the boolean at key.
func (o Object) OptBool(key string) (bool, bool) {
	v, ok := o.value(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Bool returns the boolean at key or def.
func (o Object) Bool(key string, def bool) bool {
	if b, ok := o.OptBool(key); ok {
		return b
	}
	return def
}

// OptInt returns the integer at key. Numbers with a fractional part are not integers and are
// reported as absent rather than truncated.
func (o Object) OptInt(key string) (int, bool) {
	v, ok := o.value(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// Int returns the integer at key or def.
func (o Object) Int(key string, def int) int {
	if n, ok := o.OptInt(key); ok {
		return n
	}
	return def
}

// OptFloat returns the number at key.
func (o Object) OptFloat(key string) (float64, bool) {
	v, ok := o.value(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Float returns the number at key or def.
func (o Object) Float(key string, def float64) float64 {
	if f, ok := o.OptFloat(key); ok {
		return f
	}
	return def
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	v, ok := o.value(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		if obj, isObj := v.(Object); isObj {
			return obj, true
		}
		return nil, false
	}
	return Object(m), true
}

// Array returns the nested array at key.
func (o Object) Array(key string) ([]any, bool) {
	v, ok := o.value(key)
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

// Map returns the nested object at key as a plain map, for sections kept untyped.
func (o Object) Map(key string) (map[string]any, bool) {
	obj, ok := o.Object(key)
	if !ok {
		return nil, false
	}
	return map[string]any(obj), true
}

// IntMap returns the integer members of the nested object at key. Non-integer members are
// skipped.
func (o Object) IntMap(key string) map[string]int {
	obj, ok := o.Object(key)
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(obj))
	for k, v := range obj {
		if v == nil {
			continue
		}
		if n, isInt := toInt(v); isInt {
			out[k] = n
		}
	}
	return out
}

// FloatMap returns the numeric members of the nested object at key.
func (o Object) FloatMap(key string) map[string]float64 {
	obj, ok := o.Object(key)
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(obj))
	for k, v := range obj {
		if v == nil {
			continue
		}
		if f, isNum := toFloat(v); isNum {
			out[k] = f
		}
	}
	return out
}

// Ints returns the integer elements of the array at key.
func (o Object) Ints(key string) []int {
	arr, _ := o.Array(key)
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		if v == nil {
			continue
		}
		if n, ok := toInt(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// Objects returns the object elements of the array at key.
func (o Object) Objects(key string) []Object {
	arr, _ := o.Array(key)
	return objects(arr)
}

func objects(arr []any) []Object {
	out := make([]Object, 0, len(arr))
	for _, v := range arr {
		switch m := v.(type) {
		case map[string]any:
			out = append(out, Object(m))
		case Object:
			out = append(out, m)
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(n)
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
