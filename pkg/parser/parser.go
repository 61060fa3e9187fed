// Package parser turns Virtusize API response bodies into typed domain records.
//
// A Parser reads one JSON object and reports ok=false when the object carries no data, for
// example an empty optional section. Decoders wrap parsers to handle whole response bodies
// and turn malformed payloads into errors.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformed is returned when a body is not valid JSON.
	ErrMalformed = errors.New("malformed json")
	// ErrNotObject is returned when an object body holds another JSON type.
	ErrNotObject = errors.New("payload is not a json object")
	// ErrNotArray is returned when an array body holds another JSON type.
	ErrNotArray = errors.New("payload is not a json array")
	// ErrNoData is returned when a required value parsed to no data.
	ErrNoData = errors.New("payload carries no data")
)

// Parser parses one JSON object.
type Parser[T any] interface {
	Parse(obj Object) (T, bool)
}

// Func adapts a function to Parser.
type Func[T any] func(obj Object) (T, bool)

// Parse calls f.
func (f Func[T]) Parse(obj Object) (T, bool) { return f(obj) }

// Decoder turns a whole response body into a value.
type Decoder[T any] func(body []byte) (T, error)

// DecodeObject decodes a body that must be a JSON object.
func DecodeObject(body []byte) (Object, error) {
	v, err := decode(body)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, jsonType(v))
	}
	return Object(m), nil
}

// DecodeArray decodes a body that must be a JSON array.
func DecodeArray(body []byte) ([]any, error) {
	v, err := decode(body)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotArray, jsonType(v))
	}
	return a, nil
}

func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformed)
	}
	return v, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// One decodes an object body that must carry data.
func One[T any](p Parser[T]) Decoder[T] {
	return func(body []byte) (T, error) {
		var zero T
		obj, err := DecodeObject(body)
		if err != nil {
			return zero, err
		}
		v, ok := p.Parse(obj)
		if !ok {
			return zero, ErrNoData
		}
		return v, nil
	}
}

// Optional decodes an object body and yields nil when it carries no data.
func Optional[T any](p Parser[T]) Decoder[*T] {
	return func(body []byte) (*T, error) {
		obj, err := DecodeObject(body)
		if err != nil {
			return nil, err
		}
		v, ok := p.Parse(obj)
		if !ok {
			return nil, nil
		}
		return &v, nil
	}
}

// List decodes an array body. Elements that are not objects or that carry no data are dropped.
func List[T any](p Parser[T]) Decoder[[]T] {
	return func(body []byte) ([]T, error) {
		arr, err := DecodeArray(body)
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(arr))
		for _, obj := range objects(arr) {
			if v, ok := p.Parse(obj); ok {
				out = append(out, v)
			}
		}
		return out, nil
	}
}

// Discard accepts any body. It is used for endpoints whose response is not consumed.
func Discard() Decoder[struct{}] {
	return func([]byte) (struct{}, error) { return struct{}{}, nil }
}

// nested parses the object at key with p.
func nested[T any](obj Object, key string, p Parser[T]) (*T, bool) {
	child, ok := obj.Object(key)
	if !ok {
		return nil, false
	}
	v, ok := p.Parse(child)
	if !ok {
		return nil, false
	}
	return &v, true
}
