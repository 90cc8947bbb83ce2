package serializer

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// ErrMethodNotFound is returned by Deserialize for an unregistered method.
var ErrMethodNotFound = errors.New("serializer: method not found")

// Serializer converts between native Go values and wire values.
type Serializer interface {
	// Serialize prepares data for the request body. Maps and slices are
	// walked recursively.
	Serialize(data any) (any, error)
	// Deserialize converts a response value through a named method such
	// as "to_datetime".
	Deserialize(method string, value any, kwargs map[string]any) (any, error)
	// Methods lists the deserialize methods, sorted.
	Methods() []string
}

// EncodeFunc turns a value of a registered type into a wire value.
type EncodeFunc func(v any) (any, error)

// DecodeFunc turns a wire value into a native value.
type DecodeFunc func(v any, kwargs map[string]any) (any, error)

// Base is a registry-backed Serializer. Encoders are keyed by TypeName,
// decoders by method name.
type Base struct {
	encoders map[string]EncodeFunc
	decoders map[string]DecodeFunc
}

// NewBase returns an empty serializer that leaves every value unchanged.
func NewBase() *Base {
	return &Base{
		encoders: make(map[string]EncodeFunc),
		decoders: make(map[string]DecodeFunc),
	}
}

// RegisterEncoder sets the encoder for values whose TypeName is typeName.
func (b *Base) RegisterEncoder(typeName string, fn EncodeFunc) *Base {
	b.encoders[strings.ToLower(typeName)] = fn
	return b
}

// RegisterDecoder sets the decoder for method.
func (b *Base) RegisterDecoder(method string, fn DecodeFunc) *Base {
	b.decoders[method] = fn
	return b
}

// Serialize implements Serializer.
func (b *Base) Serialize(data any) (any, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			s, err := b.Serialize(item)
			if err != nil {
				return nil, fmt.Errorf("serialize %q: %w", k, err)
			}
			out[k] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			s, err := b.Serialize(item)
			if err != nil {
				return nil, fmt.Errorf("serialize [%d]: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		data = rv.Elem().Interface()
	}
	if fn, ok := b.encoders[TypeName(data)]; ok {
		return fn(data)
	}
	return data, nil
}

// Deserialize implements Serializer.
func (b *Base) Deserialize(method string, value any, kwargs map[string]any) (any, error) {
	fn, ok := b.decoders[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
	return fn(value, kwargs)
}

// Methods implements Serializer.
func (b *Base) Methods() []string {
	return slices.Sorted(maps.Keys(b.decoders))
}

// TypeName returns the lower-cased name of v's type with pointers
// dereferenced: "time" for time.Time, "decimal" for decimal.Decimal.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}
