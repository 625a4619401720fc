package keycase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidJSON = errors.New("invalid JSON document")
	ErrNotAnObject = errors.New("JSON value is not an object")
)

// Object is a string keyed map that remembers insertion order. Mapped trees
// use it for every object node so output keys follow input keys.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object with room for n keys.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores value under key. A key that is already present keeps its
// original position and has its value replaced.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, value any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// ToMap converts o, and every nested Object, into plain map[string]any.
// Order is lost.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = plain(o.values[k])
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

///////////////////////////////////////////////////////////////////////////////
// Encoding
///////////////////////////////////////////////////////////////////////////////

// MarshalJSON writes the entries in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of o with the object in data, keeping
// document order. Nested objects decode to *Object, arrays to []any and
// numbers to json.Number holding the literal text.
func (o *Object) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return ErrNotAnObject
	}
	*o = *decodeObject(result)
	return nil
}

// MarshalYAML emits a mapping node so YAML output keeps key order.
func (o *Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if o == nil {
		return node, nil
	}
	for _, k := range o.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valueNode, err := YAMLNode(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode value of key %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// YAMLNode encodes a decoded JSON value as a YAML node. json.Number values
// are written as plain scalars so they stay numbers rather than quoted
// strings.
func YAMLNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: val.String()}, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elem := range val {
			child, err := YAMLNode(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to encode element %d: %w", i, err)
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

///////////////////////////////////////////////////////////////////////////////
// gjson decoding
///////////////////////////////////////////////////////////////////////////////

// ParseJSON decodes a JSON document into a tree of *Object, []any, string,
// json.Number, bool and nil. Numbers keep their literal text, so integers
// beyond float64 precision survive a round trip.
func ParseJSON(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return decodeResult(gjson.ParseBytes(data)), nil
}

func decodeResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		out := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			out = append(out, decodeResult(value))
			return true
		})
		return out
	}
	if r.IsObject() {
		return decodeObject(r)
	}
	return nil
}

func decodeObject(r gjson.Result) *Object {
	obj := NewObject(0)
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.String(), decodeResult(value))
		return true
	})
	return obj
}
