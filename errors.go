package keycase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorType distinguishes the two diagnostics a mapping can produce.
type ErrorType string

func (t ErrorType) String() string { return string(t) }

// MapperError is one diagnostic collected while mapping a tree.
//
//   - MALFORMATTED_KEY: Key did not conform to the source case format. The
//     key is still renamed and kept in the output.
//   - UNPARSEABLE_VALUE: Value could not be classified. The position holds
//     nil in the output.
//
// Path is the dotted location of the node, built from original (pre-rename)
// keys and rooted at RootPath.
type MapperError struct {
	Type  ErrorType
	Path  string
	Key   string
	Value any
}

func newMalformattedKey(path, key string) MapperError {
	return MapperError{Type: MalformattedKey, Path: path, Key: key}
}

func newUnparseableValue(path string, value any) MapperError {
	return MapperError{Type: UnparseableValue, Path: path, Value: value}
}

// Error implements the error interface
func (e MapperError) Error() string {
	switch e.Type {
	case MalformattedKey:
		return fmt.Sprintf("%s at %s: key %q", e.Type, e.Path, e.Key)
	default:
		return fmt.Sprintf("%s at %s: %T", e.Type, e.Path, e.Value)
	}
}

// MarshalJSON emits {"type","path","key"} for malformed keys and
// {"type","path","value"} for unparseable values, where value may be null.
func (e MapperError) MarshalJSON() ([]byte, error) {
	if e.Type == MalformattedKey {
		return json.Marshal(struct {
			Type ErrorType `json:"type"`
			Path string    `json:"path"`
			Key  string    `json:"key"`
		}{e.Type, e.Path, e.Key})
	}

	value, err := json.Marshal(e.Value)
	if err != nil {
		// The value is only informative; fall back to its Go type.
		value, _ = json.Marshal(fmt.Sprintf("%T", e.Value))
	}
	return json.Marshal(struct {
		Type  ErrorType       `json:"type"`
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value"`
	}{e.Type, e.Path, value})
}

// Errors is the ordered list of diagnostics of one mapping. Order is
// depth-first, left to right, following input key order.
type Errors []MapperError

// Error implements the error interface so a non-empty list can be returned
// directly by callers that treat diagnostics as fatal.
func (errs Errors) Error() string {
	if len(errs) == 0 {
		return "no mapper errors"
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Err returns errs as an error, or nil when it is empty.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Filter returns the errors of type t.
func (errs Errors) Filter(t ErrorType) Errors {
	out := make(Errors, 0)
	for _, e := range errs {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns the path of every error, in order.
func (errs Errors) Paths() []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Path
	}
	return out
}
