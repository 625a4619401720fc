package keycase

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"
)

// Options configures a Mapper.
type Options struct {
	// ToCase is the format keys are rewritten into. The zero value keeps
	// keys as they are.
	ToCase CaseFormat
	// FromCase is the format source keys are expected to follow. When set,
	// every non-conforming key is reported as MALFORMATTED_KEY.
	FromCase CaseFormat
	// Formatters are tried after the builtin null, plain value and date
	// formatters.
	Formatters []Formatter
	// Registry resolves case formats. Defaults to DefaultRegistry().
	Registry *CaseRegistry
	// Logger receives per-node debug output. Defaults to a no-op logger.
	Logger *zap.Logger
	// KeyCacheSize bounds the memo of key rewrites kept by the Mapper.
	// Zero disables it.
	KeyCacheSize int
	// MaxDepth bounds the nesting depth that is traversed. Deeper nodes
	// become nil and are reported as UNPARSEABLE_VALUE. Zero means no limit.
	MaxDepth int
}

// Result is the outcome of mapping one tree.
//
// Success is false only when the root node matched no known shape; in that
// case Value is nil and Errors holds an UNPARSEABLE_VALUE entry at the root.
// Errors is never nil.
type Result struct {
	Success bool   `json:"success"`
	Value   any    `json:"value"`
	Errors  Errors `json:"errors"`
}

// JSON encodes the mapped value.
func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// Mapper rewrites the keys of JSON-like trees from one case format to
// another. A Mapper holds no per-call state and may be shared between
// goroutines.
type Mapper struct {
	toCase    CaseFormat
	fromCase  CaseFormat
	transform TransformFunc // nil keeps keys unchanged
	validate  ValidateFunc  // nil disables key validation
	chain     *FormatChain
	cache     *KeyCache
	logger    *zap.Logger
	maxDepth  int
}

// New resolves the case formats of opts and assembles the formatter chain.
// It fails only on configuration errors: an unknown format, or a FromCase
// that has no validator.
func New(opts Options) (*Mapper, error) {
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	m := &Mapper{
		toCase:   opts.ToCase,
		fromCase: opts.FromCase,
		chain:    NewFormatChain(opts.Formatters...),
		cache:    NewKeyCache(opts.KeyCacheSize),
		logger:   opts.Logger,
		maxDepth: opts.MaxDepth,
	}

	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	if !opts.ToCase.IsZero() {
		transform, err := reg.Transformer(opts.ToCase)
		if err != nil {
			return nil, fmt.Errorf("invalid target case format: %w", err)
		}
		m.transform = transform
	}

	if !opts.FromCase.IsZero() {
		validate, err := reg.Validator(opts.FromCase)
		if err != nil {
			return nil, fmt.Errorf("invalid source case format: %w", err)
		}
		m.validate = validate
	}

	return m, nil
}

// Map builds a Mapper from opts and maps value with it.
func Map(value any, opts Options) (Result, error) {
	m, err := New(opts)
	if err != nil {
		return Result{Errors: make(Errors, 0)}, err
	}
	return m.Map(value), nil
}

// MapJSON decodes data, preserving key order, and maps it.
func MapJSON(data []byte, opts Options) (Result, error) {
	m, err := New(opts)
	if err != nil {
		return Result{Errors: make(Errors, 0)}, err
	}
	return m.MapJSON(data)
}

// ToCase returns the format keys are rewritten into, or "" when keys are
// kept as they are.
func (m *Mapper) ToCase() CaseFormat { return m.toCase }

// FromCase returns the format input keys are validated against, or "" when
// keys are not validated.
func (m *Mapper) FromCase() CaseFormat { return m.fromCase }

// Formatters lists the names of the assembled chain, builtins first.
func (m *Mapper) Formatters() []string { return m.chain.Names() }

// MapJSON decodes data, preserving key order, and maps it.
func (m *Mapper) MapJSON(data []byte) (Result, error) {
	value, err := ParseJSON(data)
	if err != nil {
		return Result{Errors: make(Errors, 0)}, err
	}
	return m.Map(value), nil
}

///////////////////////////////////////////////////////////////////////////////
// Recursive engine
///////////////////////////////////////////////////////////////////////////////

// mapState is the accumulator of a single Map call. The call that creates
// it and every recursive call below it append to errors; nothing else does.
type mapState struct {
	errors Errors
}

func (st *mapState) add(e MapperError) {
	st.errors = append(st.errors, e)
}

// Map transforms value and collects every diagnostic found on the way.
// It never fails: anomalies are reported in Result.Errors and the
// traversal always completes.
func (m *Mapper) Map(value any) Result {
	st := &mapState{errors: make(Errors, 0)}

	out, success := m.mapValue(value, RootPath, 0, st)
	if !success {
		st.add(newUnparseableValue(RootPath, value))
	}

	return Result{
		Success: success,
		Value:   out,
		Errors:  st.errors,
	}
}

// mapValue maps one node. The branches run in priority order and a later
// branch only runs while the value produced so far is falsy, so a
// formatter yielding 0, "" or false on a keyed map lets the map be
// traversed after all.
func (m *Mapper) mapValue(value any, path string, depth int, st *mapState) (any, bool) {
	if m.tooDeep(depth) {
		return nil, false
	}

	kind := Classify(value)

	var (
		out     any
		success bool
	)

	if kind == KindSequence {
		if ce := m.logger.Check(zap.DebugLevel, "matched array"); ce != nil {
			ce.Write(zap.String("path", path))
		}
		out = m.mapSequence(value, path, depth, st)
		success = true
	}

	if isFalsy(out) {
		if formatted, name, ok := m.chain.Execute(value, kind); ok {
			if ce := m.logger.Check(zap.DebugLevel, "matched formatter"); ce != nil {
				ce.Write(zap.String("path", path), zap.String("formatter", name))
			}
			out = formatted
			success = true
		}
	}

	if isFalsy(out) && kind == KindObject {
		if ce := m.logger.Check(zap.DebugLevel, "matched nested object"); ce != nil {
			ce.Write(zap.String("path", path))
		}
		out = m.mapObject(value, path, depth, st)
		success = true
	}

	return out, success
}

func (m *Mapper) tooDeep(depth int) bool {
	return m.maxDepth > 0 && depth > m.maxDepth
}

// mapSequence maps every element at the same path as the sequence itself.
// Elements that cannot be classified become nil without a diagnostic of
// their own.
func (m *Mapper) mapSequence(value any, path string, depth int, st *mapState) []any {
	var items []any
	if list, ok := value.([]any); ok {
		items = list
	} else {
		rv := reflect.ValueOf(value)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	out := make([]any, len(items))
	for i, item := range items {
		if m.tooDeep(depth + 1) {
			st.add(newUnparseableValue(path, item))
			continue
		}
		out[i], _ = m.mapValue(item, path, depth+1, st)
	}
	return out
}

// mapObject builds a fresh object from value's entries in enumeration
// order. Child errors are recorded but never fail the object itself.
func (m *Mapper) mapObject(value any, path string, depth int, st *mapState) *Object {
	obj := NewObject(0)

	forEachEntry(value, func(key string, raw any) {
		childPath := path + PathDelimiter + key

		mapped, ok := m.mapValue(raw, childPath, depth+1, st)
		if !ok {
			st.add(newUnparseableValue(childPath, raw))
		}

		if m.validate != nil && !m.validate(key) {
			st.add(newMalformattedKey(childPath, key))
		}

		obj.Set(m.rewriteKey(key), mapped)
	})

	return obj
}

func (m *Mapper) rewriteKey(key string) string {
	if m.transform == nil {
		return key
	}
	return m.cache.GetOrCreate(key, m.transform)
}

// forEachEntry enumerates a KindObject value. *Object yields insertion
// order; Go maps yield ascending key order, as encoding/json does.
func forEachEntry(value any, fn func(key string, v any)) {
	switch t := value.(type) {
	case *Object:
		t.Range(func(key string, v any) bool {
			fn(key, v)
			return true
		})
		return
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fn(k, t[k])
		}
		return
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Type() == objectPtrType.Elem() {
		obj := rv.Interface().(Object)
		forEachEntry(&obj, fn)
		return
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for _, k := range keys {
		fn(k.String(), rv.MapIndex(k).Interface())
	}
}
