package keycase

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

var (
	ErrUnknownCaseFormat           = errors.New("unknown case format")
	ErrNoValidator                 = errors.New("case format has no validator and cannot be used as a source format")
	ErrCaseFormatAlreadyRegistered = errors.New("a case format with this name is already registered")
	ErrNilTransform                = errors.New("case format transform cannot be nil")
)

// CaseFormat identifies a key naming convention. The zero value means
// "no format": as a target it leaves keys untouched, as a source it
// disables validation.
type CaseFormat string

// String returns the canonical name of the format.
func (f CaseFormat) String() string { return string(f) }

// IsZero reports whether f is the empty format.
func (f CaseFormat) IsZero() bool { return f == "" }

var caseFormatAliases = map[string]CaseFormat{
	"lower":  LowerCase,
	"camel":  CamelCase,
	"snake":  SnakeCase,
	"pascal": PascalCase,
	"kebab":  KebabCase,
}

// ParseCaseFormat parses a canonical format name (CAMEL_CASE) or one of the
// short aliases (camel, snake, lower, pascal, kebab). Matching is case
// insensitive. An empty string parses to the zero format.
func ParseCaseFormat(s string) (CaseFormat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if f, ok := caseFormatAliases[strings.ToLower(s)]; ok {
		return f, nil
	}
	upper := CaseFormat(strings.ToUpper(s))
	for _, f := range caseFormatAliases {
		if f == upper {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCaseFormat, s)
}

///////////////////////////////////////////////////////////////////////////////
// Rewrite and conformance functions
///////////////////////////////////////////////////////////////////////////////

// TransformFunc rewrites a key into a case format. It must be total.
type TransformFunc func(key string) string

// ValidateFunc reports whether a key conforms to a case format.
type ValidateFunc func(key string) bool

var (
	lowerCasePattern  = regexp.MustCompile(`^[a-z]*$`)
	camelCasePattern  = regexp.MustCompile(`^[a-z][a-z0-9]*(?:[A-Z][a-z0-9]*)+$`)
	snakeCasePattern  = regexp.MustCompile(`^[a-z]+(?:_[a-z0-9]+)*$`)
	pascalCasePattern = regexp.MustCompile(`^(?:[A-Z][a-z0-9]*)+$`)
	kebabCasePattern  = regexp.MustCompile(`^[a-z]+(?:-[a-z0-9]+)*$`)
)

// splitWords breaks key into lowercase words. Runes that are neither
// letters nor digits separate words and are dropped. A word also ends at a
// lower-to-upper transition, before the last capital of an acronym that is
// followed by a lowercase letter, and between letters and digits.
func splitWords(key string) []string {
	runes := []rune(key)
	words := make([]string, 0, 4)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, strings.ToLower(string(runes[start:end])))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && unicode.IsLower(prev),
			unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]),
			unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush(i)
			start = i
		}
	}
	flush(len(runes))

	return words
}

// joinWords rewrites key through conv after normalizing it to lowercase
// snake words, so conv only ever sees clean word boundaries.
func joinWords(conv func(string) string) TransformFunc {
	return func(key string) string {
		return conv(strings.Join(splitWords(key), "_"))
	}
}

func toLowerCase(key string) string {
	return strings.Join(splitWords(key), " ")
}

// wordValidator accepts keys matching pattern, and also the single
// lowercase word which is valid in every word-style convention.
func wordValidator(pattern *regexp.Regexp) ValidateFunc {
	return func(key string) bool {
		return lowerCasePattern.MatchString(key) || pattern.MatchString(key)
	}
}

func patternValidator(pattern *regexp.Regexp) ValidateFunc {
	return pattern.MatchString
}

///////////////////////////////////////////////////////////////////////////////
// CaseRegistry
///////////////////////////////////////////////////////////////////////////////

type caseEntry struct {
	transform TransformFunc
	pattern   *regexp.Regexp
	validate  ValidateFunc // nil when the format cannot be used as a source
}

// CaseRegistry maps case formats to their rewrite function and conformance
// predicate.
//
// A registry is built once and then only read, so it is safe to share
// between goroutines as long as Register is not called concurrently with
// lookups.
type CaseRegistry struct {
	m map[CaseFormat]caseEntry
}

type CaseRegistryOpts struct {
	ExcludeDefaults bool
}

// NewCaseRegistry returns a registry holding the builtin formats unless
// opts.ExcludeDefaults is set.
func NewCaseRegistry(opts CaseRegistryOpts) (*CaseRegistry, error) {
	reg := &CaseRegistry{
		m: make(map[CaseFormat]caseEntry),
	}

	if opts.ExcludeDefaults {
		return reg, nil
	}

	defaults := []struct {
		format    CaseFormat
		transform TransformFunc
		pattern   *regexp.Regexp
		validate  ValidateFunc
	}{
		{LowerCase, toLowerCase, lowerCasePattern, nil},
		{CamelCase, joinWords(strcase.LowerCamelCase), camelCasePattern, wordValidator(camelCasePattern)},
		{SnakeCase, joinWords(strcase.SnakeCase), snakeCasePattern, wordValidator(snakeCasePattern)},
		{PascalCase, joinWords(strcase.UpperCamelCase), pascalCasePattern, patternValidator(pascalCasePattern)},
		{KebabCase, joinWords(strcase.KebabCase), kebabCasePattern, wordValidator(kebabCasePattern)},
	}

	for _, d := range defaults {
		if err := reg.register(d.format, caseEntry{d.transform, d.pattern, d.validate}); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Register adds a case format. A nil pattern registers a format that can
// only be used as a target.
func (reg *CaseRegistry) Register(format CaseFormat, transform TransformFunc, pattern *regexp.Regexp) error {
	if transform == nil {
		return fmt.Errorf("%w: %s", ErrNilTransform, format)
	}

	entry := caseEntry{transform: transform, pattern: pattern}
	if pattern != nil {
		entry.validate = patternValidator(pattern)
	}
	return reg.register(format, entry)
}

func (reg *CaseRegistry) register(format CaseFormat, entry caseEntry) error {
	if format.IsZero() {
		return fmt.Errorf("%w: empty name", ErrUnknownCaseFormat)
	}
	if _, exists := reg.m[format]; exists {
		return fmt.Errorf("%w: %s", ErrCaseFormatAlreadyRegistered, format)
	}
	reg.m[format] = entry
	return nil
}

// Transformer returns the rewrite function for format.
func (reg *CaseRegistry) Transformer(format CaseFormat) (TransformFunc, error) {
	entry, ok := reg.m[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCaseFormat, format)
	}
	return entry.transform, nil
}

// Validator returns the conformance predicate used when format is the
// expected source format of a tree.
//
// LOWER_CASE has a pattern but deliberately no validator, so asking for it
// returns ErrNoValidator.
func (reg *CaseRegistry) Validator(format CaseFormat) (ValidateFunc, error) {
	entry, ok := reg.m[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCaseFormat, format)
	}
	if entry.validate == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoValidator, format)
	}
	return entry.validate, nil
}

// Matches reports whether key matches the raw pattern of format, without
// the lowercase allowance that validators apply.
func (reg *CaseRegistry) Matches(format CaseFormat, key string) bool {
	entry, ok := reg.m[format]
	if !ok || entry.pattern == nil {
		return false
	}
	return entry.pattern.MatchString(key)
}

// Formats lists the registered formats in name order.
func (reg *CaseRegistry) Formats() []CaseFormat {
	out := make([]CaseFormat, 0, len(reg.m))
	for f := range reg.m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

///////////////////////////////////////////////////////////////////////////////
// Default registry and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gCaseRegistry *CaseRegistry = nil

func init() {
	var err error
	_gCaseRegistry, err = NewCaseRegistry(CaseRegistryOpts{})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize default CaseRegistry: %v", err))
	}
}

// DefaultRegistry returns the registry of builtin formats. It is never
// mutated by this package; use NewCaseRegistry for custom formats.
func DefaultRegistry() *CaseRegistry {
	return _gCaseRegistry
}

func Transformer(format CaseFormat) (TransformFunc, error) {
	return _gCaseRegistry.Transformer(format)
}

func Validator(format CaseFormat) (ValidateFunc, error) {
	return _gCaseRegistry.Validator(format)
}

// DetectCaseFormat returns the builtin format key conforms to. A single
// lowercase word is reported as LOWER_CASE; otherwise the raw patterns are
// tried in the order camel, snake, pascal, kebab.
func DetectCaseFormat(key string) (CaseFormat, bool) {
	if key != "" && lowerCasePattern.MatchString(key) {
		return LowerCase, true
	}
	for _, f := range []CaseFormat{CamelCase, SnakeCase, PascalCase, KebabCase} {
		if _gCaseRegistry.Matches(f, key) {
			return f, true
		}
	}
	return "", false
}
