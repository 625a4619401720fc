package keycase

import (
	"encoding"
	"encoding/json"
	"reflect"
	"time"
)

// RootPath is the path marker for the top of a mapped tree. Every error path
// starts with it and each object descent appends ".<key>".
const (
	RootPath      = "$"
	PathDelimiter = "."
)

// constants for builtin case formats
const (
	LowerCase  CaseFormat = "LOWER_CASE"
	CamelCase  CaseFormat = "CAMEL_CASE"
	SnakeCase  CaseFormat = "SNAKE_CASE"
	PascalCase CaseFormat = "PASCAL_CASE"
	KebabCase  CaseFormat = "KEBAB_CASE"
)

// constants for mapper error types
const (
	MalformattedKey  ErrorType = "MALFORMATTED_KEY"
	UnparseableValue ErrorType = "UNPARSEABLE_VALUE"
)

// Formatter name constants for built in formatters.
const (
	NullFormatterName  = "null or undefined"
	PlainFormatterName = "plain value"
	DateFormatterName  = "Date object"
)

// ISODateLayout renders a time the way a JSON date is serialized on the wire:
// UTC with millisecond precision.
const ISODateLayout = "2006-01-02T15:04:05.000Z"

// Mime Type constants for content types and headers.
const (
	ContentTypeApplicationJSON string = "application/json"
	ContentTypeDelimiter              = ";"
	HeaderContentType                 = "Content-Type"
	HeaderUserAgent                   = "User-Agent"
	HeaderRequestID                   = "X-Request-Id"
	DefaultCaseFormatHeader           = "X-Case-Format"
)

// reflect.TypeOf constants for type checks
var (
	timeType          = reflect.TypeOf(time.Time{})
	objectPtrType     = reflect.TypeOf((*Object)(nil))
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)
