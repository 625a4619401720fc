package keycase

// MatchFunc decides whether a formatter handles a node. kind is the
// classification the engine already computed for value.
type MatchFunc func(value any, kind ValueKind) bool

// FormatFunc produces the replacement for a matched node.
type FormatFunc func(value any) any

// Formatter is a named (match, format) pair applied to a node before the
// generic object recursion. Name is only used in diagnostics.
type Formatter struct {
	Name   string
	Match  MatchFunc
	Format FormatFunc
}

// MatchKind returns a MatchFunc accepting every value of kind k.
func MatchKind(k ValueKind) MatchFunc {
	return func(_ any, kind ValueKind) bool {
		return kind == k
	}
}

// MatchType returns a MatchFunc accepting values whose dynamic type is T.
func MatchType[T any]() MatchFunc {
	return func(value any, _ ValueKind) bool {
		_, ok := value.(T)
		return ok
	}
}

var builtinFormatters = []Formatter{
	{
		Name:   NullFormatterName,
		Match:  MatchKind(KindNull),
		Format: func(any) any { return nil },
	},
	{
		Name:   PlainFormatterName,
		Match:  MatchKind(KindPrimitive),
		Format: func(value any) any { return value },
	},
	{
		Name:  DateFormatterName,
		Match: MatchKind(KindDate),
		Format: func(value any) any {
			return toTime(value).UTC().Format(ISODateLayout)
		},
	},
}

// BuiltinFormatters returns a copy of the builtin chain entries in the
// order they are tried: null, plain value, date.
func BuiltinFormatters() []Formatter {
	out := make([]Formatter, len(builtinFormatters))
	copy(out, builtinFormatters)
	return out
}

///////////////////////////////////////////////////////////////////////////////
// FormatChain
///////////////////////////////////////////////////////////////////////////////

// FormatChain is a linked list of formatters tried in order. The first
// step whose Match accepts a node formats it and ends the walk.
type FormatChain struct {
	Head *FormatStep
	Len  int
}

// FormatStep is a single step in the chain
type FormatStep struct {
	Formatter Formatter
	Next      *FormatStep
}

// NewFormatChain builds the chain used by a Mapper: the builtins followed
// by custom. Formatters missing a Match or Format func are skipped.
func NewFormatChain(custom ...Formatter) *FormatChain {
	chain := &FormatChain{}
	var current *FormatStep

	for _, list := range [][]Formatter{builtinFormatters, custom} {
		for _, f := range list {
			if f.Match == nil || f.Format == nil {
				continue
			}
			step := &FormatStep{Formatter: f}
			if chain.Head == nil {
				chain.Head = step
			} else {
				current.Next = step
			}
			current = step
			chain.Len++
		}
	}

	return chain
}

// Execute walks the chain for value. It returns the formatted value, the
// name of the matching formatter and whether any formatter matched.
func (chain *FormatChain) Execute(value any, kind ValueKind) (any, string, bool) {
	for current := chain.Head; current != nil; current = current.Next {
		if current.Formatter.Match(value, kind) {
			return current.Formatter.Format(value), current.Formatter.Name, true
		}
	}
	return nil, "", false
}

// Names lists the formatter names in chain order.
func (chain *FormatChain) Names() []string {
	out := make([]string, 0, chain.Len)
	for current := chain.Head; current != nil; current = current.Next {
		out = append(out, current.Formatter.Name)
	}
	return out
}
