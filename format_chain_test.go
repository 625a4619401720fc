package keycase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatChain(t *testing.T) {
	t.Run("BuiltinOrder", func(t *testing.T) {
		chain := NewFormatChain()
		assert.Equal(t, 3, chain.Len)
		assert.Equal(t,
			[]string{NullFormatterName, PlainFormatterName, DateFormatterName},
			chain.Names(),
		)
	})

	t.Run("CustomAppended", func(t *testing.T) {
		chain := NewFormatChain(Formatter{
			Name:   "uuid",
			Match:  MatchType[uuid.UUID](),
			Format: func(v any) any { return v.(uuid.UUID).String() },
		})
		assert.Equal(t, 4, chain.Len)
		assert.Equal(t, "uuid", chain.Names()[3])
	})

	t.Run("IncompleteFormatterSkipped", func(t *testing.T) {
		chain := NewFormatChain(
			Formatter{Name: "no-match", Format: func(v any) any { return v }},
			Formatter{Name: "no-format", Match: MatchKind(KindUnknown)},
		)
		assert.Equal(t, 3, chain.Len)
	})

	t.Run("Execute_Null", func(t *testing.T) {
		chain := NewFormatChain()
		out, name, ok := chain.Execute(nil, KindNull)
		require.True(t, ok)
		assert.Nil(t, out)
		assert.Equal(t, NullFormatterName, name)
	})

	t.Run("Execute_Primitive", func(t *testing.T) {
		chain := NewFormatChain()
		out, name, ok := chain.Execute(12.5, KindPrimitive)
		require.True(t, ok)
		assert.Equal(t, 12.5, out)
		assert.Equal(t, PlainFormatterName, name)
	})

	t.Run("Execute_Date", func(t *testing.T) {
		chain := NewFormatChain()
		loc := time.FixedZone("UTC+2", 2*60*60)
		date := time.Date(2024, time.March, 5, 14, 30, 15, 250_000_000, loc)

		out, name, ok := chain.Execute(date, KindDate)
		require.True(t, ok)
		assert.Equal(t, "2024-03-05T12:30:15.250Z", out)
		assert.Equal(t, DateFormatterName, name)
	})

	t.Run("Execute_FirstMatchWins", func(t *testing.T) {
		chain := NewFormatChain(Formatter{
			Name:   "shadowed",
			Match:  MatchKind(KindPrimitive),
			Format: func(any) any { return "never" },
		})
		out, name, ok := chain.Execute("value", KindPrimitive)
		require.True(t, ok)
		assert.Equal(t, "value", out)
		assert.Equal(t, PlainFormatterName, name)
	})

	t.Run("Execute_NoMatch", func(t *testing.T) {
		chain := NewFormatChain()
		out, name, ok := chain.Execute(plainStruct{}, KindUnknown)
		assert.False(t, ok)
		assert.Nil(t, out)
		assert.Empty(t, name)
	})

	t.Run("BuiltinFormattersCopy", func(t *testing.T) {
		fs := BuiltinFormatters()
		fs[0].Name = "changed"
		assert.Equal(t, NullFormatterName, NewFormatChain().Names()[0])
	})
}
