package keycase

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyCache(t *testing.T) {
	t.Run("DisabledBelowOne", func(t *testing.T) {
		assert.Nil(t, NewKeyCache(0))
		assert.Nil(t, NewKeyCache(-3))
	})

	t.Run("NilCachePassesThrough", func(t *testing.T) {
		var kc *KeyCache
		assert.Equal(t, "AB", kc.GetOrCreate("ab", strings.ToUpper))
		assert.Equal(t, 0, kc.Len())
		_, ok := kc.Get("ab")
		assert.False(t, ok)
		kc.Clear()
	})

	t.Run("GetOrCreate_Memoizes", func(t *testing.T) {
		kc := NewKeyCache(4)
		calls := 0
		factory := func(s string) string {
			calls++
			return strings.ToUpper(s)
		}

		assert.Equal(t, "KEY", kc.GetOrCreate("key", factory))
		assert.Equal(t, "KEY", kc.GetOrCreate("key", factory))
		assert.Equal(t, 1, calls)

		rewritten, ok := kc.Get("key")
		assert.True(t, ok)
		assert.Equal(t, "KEY", rewritten)
	})

	t.Run("StopsAdmittingAtLimit", func(t *testing.T) {
		kc := NewKeyCache(2)
		for _, k := range []string{"a", "b", "c"} {
			assert.Equal(t, strings.ToUpper(k), kc.GetOrCreate(k, strings.ToUpper))
		}
		assert.Equal(t, 2, kc.Len())
		_, ok := kc.Get("c")
		assert.False(t, ok)
		_, ok = kc.Get("a")
		assert.True(t, ok)
	})

	t.Run("Clear", func(t *testing.T) {
		kc := NewKeyCache(2)
		kc.GetOrCreate("a", strings.ToUpper)
		kc.Clear()
		assert.Equal(t, 0, kc.Len())
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		kc := NewKeyCache(16)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, k := range []string{"first_name", "last_name", "user_id"} {
					kc.GetOrCreate(k, strings.ToUpper)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 3, kc.Len())
	})
}
