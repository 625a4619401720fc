package keycase

import (
	"sync"
)

// KeyCache memoizes the key rewrites of one Mapper. API payloads repeat
// the same few keys, so the rewrite of each is computed once.
//
// The cache stops admitting new keys once it holds limit entries; existing
// entries keep being served. It is safe for concurrent use.
type KeyCache struct {
	mutex sync.RWMutex // Allows concurrent reads, exclusive writes
	keys  map[string]string
	limit int
}

// NewKeyCache creates a cache holding at most limit rewrites. A limit
// below one returns nil, and a nil *KeyCache simply calls the factory.
func NewKeyCache(limit int) *KeyCache {
	if limit < 1 {
		return nil
	}
	return &KeyCache{
		keys:  make(map[string]string),
		limit: limit,
	}
}

// GetOrCreate returns the cached rewrite of key, computing and storing it
// with factory on a miss.
func (kc *KeyCache) GetOrCreate(key string, factory TransformFunc) string {
	if kc == nil {
		return factory(key)
	}

	kc.mutex.RLock()
	rewritten, ok := kc.keys[key]
	kc.mutex.RUnlock()
	if ok {
		return rewritten
	}

	rewritten = factory(key)

	kc.mutex.Lock()
	if len(kc.keys) < kc.limit {
		kc.keys[key] = rewritten
	}
	kc.mutex.Unlock()

	return rewritten
}

// Get retrieves the cached rewrite of key if it exists
func (kc *KeyCache) Get(key string) (string, bool) {
	if kc == nil {
		return "", false
	}
	kc.mutex.RLock()
	defer kc.mutex.RUnlock()
	rewritten, ok := kc.keys[key]
	return rewritten, ok
}

func (kc *KeyCache) Len() int {
	if kc == nil {
		return 0
	}
	kc.mutex.RLock()
	defer kc.mutex.RUnlock()
	return len(kc.keys)
}

// Clear removes all cache entries
func (kc *KeyCache) Clear() {
	if kc == nil {
		return
	}
	kc.mutex.Lock()
	kc.keys = make(map[string]string)
	kc.mutex.Unlock()
}
