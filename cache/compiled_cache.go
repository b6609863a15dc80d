package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CompiledCache memoizes values that are expensive to build, such as
// constructor invokers and surrogate path tables. A failed build stores the
// zero value so the failure is not rebuilt on every call.
type CompiledCache[V any] struct {
	cache *lru.Cache[uint64, V]
	mu    sync.RWMutex
}

// NewCompiledCache creates a cache holding at most size entries.
func NewCompiledCache[V any](size int) *CompiledCache[V] {
	if size <= 0 {
		size = 1024
	}
	cache, _ := lru.New[uint64, V](size)

	return &CompiledCache[V]{
		cache: cache,
	}
}

func (s *CompiledCache[V]) Get(key uint64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cache.Get(key)
}

func (s *CompiledCache[V]) Set(key uint64, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(key, v)
}

// GetOrCompile returns the cached value for key or builds it with compile.
// The error is only returned by the call that performed the failed build;
// later calls see the cached zero value and a nil error.
func (s *CompiledCache[V]) GetOrCompile(key uint64, compile func() (V, error)) (V, error) {
	// Fast path: try to get from cache with read lock
	s.mu.RLock()
	if v, ok := s.cache.Get(key); ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err := compile()
	s.cache.Add(key, v)
	return v, err
}

func (s *CompiledCache[V]) Len() int {
	return s.cache.Len()
}

func (s *CompiledCache[V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
}
