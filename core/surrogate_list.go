package core

import (
	"iter"
	"sync"
)

// SurrogateList is a goroutine-safe list of surrogates.
type SurrogateList[T Surrogate] struct {
	mu    sync.RWMutex
	items []T
}

func NewSurrogateList[T Surrogate](items ...T) *SurrogateList[T] {
	return &SurrogateList[T]{items: append([]T(nil), items...)}
}

func (l *SurrogateList[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *SurrogateList[T]) At(i int) T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero
	}
	return l.items[i]
}

func (l *SurrogateList[T]) Add(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

func (l *SurrogateList[T]) RemoveAt(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

func (l *SurrogateList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Slice returns a copy of the elements.
func (l *SurrogateList[T]) Slice() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

// All ranges over a snapshot of the elements.
func (l *SurrogateList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, s := range l.Slice() {
			if !yield(i, s) {
				return
			}
		}
	}
}
