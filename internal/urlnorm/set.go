package urlnorm

import "sync"

// Set is a run-scoped membership set. Add is a single locked check-and-insert,
// so concurrent callers never both observe the same key as new.
type Set[K comparable] struct {
	mu    sync.Mutex
	items map[K]struct{}
}

// NewSet creates an empty Set.
func NewSet[K comparable]() *Set[K] {
	return &Set[K]{items: make(map[K]struct{})}
}

// Add inserts k and reports whether it was not already present.
func (s *Set[K]) Add(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = struct{}{}
	return true
}

// Has reports whether k is present.
func (s *Set[K]) Has(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[k]
	return ok
}

// Len returns the number of distinct keys inserted.
func (s *Set[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
