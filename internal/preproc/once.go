package preproc

import "shaderpp/internal/source"

// OnceSet records files that declared #pragma once during one unit.
type OnceSet struct {
	paths map[string]struct{}
	order []string
}

// NewOnceSet returns an empty set.
func NewOnceSet() *OnceSet {
	return &OnceSet{paths: make(map[string]struct{})}
}

// Has reports whether path was marked.
func (s *OnceSet) Has(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[source.NormalizePath(path)]
	return ok
}

// Mark adds path and reports whether it was newly added.
func (s *OnceSet) Mark(path string) bool {
	key := source.NormalizePath(path)
	if _, ok := s.paths[key]; ok {
		return false
	}
	s.paths[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Len returns the number of marked files.
func (s *OnceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Paths returns marked files in marking order.
func (s *OnceSet) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
