// Package memory provides an in-process implementation of repository.Store
// used by tests and by STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/livestock/internal/repository"
)

// Store keeps every collection as an insertion-ordered slice of documents.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]repository.Document
	unique      map[string][]string
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string][]repository.Document),
		unique:      make(map[string][]string),
	}
}

// Find returns copies of all matching documents in the requested order.
func (s *Store) Find(_ context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]repository.Document, 0)
	for _, doc := range s.collections[collection] {
		if matches(doc, q.Filter) {
			out = append(out, clone(doc))
		}
	}
	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j], q.Sort) })
	}
	return out, nil
}

// FindOne returns the first matching document or repository.ErrNotFound.
func (s *Store) FindOne(_ context.Context, collection string, f repository.Filter) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(collection, f); idx >= 0 {
		return clone(s.collections[collection][idx]), nil
	}
	return nil, repository.ErrNotFound
}

// Insert stores a copy of doc.
func (s *Store) Insert(_ context.Context, collection string, doc repository.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, field := range s.unique[collection] {
		value, ok := lookup(doc, field)
		if !ok {
			continue
		}
		if s.indexOf(collection, repository.Filter{repository.Eq(field, value)}) >= 0 {
			return fmt.Errorf("%s.%s: %w", collection, field, repository.ErrDuplicate)
		}
	}

	s.collections[collection] = append(s.collections[collection], clone(doc))
	return nil
}

// Update sets the given top-level fields on the first matching document and
// returns the updated copy.
func (s *Store) Update(_ context.Context, collection string, f repository.Filter, set repository.Document) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(collection, f)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	doc := s.collections[collection][idx]
	for k, v := range set {
		doc[k] = cloneValue(v)
	}
	return clone(doc), nil
}

// Delete removes the first matching document.
func (s *Store) Delete(_ context.Context, collection string, f repository.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(collection, f)
	if idx < 0 {
		return repository.ErrNotFound
	}
	docs := s.collections[collection]
	s.collections[collection] = append(docs[:idx:idx], docs[idx+1:]...)
	return nil
}

// Count returns the number of matching documents.
func (s *Store) Count(_ context.Context, collection string, f repository.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.collections[collection] {
		if matches(doc, f) {
			n++
		}
	}
	return n, nil
}

// Distinct returns the unique values of field across matching documents.
func (s *Store) Distinct(_ context.Context, collection, field string, f repository.Filter) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]any, 0)
	for _, doc := range s.collections[collection] {
		if !matches(doc, f) {
			continue
		}
		value, ok := lookup(doc, field)
		if !ok || value == nil {
			continue
		}
		seen := false
		for _, existing := range out {
			if equal(existing, value) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, value)
		}
	}
	return out, nil
}

// Sum totals amountField across matching documents, bucketed by groupField
// when it is set. Buckets are ordered by key.
func (s *Store) Sum(_ context.Context, collection string, f repository.Filter, amountField, groupField string) ([]repository.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]repository.Group, 0)
	for _, doc := range s.collections[collection] {
		if !matches(doc, f) {
			continue
		}
		var key any
		if groupField != "" {
			key, _ = lookup(doc, groupField)
		}
		amount, _ := lookup(doc, amountField)
		value, _ := toFloat(amount)

		found := false
		for i := range groups {
			if equal(groups[i].Key, key) {
				groups[i].Total += value
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, repository.Group{Key: key, Total: value})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Key == nil {
			return groups[j].Key != nil
		}
		c, _ := compare(groups[i].Key, groups[j].Key)
		return c < 0
	})
	return groups, nil
}

// EnsureUnique rejects future inserts that repeat a value of field.
func (s *Store) EnsureUnique(_ context.Context, collection, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.unique[collection] {
		if existing == field {
			return nil
		}
	}
	s.unique[collection] = append(s.unique[collection], field)
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func (s *Store) indexOf(collection string, f repository.Filter) int {
	for i, doc := range s.collections[collection] {
		if matches(doc, f) {
			return i
		}
	}
	return -1
}
