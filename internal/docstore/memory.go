package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sumire/collab/internal/domain"
)

// Memory is an in-memory Store used by tests. It applies the same
// union-append and array-remove semantics as the Postgres implementation.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Document)}
}

func (s *Memory) Get(_ context.Context, collection, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *Memory) List(_ context.Context, collection string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	for key, doc := range s.collections[collection] {
		entries = append(entries, Entry{Key: key, Doc: copyDoc(doc)})
	}
	return entries, nil
}

func (s *Memory) Set(_ context.Context, collection, key string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][key] = copyDoc(doc)
	return nil
}

func (s *Memory) UpdateFields(_ context.Context, collection, key string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range copyDoc(fields) {
		doc[k] = v
	}
	return nil
}

func (s *Memory) UnionAppend(_ context.Context, collection, key, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return domain.ErrNotFound
	}

	arr, err := arrayField(doc, field)
	if err != nil {
		return err
	}
	elem, err := normalize(value)
	if err != nil {
		return err
	}
	for _, e := range arr {
		if jsonEqual(e, elem) {
			return nil
		}
	}
	doc[field] = append(arr, elem)
	return nil
}

func (s *Memory) ArrayRemove(_ context.Context, collection, key, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return domain.ErrNotFound
	}

	arr, err := arrayField(doc, field)
	if err != nil {
		return err
	}
	elem, err := normalize(value)
	if err != nil {
		return err
	}
	kept := make([]any, 0, len(arr))
	for _, e := range arr {
		if !jsonEqual(e, elem) {
			kept = append(kept, e)
		}
	}
	doc[field] = kept
	return nil
}

func (s *Memory) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], key)
	return nil
}

func arrayField(doc Document, field string) ([]any, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not an array", field)
	}
	return arr, nil
}

// normalize round-trips a value through JSON so stored documents only contain
// the generic types a decoded document would, matching Postgres behavior.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func jsonEqual(a, b any) bool {
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}

func copyDoc(doc Document) Document {
	out, err := normalize(doc)
	if err != nil {
		return Document{}
	}
	copied, ok := out.(map[string]any)
	if !ok {
		return Document{}
	}
	return copied
}
