package ttlcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore bounds the number of stored entries, evicting the least recently
// used one when full. Expiry is still decided by the Cache on read.
type LRUStore[V any] struct {
	entries *lru.Cache[string, Entry[V]]
}

// NewLRUStore creates a store holding at most size entries.
func NewLRUStore[V any](size int) (*LRUStore[V], error) {
	c, err := lru.New[string, Entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru store: %w", err)
	}
	return &LRUStore[V]{entries: c}, nil
}

func (s *LRUStore[V]) Load(key string) (Entry[V], bool, error) {
	e, ok := s.entries.Get(key)
	return e, ok, nil
}

func (s *LRUStore[V]) Save(key string, entry Entry[V]) error {
	s.entries.Add(key, entry)
	return nil
}

func (s *LRUStore[V]) Delete(key string) error {
	s.entries.Remove(key)
	return nil
}

func (s *LRUStore[V]) Clear() error {
	s.entries.Purge()
	return nil
}

func (s *LRUStore[V]) Keys() ([]string, error) {
	return s.entries.Keys(), nil
}
