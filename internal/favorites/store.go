// Package favorites holds the user's persisted set of favorite coin ids.
package favorites

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key is the single fixed key the set is persisted under, serialized as
// a JSON array of coin ids.
const Key = "favorites"

type KVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Store is the owned, injectable favorites set. The set is loaded once at
// startup and every toggle re-serializes the whole set back to the KV
// store (overwrite, not append).
type Store struct {
	mu  sync.RWMutex
	ids map[string]struct{}
	kv  KVClient
}

func NewStore(kv KVClient) *Store {
	return &Store{
		ids: make(map[string]struct{}),
		kv:  kv,
	}
}

// Load reads the persisted set. It fails soft: a missing key or a
// malformed payload initializes the store to the empty set and is never
// surfaced to the caller.
func (s *Store) Load(ctx context.Context) {
	if s.kv == nil {
		return
	}

	data, err := s.kv.Get(ctx, Key).Bytes()
	if err == redis.Nil {
		return
	}
	if err != nil {
		log.Printf("favorites load error, starting empty: %v", err)
		return
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Printf("favorites payload malformed, starting empty: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// IsFavorite reports membership for a coin id.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Toggle flips membership for id and synchronously persists the whole
// resulting set. Toggling the same id twice restores the original set.
func (s *Store) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	var member bool
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
		member = true
	}
	ids := s.idsLocked()
	s.mu.Unlock()

	if s.kv != nil {
		data, err := json.Marshal(ids)
		if err == nil {
			err = s.kv.Set(ctx, Key, data, 0).Err()
		}
		if err != nil {
			log.Printf("favorites persist error: %v", err)
		}
	}
	return member
}

// IDs returns the current members sorted for stable output.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

// Len returns the current membership count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Store) idsLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
