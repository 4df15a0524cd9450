package token

import (
	"sync"
	"time"
)

// MemStore is an in-memory Store with per-key expiry. Expired entries are
// dropped lazily on Get.
type MemStore struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	value    string
	expireAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]memEntry), now: time.Now}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return "", false
	}
	if s.now().After(e.expireAt) {
		delete(s.m, key)
		return "", false
	}
	return e.value, true
}

func (s *MemStore) SetWithTTL(key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = memEntry{value: value, expireAt: s.now().Add(ttl)}
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
