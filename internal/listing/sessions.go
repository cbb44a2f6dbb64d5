package listing

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Sessions keeps one engine per admin session. An engine is dropped after
// ttl without use, which stands in for leaving the page.
type Sessions struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{cache: gocache.New(ttl, ttl/2), ttl: ttl}
}

// Get returns the engine for id and extends its lifetime.
func (s *Sessions) Get(id string) (*Engine, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	e := v.(*Engine)
	s.cache.Set(id, e, s.ttl)
	return e, true
}

// Open returns the existing engine for id or registers a new one.
func (s *Sessions) Open(id string) *Engine {
	if e, ok := s.Get(id); ok {
		return e
	}
	e := NewEngine()
	if err := s.cache.Add(id, e, s.ttl); err != nil {
		if existing, ok := s.Get(id); ok {
			return existing
		}
		s.cache.Set(id, e, s.ttl)
	}
	return e
}

func (s *Sessions) Discard(id string) {
	s.cache.Delete(id)
}

func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}
