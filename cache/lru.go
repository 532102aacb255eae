package cache

import "container/list"

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

// lruStore is a capacity-bounded map with least-recently-used eviction.
// It knows nothing about time; freshness is the owning Cache's concern.
// The zero value is not usable; create with newLRUStore.
//
// lruStore is not safe for concurrent use. The owning Cache serializes
// access under its own mutex, which also covers the recency list.
type lruStore[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	recency  *list.List // Front = most recently used, Back = eviction candidate
	onEvict  func(key K, value V)
}

func newLRUStore[K comparable, V any](capacity int) *lruStore[K, V] {
	if capacity <= 0 {
		panic("cache: lru capacity must be positive")
	}
	return &lruStore[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		recency:  list.New(),
	}
}

// get returns the value for key and promotes it to most-recently-used.
func (s *lruStore[K, V]) get(key K) (V, bool) {
	if el, ok := s.items[key]; ok {
		s.recency.MoveToFront(el)
		return el.Value.(*lruItem[K, V]).value, true
	}
	var zero V
	return zero, false
}

// peek returns the value for key without touching recency order.
func (s *lruStore[K, V]) peek(key K) (V, bool) {
	if el, ok := s.items[key]; ok {
		return el.Value.(*lruItem[K, V]).value, true
	}
	var zero V
	return zero, false
}

// set inserts or replaces key and promotes it to most-recently-used.
// Inserting a new key at capacity evicts exactly one entry: the back of
// the recency list. Replacing an existing key never changes size.
func (s *lruStore[K, V]) set(key K, value V) {
	if el, ok := s.items[key]; ok {
		s.recency.MoveToFront(el)
		el.Value.(*lruItem[K, V]).value = value
		return
	}
	s.items[key] = s.recency.PushFront(&lruItem[K, V]{key: key, value: value})
	if s.recency.Len() > s.capacity {
		if back := s.recency.Back(); back != nil {
			s.removeElement(back)
		}
	}
}

func (s *lruStore[K, V]) delete(key K) bool {
	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.recency.Remove(el)
	delete(s.items, key)
	return true
}

func (s *lruStore[K, V]) len() int {
	return s.recency.Len()
}

// keys returns all keys in most-recently-used to least-recently-used order.
func (s *lruStore[K, V]) keys() []K {
	out := make([]K, 0, s.recency.Len())
	for el := s.recency.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*lruItem[K, V]).key)
	}
	return out
}

func (s *lruStore[K, V]) clear() {
	s.items = make(map[K]*list.Element)
	s.recency.Init()
}

func (s *lruStore[K, V]) removeElement(el *list.Element) {
	item := el.Value.(*lruItem[K, V])
	s.recency.Remove(el)
	delete(s.items, item.key)
	if s.onEvict != nil {
		s.onEvict(item.key, item.value)
	}
}
