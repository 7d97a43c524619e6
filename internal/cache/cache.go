package cache

import "sync"

// Memo is a generic thread-safe LRU memo with a soft limit.
// When the memo exceeds softLimit, least recently used entries are evicted.
type Memo[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*memoEntry[K, V]
	lru       *lruList[K]
	softLimit int

	hits      uint64
	misses    uint64
	evictions uint64
}

type memoEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// NewMemo creates a memo with the given soft limit.
// A softLimit of 0 means unlimited.
func NewMemo[K comparable, V any](softLimit int) *Memo[K, V] {
	return &Memo[K, V]{
		entries:   make(map[K]*memoEntry[K, V]),
		lru:       newLRUList[K](),
		softLimit: softLimit,
	}
}

// Get retrieves a value and marks it as recently used.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.misses++
		var zero V
		return zero, false
	}
	m.hits++
	m.lru.MoveToFront(e.node)
	return e.value, true
}

// Set stores a value, evicting the oldest entries if over the soft limit.
func (m *Memo[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
}

// GetOrCreate returns the memoized value or creates and stores it.
// create is called under the lock.
func (m *Memo[K, V]) GetOrCreate(key K, create func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		m.hits++
		m.lru.MoveToFront(e.node)
		return e.value
	}
	m.misses++
	value := create()
	m.setLocked(key, value)
	return value
}

// Delete removes an entry. Returns true if the entry was present.
func (m *Memo[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false
	}
	m.lru.Remove(e.node)
	delete(m.entries, key)
	return true
}

// Clear removes all entries. Statistics are kept.
func (m *Memo[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[K]*memoEntry[K, V])
	m.lru.Clear()
}

// Len returns the number of entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats returns memo statistics.
func (m *Memo[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Len:       len(m.entries),
		Capacity:  m.softLimit,
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
	}
	if total := m.hits + m.misses; total > 0 {
		s.HitRate = float64(m.hits) / float64(total)
	}
	return s
}

// setLocked inserts or replaces a value. Caller must hold m.mu.
func (m *Memo[K, V]) setLocked(key K, value V) {
	if e, ok := m.entries[key]; ok {
		e.value = value
		m.lru.MoveToFront(e.node)
		return
	}
	m.entries[key] = &memoEntry[K, V]{value: value, node: m.lru.PushFront(key)}

	for m.softLimit > 0 && len(m.entries) > m.softLimit {
		oldest, ok := m.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(m.entries, oldest)
		m.evictions++
	}
}

// Stats contains memo statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit (0 for unlimited).
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries dropped by the soft limit.
	Evictions uint64
}
