// Package cache provides a small generic memo used to avoid recomputing
// derived shader text.
//
// # Memo[K, V]
//
// A thread-safe map with least-recently-used eviction once a soft limit is
// exceeded. GetOrCreate calls its constructor under the lock, so concurrent
// callers never build the same value twice.
//
//	m := cache.NewMemo[string, string](64)
//	text := m.GetOrCreate(key, func() string { return expand(src) })
//
// Memo is safe for concurrent use and must not be copied after creation.
package cache
