// Package cache provides a small generic LRU cache with TTL expiry, used by
// the HTTP layer to avoid recomputing the scoreboard on every request.
package cache

// Cache is the read/write surface the HTTP handlers use.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}
