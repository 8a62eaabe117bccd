// Package cache provides a generic, thread-safe TTL cache with bounded
// capacity and FIFO eviction.
//
// Unlike an LRU, reads do not refresh an entry's position: when the cache is
// full the oldest-inserted entry is evicted first. Entries also carry an
// absolute expiry timestamp that is checked lazily on read.
//
//	c := cache.New[string, string](100, 5*time.Minute)
//	c.Put("GET:/api/v1/auth/me", body)
//	if v, ok := c.Get("GET:/api/v1/auth/me"); ok {
//	    // served from cache
//	}
package cache
