// Package cache provides a generic, thread-safe LRU cache with hit, miss
// and eviction counters.
//
//	c := cache.New[string, *dfield.Field](64, nil)
//	c.Set("assets/roof-solid.dfield", f)
//	f, ok := c.Get("assets/roof-solid.dfield")
package cache
