// Package lookup holds a bounded cache of recently found keys placed in front
// of tree searches.
package lookup

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
)

// MinCacheSize is the smallest capacity handed to the LRU.
const MinCacheSize = 16

// Cache is a positive-result cache: it only ever holds keys that were found.
// It is not safe for concurrent use, matching the tree it fronts.
type Cache[K comparable, V any] struct {
	lru *freelru.LRU[K, V]

	// Stats
	hits   uint64
	misses uint64
}

// New creates a cache holding up to size entries. Sizes below MinCacheSize
// are raised to it.
func New[K comparable, V any](size int) *Cache[K, V] {
	capacity := uint32(math.MaxUint32)
	if size = max(size, MinCacheSize); uint64(size) < math.MaxUint32 {
		capacity = uint32(size)
	}
	// freelru only rejects a zero capacity or a nil hash function
	lru, err := freelru.New[K, V](capacity, Hash[K])
	if err != nil {
		panic(fmt.Sprintf("lookup: capacity %d: %v", capacity, err))
	}
	return &Cache[K, V]{lru: lru}
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Add records key as present with value.
func (c *Cache[K, V]) Add(key K, value V) {
	c.lru.Add(key, value)
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Stats returns the number of Get calls that hit and missed.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// Hash folds an xxhash of key into 32 bits. Integer, float and string keys
// hash their raw bytes; anything else hashes its %v formatting.
func Hash[K comparable](key K) uint32 {
	var h uint64
	switch k := any(key).(type) {
	case string:
		h = xxhash.Sum64String(k)
	case int:
		h = sum64(uint64(k))
	case int8:
		h = sum64(uint64(k))
	case int16:
		h = sum64(uint64(k))
	case int32:
		h = sum64(uint64(k))
	case int64:
		h = sum64(uint64(k))
	case uint:
		h = sum64(uint64(k))
	case uint8:
		h = sum64(uint64(k))
	case uint16:
		h = sum64(uint64(k))
	case uint32:
		h = sum64(uint64(k))
	case uint64:
		h = sum64(k)
	case float32:
		h = sum64(uint64(math.Float32bits(k)))
	case float64:
		h = sum64(math.Float64bits(k))
	default:
		h = xxhash.Sum64String(fmt.Sprintf("%#v", key))
	}
	return uint32(h ^ h>>32)
}

func sum64(v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return xxhash.Sum64(buf[:])
}
