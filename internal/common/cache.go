package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value any, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (any, bool) {
	return c.Cache.Get(key)
}

// GetOrAdd returns the cached value for key, storing the value built by fn when
// the key is missing. Concurrent callers all observe the same stored value.
func (c *Cache) GetOrAdd(key string, expiration time.Duration, fn func() any) any {
	if v, ok := c.Cache.Get(key); ok {
		c.Cache.Set(key, v, expiration)
		return v
	}

	v := fn()
	if err := c.Cache.Add(key, v, expiration); err != nil {
		// another caller won the race
		if existing, ok := c.Cache.Get(key); ok {
			return existing
		}
	}

	return v
}

func (c *Cache) Delete(key string) {
	c.Cache.Delete(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyBlog(id int) string {
	return "blog:" + strconv.Itoa(id)
}

func CacheKeyRateLimit(group, client string) string {
	return "ratelimit:" + group + ":" + client
}
