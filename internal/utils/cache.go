package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache 是带过期时间的 LRU 缓存
type TTLCache[V any] struct {
	lru *lru.Cache[string, entry[V]]
	ttl time.Duration
	now func() time.Time
}

// NewTTLCache creates a cache holding at most size keys for ttl each.
func NewTTLCache[V any](size int, ttl time.Duration) (*TTLCache[V], error) {
	l, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[V]{lru: l, ttl: ttl, now: time.Now}, nil
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.lru.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Get 返回未过期的值
func (c *TTLCache[V]) Get(key string) (V, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every key.
func (c *TTLCache[V]) Purge() {
	c.lru.Purge()
}
