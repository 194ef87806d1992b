package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrMiss is returned by LocalBackend.Get for absent or expired keys.
var ErrMiss = errors.New("cache miss")

// LocalBackend is an in-process Backend for running without Redis. Entries
// expire after the TTL given to NewLocalBackend; per-call TTLs are ignored.
type LocalBackend struct {
	lru *expirable.LRU[string, string]
}

func NewLocalBackend(size int, ttl time.Duration) *LocalBackend {
	return &LocalBackend{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (b *LocalBackend) Get(_ context.Context, key string) (string, error) {
	v, ok := b.lru.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (b *LocalBackend) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		b.lru.Add(key, string(v))
	case string:
		b.lru.Add(key, v)
	default:
		return errors.New("local cache stores only strings and byte slices")
	}
	return nil
}

// FlushByPattern supports the "prefix*" patterns the cache issues.
func (b *LocalBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for _, key := range b.lru.Keys() {
		if strings.HasPrefix(key, prefix) && b.lru.Remove(key) {
			deleted++
		}
	}
	return deleted, nil
}

func (b *LocalBackend) Len() int {
	return b.lru.Len()
}
