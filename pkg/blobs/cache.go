package blobs

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedStore remembers successful lookups of another store for a while.
// Misses are not cached, so a blob uploaded after a failed lookup is found on
// the next try.
type CachedStore struct {
	next  Store
	cache *cache.Cache
}

// NewCachedStore wraps next with a cache whose entries live for ttl.
func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.New(ttl, ttl),
	}
}

// Info implements Store.
func (s *CachedStore) Info(ctx context.Context, signedID string) (Info, error) {
	if v, ok := s.cache.Get(signedID); ok {
		return v.(Info), nil
	}
	info, err := s.next.Info(ctx, signedID)
	if err != nil {
		return Info{}, err
	}
	s.cache.SetDefault(signedID, info)
	return info, nil
}

// Put implements Store.
func (s *CachedStore) Put(ctx context.Context, info Info) (Info, error) {
	info, err := s.next.Put(ctx, info)
	if err != nil {
		return Info{}, err
	}
	s.cache.SetDefault(info.SignedID, info)
	return info, nil
}
