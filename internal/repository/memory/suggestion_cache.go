package memory

import (
	"time"

	"roomlink-be/internal/model"

	"github.com/patrickmn/go-cache"
)

const snapshotKey = "suggestions"

// SuggestionCache holds short-lived immutable snapshots of the hint table so
// hot chat traffic does not hit the database on every message. Each lookup
// gets the snapshot it was handed; a concurrently refreshed table simply
// shows up on the next snapshot.
type SuggestionCache struct {
	cache *cache.Cache
}

func NewSuggestionCache(ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *SuggestionCache) Get() ([]model.CommandSuggestion, bool) {
	if x, found := c.cache.Get(snapshotKey); found {
		return x.([]model.CommandSuggestion), true
	}
	return nil, false
}

func (c *SuggestionCache) Set(entries []model.CommandSuggestion) {
	c.cache.Set(snapshotKey, entries, cache.DefaultExpiration)
}
