package config

import "time"

// CacheConfig controls the Redis response cache used on the public catalog
// endpoints (movie lists, show lists, seat maps).  Only successful GET
// responses are cached.  Seat maps change as holds come and go, so the TTL
// should stay short; the default of 5 seconds keeps the seat grid fresh
// while absorbing bursts of identical reads.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int // responses larger than this are not cached
}

// LoadCacheConfig reads cache settings from the environment, applying
// defaults for anything unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 5*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
