package config

import "time"

// RateLimitConfig tunes the Redis token bucket in front of the write
// endpoints (signup, login, orders, reservations).  A bucket holds
// Capacity tokens and regains RefillTokens every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this
    KeyStrategy    string        // "ip", "route" or "ip_route"
    Prefix         string
    Debug          bool // expose the bucket key in X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps values
// that would disable the bucket by accident.  TTL is kept at least five
// refill intervals so a bucket is not dropped while it is refilling.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       max(envInt("RATE_LIMIT_CAPACITY", 30), 1),
        RefillTokens:   max(envInt("RATE_LIMIT_REFILL_TOKENS", 1), 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
    return rl
}
