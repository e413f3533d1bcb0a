package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/beverage-reservation/internal/config"
)

// tokenBucket refills whole intervals lazily on each call and takes one
// token if available.  Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key      = KEYS[1]
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill   = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', key, 'tokens'))
local last   = tonumber(redis.call('HGET', key, 'ts'))
if tokens == nil or last == nil then
  tokens = capacity
  last = now
end

local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  last = last + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.max(0, interval - (now - last))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket limits requests per key with a Redis token bucket.
// Rejected requests get 429 with Retry-After.  When Redis is
// unavailable requests are let through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            res, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                zap.L().Warn("ratelimit: script failed, allowing request", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if allowed {
                return next(c)
            }
            secs := (waitMs + 999) / 1000
            h.Set("Retry-After", strconv.FormatInt(secs, 10))
            if cfg.Debug {
                zap.L().Debug("ratelimit: blocked", zap.String("key", key), zap.Int64("retry_ms", waitMs))
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{"msg": "rate limit exceeded"})
        }
    }
}

// rateKey builds the bucket key.  Strategies: "ip", "route" and the
// default "ip_route".
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()
    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "route":
        parts = append(parts, "route", route)
    default:
        parts = append(parts, "ip", ip, "route", route)
    }
    return strings.Join(parts, ":")
}
