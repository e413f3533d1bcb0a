package middleware

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/beverage-reservation/internal/config"
)

// captureWriter tees the response body into a bounded buffer while
// forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.truncated = true
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is what is stored in Redis per key.
type cachedResponse struct {
    Status      int    `json:"s"`
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

// cacheKey derives a fixed-length key from the route and, unless the
// strategy is "route", the raw query string.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    material := c.Request().Method + " " + c.Path()
    if !strings.EqualFold(cfg.KeyStrategy, "route") {
        material += "?" + c.Request().URL.RawQuery
    }
    sum := sha256.Sum256([]byte(material))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:16])
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache caches successful catalog responses in Redis for
// cfg.TTL.  Hits are replayed byte for byte with X-Cache: HIT.  Redis
// failures degrade to uncached responses.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[c.Request().Method] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    h := c.Response().Header()
                    h.Set(echo.HeaderContentType, hit.ContentType)
                    h.Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            } else if err != redis.Nil {
                zap.L().Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      cw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                zap.L().Warn("cache: redis set failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}
