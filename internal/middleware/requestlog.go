package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// RequestIDKey is the echo context key holding the request id.
const RequestIDKey = "request_id"

// RequestID propagates X-Request-ID, generating one when the client
// did not send it.
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            rid := c.Request().Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Set(RequestIDKey, rid)
            c.Response().Header().Set(echo.HeaderXRequestID, rid)
            return next(c)
        }
    }
}

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            rid, _ := c.Get(RequestIDKey).(string)
            zap.L().Info("http",
                zap.String("rid", rid),
                zap.String("method", c.Request().Method),
                zap.String("path", c.Request().URL.Path),
                zap.Int("status", c.Response().Status),
                zap.Duration("dur", time.Since(start)),
                zap.String("cache", c.Response().Header().Get("X-Cache")),
            )
            return nil
        }
    }
}
