package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
    Ping(ctx context.Context) error
}

// Health returns a health-check handler used by load balancers and
// monitoring.  It answers "ok" with 200 while the database responds to
// a ping and 503 otherwise.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.Ping(ctx); err != nil {
            zap.L().Warn("health check: database unreachable", zap.Error(err))
            return c.String(http.StatusServiceUnavailable, "database unavailable")
        }
        return c.String(http.StatusOK, "ok")
    }
}
