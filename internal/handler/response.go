// Package handler exposes the HTTP handlers of the public API.  Every
// handler answers with JSON; failures carry a short "msg".
package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/beverage-reservation/internal/service"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

// clientErrors are reported to the caller by their own message.  Order
// matters: the specific not-found errors precede the generic one.
var clientErrors = []error{
    service.ErrMemberNotFound,
    service.ErrBranchNotFound,
    service.ErrRecipeNotFound,
    service.ErrItemNotFound,
    service.ErrIngredientNotFound,
    service.ErrNotFound,
    service.ErrDuplicateAccount,
    service.ErrCapacityExceeded,
    service.ErrInvalidCredentials,
}

// ErrorResponder maps service errors onto HTTP responses.
type ErrorResponder struct {
    // RetryAfter is advertised on 409 responses caused by lock contention.
    RetryAfter time.Duration
}

// Fail writes the response for err.  Client mistakes become 400,
// contention 409 with a Retry-After header and everything else 500.
func (r ErrorResponder) Fail(c echo.Context, err error) error {
    if errors.Is(err, service.ErrContention) {
        secs := int(r.RetryAfter.Round(time.Second) / time.Second)
        if secs < 1 {
            secs = 1
        }
        c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
        return c.JSON(http.StatusConflict, echo.Map{"msg": service.ErrContention.Error()})
    }
    if errors.Is(err, service.ErrValidation) {
        return c.JSON(http.StatusBadRequest, echo.Map{"msg": err.Error()})
    }
    for _, known := range clientErrors {
        if errors.Is(err, known) {
            return c.JSON(http.StatusBadRequest, echo.Map{"msg": known.Error()})
        }
    }
    zap.L().Error("request failed",
        zap.String("method", c.Request().Method),
        zap.String("path", c.Path()),
        zap.Error(err))
    return c.JSON(http.StatusInternalServerError, echo.Map{"msg": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"msg": msg})
}
