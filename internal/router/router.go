package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beverage-reservation/internal/handler"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Catalog      *handler.CatalogHandler
	Accounts     *handler.AccountHandler
	Orders       *handler.OrderHandler
	Reservations *handler.ReservationHandler
	DB           handler.Pinger
}

// RegisterRoutes mounts the /api surface and the health check.  Catalog
// reads go through cache; writes go through limit.
func RegisterRoutes(e *echo.Echo, h Handlers, cache, limit echo.MiddlewareFunc) {
	// Load balancers probe this; it pings the database.
	e.GET("/healthz", handler.Health(h.DB))

	api := e.Group("/api")

	// Catalog changes only through provisioning, so responses are cached.
	catalog := api.Group("", cache)
	catalog.GET("/getAllBranches", h.Catalog.GetAllBranches)
	catalog.GET("/getAllRecipes", h.Catalog.GetAllRecipes)
	catalog.GET("/getAllTypes", h.Catalog.GetAllTypes)
	catalog.GET("/getItems", h.Catalog.GetItems)

	// Availability depends on live reservations; never cached.
	api.GET("/getAvailableBranches", h.Reservations.GetAvailableBranches)
	api.GET("/getReservations", h.Reservations.GetReservations)

	writes := api.Group("", limit)
	writes.POST("/login", h.Accounts.Login)
	writes.POST("/signup", h.Accounts.Signup)
	writes.POST("/postOrder", h.Orders.PostOrder)
	writes.POST("/postCustomizedOrder", h.Orders.PostCustomizedOrder)
	writes.POST("/postReservation", h.Reservations.PostReservation)
}
