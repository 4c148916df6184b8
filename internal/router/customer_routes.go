package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// RegisterCustomer registers the reservation endpoints.  Middleware is
// attached per route because /v1 is shared with the public group.
// limiter guards the write paths.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	authed := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	}
	writes := append(authed[:len(authed):len(authed)], limiter)

	e.POST("/v1/showings/:id/reservations", h.Reserve, writes...)
	e.DELETE("/v1/reservations/:id", h.Cancel, writes...)
	e.GET("/v1/my-reservations", h.ListMine, authed...)
}
