package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// RegisterAdmin registers catalog management, account management and
// reporting under /v1/admin.  Every route requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, u *handler.UserAdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.POST("/movies", h.CreateMovie)
	g.GET("/movies", h.ListMovies)
	g.PUT("/movies/:id", h.UpdateMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)

	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms", h.ListRooms)
	g.DELETE("/rooms/:id", h.DeleteRoom)

	g.POST("/showings", h.CreateShowing)
	g.PUT("/showings/:id", h.UpdateShowing)
	g.DELETE("/showings/:id", h.DeleteShowing)
	g.GET("/showings/:id/reservations", h.ListShowingReservations)

	g.GET("/stats", h.Stats)

	g.GET("/users", u.ListUsers)
	g.POST("/users", u.CreateUser)
	g.PATCH("/users/:id", u.UpdateUser)
	g.DELETE("/users/:id", u.DeleteUser)
}
