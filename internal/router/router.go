package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Health   echo.HandlerFunc
	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Buddies  *handler.BuddyHandler
	Movies   *handler.MovieHandler
	Food     *handler.FoodHandler
	Events   *handler.EventsHandler
}

// Security holds what the protected groups need to authenticate callers.
type Security struct {
	JWTSecret string
	Revoked   middleware.RevocationChecker
	// MovieCache wraps the public catalog reads; nil disables it.
	MovieCache echo.MiddlewareFunc
}

// RegisterRoutes mounts the whole API on e.
func RegisterRoutes(e *echo.Echo, h Handlers, sec Security) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := middleware.JWTAuth(sec.JWTSecret, sec.Revoked)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := e.Group("/api")
	api.GET("/events", h.Events.Stream)

	a := api.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.GET("/me", h.Auth.Me, auth)
	a.POST("/logout", h.Auth.Logout, auth)

	registerMovies(api, h.Movies, sec.MovieCache, auth, adminOnly)

	// booked-seats is public so the seat picker works before login.
	api.GET("/bookings/booked-seats", h.Bookings.BookedSeats)
	b := api.Group("/bookings", auth)
	b.POST("", h.Bookings.Create)
	b.GET("", h.Bookings.List)
	b.GET("/:id", h.Bookings.Get)
	b.PUT("/:id", h.Bookings.Update)
	b.DELETE("/:id", h.Bookings.Delete)

	mb := api.Group("/movie-buddies", auth)
	mb.POST("/update", h.Buddies.Update)
	mb.GET("/find", h.Buddies.Find)
	mb.GET("/all", h.Buddies.All)
	mb.GET("/me", h.Buddies.Mine)
	mb.DELETE("/:movieName/:movieDate/:movieTime", h.Buddies.DeleteGroup, adminOnly)

	f := api.Group("/food-orders", auth)
	f.POST("", h.Food.Place)
	f.GET("", h.Food.List)
	f.GET("/:id", h.Food.Get)
	f.DELETE("/:id", h.Food.Cancel)
}

func registerMovies(api *echo.Group, h *handler.MovieHandler, cache, auth, adminOnly echo.MiddlewareFunc) {
	var reads []echo.MiddlewareFunc
	if cache != nil {
		reads = append(reads, cache)
	}
	api.GET("/movies", h.List, reads...)
	api.GET("/movies/:id", h.Get, reads...)

	m := api.Group("/movies", auth, adminOnly)
	m.POST("", h.Create)
	m.PUT("/:id", h.Update)
	m.DELETE("/:id", h.Delete)
}
