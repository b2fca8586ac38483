package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ModawnAI/everything-backend-sub017/internal/handler"
	"github.com/ModawnAI/everything-backend-sub017/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the reservation and points endpoints.
// Every route requires a valid bearer token; the reservation write
// endpoints additionally pass through a per-actor rate limit so one
// client hammering a popular slot cannot crowd out everyone else
// (rdb may be nil, which disables the limiter).
func RegisterBooking(e *echo.Echo, r *handler.ReservationHandler, p *handler.PointsHandler, jwtSecret string, rdb *redis.Client) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	limited := auth.Group("")
	limited.Use(middleware.RateLimit(rdb, 30, time.Minute))
	limited.POST("/reservations", r.Create)
	limited.POST("/reservations/:id/transition", r.Transition)
	limited.POST("/reservations/:id/reschedule", r.Reschedule)

	auth.GET("/reservations/:id", r.Get)
	auth.GET("/reservations/:id/logs", r.StatusLog)
	auth.GET("/my-reservations", r.ListMine)

	auth.POST("/points/transactions", p.Record)
	auth.POST("/points/transactions/:id/complete", p.Complete)
	auth.POST("/points/transactions/:id/cancel", p.Cancel)
	auth.GET("/points/balance", p.Balance)
	auth.GET("/points/transactions", p.History)
}

// RegisterShopAdmin registers the shop approval workflow endpoints.
// They live under /v1/admin and demand the ADMIN role on top of a
// valid token.
func RegisterShopAdmin(e *echo.Echo, s *handler.ShopAdminHandler, jwtSecret string) {
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/shops/:id/transition", s.Transition)
	admin.GET("/shops/:id", s.Get)
	admin.GET("/shops/:id/logs", s.ApprovalLog)
}
