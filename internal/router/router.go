package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                             // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus"          // metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // metrics exposition

	"github.com/iliyamo/guest-seating/internal/handler"    // import the handlers that implement the seating API
	"github.com/iliyamo/guest-seating/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication and
// do not touch seating data: liveness, readiness and the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAuth registers the login endpoint under /v1/auth and the
// protected /v1/me echo endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(middleware.RoleAdmin))
}

// RegisterPublic registers the unauthenticated seating views and the door
// check-in.  Views go through the Redis cache; check-in goes through the
// token bucket.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache *middleware.ViewCache, limiter echo.MiddlewareFunc) {
	views := cache.Middleware()
	e.GET("/v1/tables/status", p.TablesStatus, views)
	e.GET("/v1/tables/:number/status", p.TableStatus, views)
	e.GET("/v1/guests/status", p.GuestsStatus, views)
	e.GET("/v1/guests/:id/status", p.GuestStatus, views)

	if limiter == nil {
		e.POST("/v1/checkin", p.CheckIn)
		return
	}
	e.POST("/v1/checkin", p.CheckIn, limiter)
}
