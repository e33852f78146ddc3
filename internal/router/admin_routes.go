package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/guest-seating/internal/handler"    // admin handlers
	"github.com/iliyamo/guest-seating/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	// ---- Tables ----
	g.GET("/tables", h.ListTables)
	g.POST("/tables", h.CreateTable)
	g.PUT("/tables/:number", h.UpdateTable)
	g.PATCH("/tables/:number", h.UpdateTable)
	g.DELETE("/tables/:number", h.DeleteTable) // evicts seated guests first
	g.POST("/tables/:number/compact", h.CompactTable)

	// ---- Guests ----
	g.GET("/guests", h.ListGuests)
	g.POST("/guests", h.CreateGuest)
	g.GET("/guests/resolve", h.ResolveGuest)
	g.DELETE("/guests/:id", h.DeleteGuest)

	// ---- Assignments ----
	g.POST("/assignments", h.CreateAssignment)
	g.PUT("/assignments/:guest_id", h.MoveAssignment)
	g.DELETE("/assignments/:guest_id", h.DeleteAssignment)
	g.DELETE("/checkin/:guest_id", h.UndoCheckIn)

	// ---- Maintenance ----
	g.GET("/duplicates", h.ListDuplicates)
	g.POST("/duplicates/merge", h.MergeDuplicates)
	g.POST("/import", h.Import)
	g.GET("/verify", h.Verify)
	g.GET("/summary", h.Summary)
}
