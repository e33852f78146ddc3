// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public seating views and the door check-in.  Views
// only expose names and seats; contact details never leave the admin API.

package handler

import (
    "log/slog" // slog logs unexpected failures
    "net/http" // http defines status code constants
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/model"   // seating read-models
    "github.com/iliyamo/guest-seating/internal/seating" // seating engine
)

// PublicHandler serves the read-models and the check-in scanner.
type PublicHandler struct {
    Engine *seating.Engine
    Log    *slog.Logger
}

func NewPublicHandler(engine *seating.Engine, log *slog.Logger) *PublicHandler {
    if log == nil {
        log = slog.Default()
    }
    return &PublicHandler{Engine: engine, Log: log}
}

// TablesStatus handles GET /v1/tables/status.
func (p *PublicHandler) TablesStatus(c echo.Context) error {
    snap, err := p.Engine.Views.Materialize(c.Request().Context())
    if err != nil {
        return writeError(c, p.Log, err)
    }
    return c.JSON(http.StatusOK, snap.Tables)
}

// TableStatus handles GET /v1/tables/:number/status.
func (p *PublicHandler) TableStatus(c echo.Context) error {
    number, ok := tableNumberParam(c)
    if !ok {
        return badRequest(c, "invalid table number")
    }
    ts, err := p.Engine.Views.TableStatus(c.Request().Context(), number)
    if err != nil {
        return writeError(c, p.Log, err)
    }
    return c.JSON(http.StatusOK, ts)
}

// GuestsStatus handles GET /v1/guests/status, optionally filtered by
// ?status=unassigned|assigned|checked_in.
func (p *PublicHandler) GuestsStatus(c echo.Context) error {
    snap, err := p.Engine.Views.Materialize(c.Request().Context())
    if err != nil {
        return writeError(c, p.Log, err)
    }
    want := strings.TrimSpace(c.QueryParam("status"))
    out := make([]model.GuestStatus, 0, len(snap.Guests))
    for _, g := range snap.Guests {
        if want == "" || string(g.Status) == want {
            out = append(out, publicGuest(g))
        }
    }
    return c.JSON(http.StatusOK, out)
}

// publicGuest drops the check-in token; only the seated guest should hold it.
func publicGuest(gs model.GuestStatus) model.GuestStatus {
    gs.CheckInToken = ""
    return gs
}

// GuestStatus handles GET /v1/guests/:id/status.
func (p *PublicHandler) GuestStatus(c echo.Context) error {
    gs, err := p.Engine.Views.GuestStatus(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeError(c, p.Log, err)
    }
    return c.JSON(http.StatusOK, publicGuest(gs))
}

// CheckIn handles POST /v1/checkin with {"token": "..."}.  A repeated scan
// answers 200 with already_checked_in set.
func (p *PublicHandler) CheckIn(c echo.Context) error {
    var body struct {
        Token string `json:"token"`
    }
    if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Token) == "" {
        return badRequest(c, "token is required")
    }
    res, err := p.Engine.Desk.CheckIn(c.Request().Context(), body.Token)
    if err != nil {
        return writeError(c, p.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "guest_name":         res.Guest.FullName(),
        "table_number":       res.Seat.TableNumber,
        "table_name":         res.TableName,
        "seat_number":        res.Seat.SeatNumber,
        "already_checked_in": res.AlreadyCheckedIn,
        "checked_in_at":      res.Guest.CheckedInAt,
    })
}
