package handler // handler package contains the administrator table handlers

import (
    "net/http" // http defines status code constants
    "strings"  // strings trims text fields

    "github.com/labstack/echo/v4" // echo framework supplies request context

    "github.com/iliyamo/guest-seating/internal/model"      // table model
    "github.com/iliyamo/guest-seating/internal/repository" // table patch
)

// CreateTable handles POST /v1/tables.
func (h *AdminHandler) CreateTable(c echo.Context) error {
    var body struct {
        Number    int    `json:"number"`
        Name      string `json:"name"`
        Capacity  int    `json:"capacity"`
        IsVIP     bool   `json:"is_vip"`
        ColorCode string `json:"color_code"`
        ColorName string `json:"color_name"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if body.Number <= 0 || body.Capacity < 0 {
        return badRequest(c, "number must be positive and capacity must not be negative")
    }
    t, err := h.Engine.CreateTable(c.Request().Context(), model.Table{
        Number:    body.Number,
        Name:      strings.TrimSpace(body.Name),
        Capacity:  body.Capacity,
        IsVIP:     body.IsVIP,
        ColorCode: strings.TrimSpace(body.ColorCode),
        ColorName: strings.TrimSpace(body.ColorName),
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, t)
}

// ListTables handles GET /v1/tables.
func (h *AdminHandler) ListTables(c echo.Context) error {
    ts, err := h.Engine.ListTables(c.Request().Context())
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, ts)
}

// UpdateTable handles PUT/PATCH /v1/tables/:number.  Only the fields present
// in the body change; a capacity below the seated count is refused.
func (h *AdminHandler) UpdateTable(c echo.Context) error {
    number, ok := tableNumberParam(c)
    if !ok {
        return badRequest(c, "invalid table number")
    }
    var patch repository.TablePatch
    if err := c.Bind(&patch); err != nil {
        return badRequest(c, "invalid request body")
    }
    if patch.Capacity != nil && *patch.Capacity < 0 {
        return badRequest(c, "capacity must not be negative")
    }
    t, err := h.Engine.UpdateTable(c.Request().Context(), number, patch)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, t)
}

// DeleteTable handles DELETE /v1/tables/:number.  Seated guests are evicted
// first and returned so the caller can re-seat them.
func (h *AdminHandler) DeleteTable(c echo.Context) error {
    number, ok := tableNumberParam(c)
    if !ok {
        return badRequest(c, "invalid table number")
    }
    evicted, err := h.Engine.DeleteTable(c.Request().Context(), number)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    if evicted == nil {
        evicted = []model.SeatAssignment{}
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted": number, "evicted": evicted})
}

// CompactTable handles POST /v1/tables/:number/compact.
func (h *AdminHandler) CompactTable(c echo.Context) error {
    number, ok := tableNumberParam(c)
    if !ok {
        return badRequest(c, "invalid table number")
    }
    rep, err := h.Engine.Allocator.Compact(c.Request().Context(), number)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, rep)
}
