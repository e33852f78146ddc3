package handler

import (
    "net/http" // http defines status code constants
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/seating" // seating engine
)

// assignReq names a guest by id or by name plus the target table.
type assignReq struct {
    GuestID     string `json:"guest_id"`
    FirstName   string `json:"first_name"`
    LastName    string `json:"last_name"`
    TableNumber int    `json:"table_number"`
}

// CreateAssignment handles POST /v1/assignments.  A guest named by name is
// resolved additively: the best candidate is taken and a fuzzy pick is logged.
func (h *AdminHandler) CreateAssignment(c echo.Context) error {
    var req assignReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if req.TableNumber <= 0 {
        return badRequest(c, "table_number must be positive")
    }
    ctx := c.Request().Context()
    guestID := strings.TrimSpace(req.GuestID)
    var res *seating.Resolution
    if guestID == "" {
        if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.LastName) == "" {
            return badRequest(c, "guest_id or a name is required")
        }
        g, r, err := h.Engine.Directory.ResolveForAssignment(ctx, req.FirstName, req.LastName)
        if err != nil {
            return writeError(c, h.Log, err)
        }
        guestID, res = g.ID, &r
    }
    alloc, err := h.Engine.Allocator.Assign(ctx, guestID, req.TableNumber)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    status := http.StatusCreated
    if alloc.Outcome == seating.OutcomeAlreadyAssigned {
        status = http.StatusOK
    }
    body := echo.Map{"allocation": alloc}
    if res != nil {
        body["resolution"] = res
    }
    return c.JSON(status, body)
}

// MoveAssignment handles PUT /v1/assignments/:guest_id.
func (h *AdminHandler) MoveAssignment(c echo.Context) error {
    var body struct {
        TableNumber int `json:"table_number"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if body.TableNumber <= 0 {
        return badRequest(c, "table_number must be positive")
    }
    alloc, err := h.Engine.Allocator.Reassign(c.Request().Context(), c.Param("guest_id"), body.TableNumber)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, alloc)
}

// DeleteAssignment handles DELETE /v1/assignments/:guest_id.
func (h *AdminHandler) DeleteAssignment(c echo.Context) error {
    removed, err := h.Engine.Allocator.Unassign(c.Request().Context(), c.Param("guest_id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

// UndoCheckIn handles DELETE /v1/checkin/:guest_id.
func (h *AdminHandler) UndoCheckIn(c echo.Context) error {
    g, err := h.Engine.Desk.UndoCheckIn(c.Request().Context(), c.Param("guest_id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, g)
}
