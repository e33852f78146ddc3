package handler

import (
    "net/http" // http defines status code constants
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/model" // seating read-models
)

// CreateGuest handles POST /v1/guests.
func (h *AdminHandler) CreateGuest(c echo.Context) error {
    var body struct {
        FirstName string  `json:"first_name"`
        LastName  string  `json:"last_name"`
        Email     *string `json:"email"`
        Phone     *string `json:"phone"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    first, last := strings.TrimSpace(body.FirstName), strings.TrimSpace(body.LastName)
    if first == "" || last == "" {
        return badRequest(c, "first_name and last_name are required")
    }
    g, err := h.Engine.Directory.CreateGuest(c.Request().Context(), model.Guest{
        FirstName: first, LastName: last, Email: body.Email, Phone: body.Phone,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, g)
}

// ListGuests handles GET /v1/guests.
func (h *AdminHandler) ListGuests(c echo.Context) error {
    gs, err := h.Engine.Directory.Guests(c.Request().Context())
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, gs)
}

// DeleteGuest handles DELETE /v1/guests/:id; the seat goes first.
func (h *AdminHandler) DeleteGuest(c echo.Context) error {
    id := strings.TrimSpace(c.Param("id"))
    if err := h.Engine.Directory.DeleteGuest(c.Request().Context(), id); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ResolveGuest handles GET /v1/guests/resolve?first_name=&last_name=.  An
// ambiguous reference is not an error here; all candidates are listed.
func (h *AdminHandler) ResolveGuest(c echo.Context) error {
    first := strings.TrimSpace(c.QueryParam("first_name"))
    last := strings.TrimSpace(c.QueryParam("last_name"))
    if first == "" && last == "" {
        return badRequest(c, "first_name or last_name is required")
    }
    res, err := h.Engine.Directory.Resolve(c.Request().Context(), first, last)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "resolution": res,
        "fallback":   res.Fallback(),
        "ambiguous":  res.Ambiguous(),
    })
}
