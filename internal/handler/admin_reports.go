package handler

import (
    "errors"   // errors matches engine sentinels
    "net/http" // http defines status code constants

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/seating" // seating engine
)

// Verify handles GET /v1/verify.  A failed verification is still a report:
// it is returned with 409 and the issue list, and nothing is repaired.
func (h *AdminHandler) Verify(c echo.Context) error {
    rep, err := h.Engine.Views.Verify(c.Request().Context())
    if errors.Is(err, seating.ErrInconsistentState) {
        return c.JSON(http.StatusConflict, rep)
    }
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, rep)
}

// Summary handles GET /v1/summary.
func (h *AdminHandler) Summary(c echo.Context) error {
    sum, err := h.Engine.Views.Summary(c.Request().Context())
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, sum)
}
