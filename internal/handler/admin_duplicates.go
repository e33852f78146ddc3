package handler

import (
    "net/http" // http defines status code constants
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/seating" // seating engine
)

// ListDuplicates handles GET /v1/duplicates.  With ?last_name= it lists the
// records a merge on that pattern would consider; without it, every group of
// guests sharing a folded full name.
func (h *AdminHandler) ListDuplicates(c echo.Context) error {
    ctx := c.Request().Context()
    if pattern := strings.TrimSpace(c.QueryParam("last_name")); pattern != "" {
        gs, err := h.Engine.Directory.FindDuplicatesOf(ctx, pattern)
        if err != nil {
            return writeError(c, h.Log, err)
        }
        return c.JSON(http.StatusOK, echo.Map{"pattern": pattern, "guests": gs})
    }
    groups, err := h.Engine.Directory.DetectDuplicateGroups(ctx)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    if groups == nil {
        groups = []seating.DuplicateGroup{}
    }
    return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// MergeDuplicates handles POST /v1/duplicates/merge.
func (h *AdminHandler) MergeDuplicates(c echo.Context) error {
    var body struct {
        LastName string `json:"last_name"`
        seating.MergeOptions
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if strings.TrimSpace(body.LastName) == "" {
        return badRequest(c, "last_name is required")
    }
    rep, err := h.Engine.Duplicates.Resolve(c.Request().Context(), strings.TrimSpace(body.LastName), body.MergeOptions)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, rep)
}
