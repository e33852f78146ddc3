package handler // handler defines http handlers

import (
    "errors"   // errors matches engine sentinels
    "log/slog" // unexpected failures are logged before answering 500
    "net/http" // http defines status code constants
    "strconv"  // strconv converts path parameters to numbers
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/importer" // batch import
    "github.com/iliyamo/guest-seating/internal/seating"  // seating engine
)

// AdminHandler bundles the seating engine for the administrator endpoints.
type AdminHandler struct {
    Engine     *seating.Engine  // Engine performs every seating operation
    ImportOpts importer.Options // ImportOpts holds the importer defaults
    Log        *slog.Logger     // Log receives unexpected failures
}

// NewAdminHandler constructs a new AdminHandler and panics if the engine is nil.
func NewAdminHandler(engine *seating.Engine, opts importer.Options, log *slog.Logger) *AdminHandler {
    if engine == nil {
        panic("nil engine passed to NewAdminHandler")
    }
    if log == nil {
        log = slog.Default()
    }
    return &AdminHandler{Engine: engine, ImportOpts: opts, Log: log}
}

// tableNumberParam parses the :number path parameter.
func tableNumberParam(c echo.Context) (int, bool) {
    n, err := strconv.Atoi(strings.TrimSpace(c.Param("number")))
    if err != nil || n <= 0 {
        return 0, false
    }
    return n, true
}

// badRequest answers 400 with msg.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps engine errors to HTTP responses.  Rich errors carry their
// detail (candidates, capacity, issues) into the body.
func writeError(c echo.Context, log *slog.Logger, err error) error {
    var amb *seating.AmbiguousError
    var capErr *seating.CapacityError
    var inc *seating.InconsistencyError
    switch {
    case errors.As(err, &amb):
        return c.JSON(http.StatusConflict, echo.Map{"error": "ambiguous", "message": err.Error(), "candidates": amb.Candidates})
    case errors.As(err, &capErr):
        return c.JSON(http.StatusConflict, echo.Map{
            "error": "capacity_exceeded", "message": err.Error(),
            "table_number": capErr.TableNumber, "capacity": capErr.Capacity, "occupied": capErr.Occupied,
        })
    case errors.As(err, &inc):
        return c.JSON(http.StatusConflict, echo.Map{"error": "inconsistent_state", "message": err.Error(), "issues": inc.Issues})
    case errors.Is(err, seating.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
    case errors.Is(err, seating.ErrInvalidToken):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_token", "message": err.Error()})
    case errors.Is(err, seating.ErrAmbiguous):
        return c.JSON(http.StatusConflict, echo.Map{"error": "ambiguous", "message": err.Error()})
    case errors.Is(err, seating.ErrCapacityExceeded):
        return c.JSON(http.StatusConflict, echo.Map{"error": "capacity_exceeded", "message": err.Error()})
    case errors.Is(err, seating.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": err.Error()})
    case errors.Is(err, seating.ErrInconsistentState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "inconsistent_state", "message": err.Error()})
    }
    log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
