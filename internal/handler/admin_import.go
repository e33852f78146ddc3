package handler

import (
    "io"       // io reads the uploaded plan
    "net/http" // http defines status code constants
    "strconv"  // strconv parses the move flag
    "strings"  // strings trims request fields

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/guest-seating/internal/importer" // batch import
)

// maxImportBytes bounds an uploaded seating plan.
const maxImportBytes = 4 << 20

// Import handles POST /v1/import.  The plan is either a multipart "file"
// field or the raw request body.  ?move=true reassigns guests seated at
// another table.  Per-line failures are reported in the result; the request
// itself only fails when the plan cannot be read.
func (h *AdminHandler) Import(c echo.Context) error {
    var src io.Reader
    if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
        fh, err := c.FormFile("file")
        if err != nil {
            return badRequest(c, "file field is required")
        }
        f, err := fh.Open()
        if err != nil {
            return badRequest(c, "cannot open uploaded file")
        }
        defer f.Close()
        src = f
    } else {
        src = c.Request().Body
    }

    opts := h.ImportOpts
    if v := c.QueryParam("move"); v != "" {
        move, err := strconv.ParseBool(v)
        if err != nil {
            return badRequest(c, "move must be a boolean")
        }
        opts.Move = move
    }

    res, err := importer.New(h.Engine, opts, h.Log).Import(c.Request().Context(), io.LimitReader(src, maxImportBytes))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, res)
}
