package middleware

// identity.go defines helpers shared across middleware files for naming the
// caller: the administrator subject when JWTAuth ran, the client IP
// otherwise.

import (
    "github.com/labstack/echo/v4"
)

// userID returns the authenticated subject, or "anon" when the request did
// not pass through JWTAuth.
func userID(c echo.Context) string {
    if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
        return s
    }
    return "anon"
}

// clientIP returns the real client IP, "unknown" when it cannot be derived.
func clientIP(c echo.Context) string {
    if ip := c.RealIP(); ip != "" {
        return ip
    }
    return "unknown"
}
