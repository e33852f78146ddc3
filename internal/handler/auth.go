package handler

import (
    "crypto/subtle" // constant-time comparison of the login name
    "net/http"      // HTTP status codes and primitives
    "strings"       // string manipulation utilities
    "time"          // expiry in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/guest-seating/internal/config"     // app configuration
    "github.com/iliyamo/guest-seating/internal/middleware" // role constant and context keys
    "github.com/iliyamo/guest-seating/internal/utils"      // password checks and token issuing
)

// AuthHandler issues admin access tokens.  The single administrator is
// configured through ADMIN_USER and ADMIN_PASSWORD_HASH.
type AuthHandler struct {
    Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type authResp struct {
    User   string    `json:"user"`
    Role   string    `json:"role"`
    Access tokenPart `json:"access"`
}

// Login: verify the admin credentials and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.AdminUser)) == 1
    passOK := utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
    if !userOK || !passOK {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.Cfg.AdminUser, middleware.RoleAdmin, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, authResp{
        User:   h.Cfg.AdminUser,
        Role:   middleware.RoleAdmin,
        Access: tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me echoes the authenticated subject and role (protected).
func (h *AuthHandler) Me(c echo.Context) error {
    user, _ := c.Get(middleware.CtxUserID).(string)
    role, _ := c.Get(middleware.CtxRole).(string)
    return c.JSON(http.StatusOK, echo.Map{"user": user, "role": role})
}
