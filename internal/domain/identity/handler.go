package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediscript/mediscript/internal/platform/auth"
)

type Handler struct {
	svc          *Service
	tokens       *auth.Tokens
	secureCookie bool
}

func NewHandler(svc *Service, tokens *auth.Tokens, secureCookie bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, secureCookie: secureCookie}
}

// RegisterRoutes wires the public auth endpoints and the authenticated
// session endpoints.
func (h *Handler) RegisterRoutes(public *echo.Group, authed *echo.Group) {
	public.POST("/auth/signup", h.Signup)
	public.POST("/auth/login", h.Login)
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Signup(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if errors.Is(err, ErrEmailTaken) {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.setSession(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err := h.setSession(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(auth.ClearSessionCookie(h.secureCookie))
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) Me(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	u, err := h.svc.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) setSession(c echo.Context, u *User) error {
	token, err := h.tokens.Issue(u.ID, u.Name, u.Email, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session")
	}
	c.SetCookie(auth.SessionCookie(token, h.secureCookie))
	return nil
}
