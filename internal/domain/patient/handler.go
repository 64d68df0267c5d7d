package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediscript/mediscript/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("doctor"))
	g.GET("/patients", h.List)
	g.POST("/patients", h.Create)
}

func (h *Handler) Create(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Create(c.Request().Context(), claims.UserID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	patients, err := h.svc.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}
