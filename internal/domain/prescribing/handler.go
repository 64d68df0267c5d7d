package prescribing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	g.GET("/prescriptions/:id", h.Get)
	g.PATCH("/prescriptions/:id", h.Update)
	g.GET("/prescriptions/:id/audit", h.AuditTrail)
	g.GET("/prescriptions/:id/pdf", h.PDF)
}

// updateRequest is the PATCH payload: row edits and/or a status change.
// `"status": "approved"` finalizes the draft; edits and approval may be
// combined in one request.
type updateRequest struct {
	DraftUpdate
	Status *string `json:"status"`
}

func (h *Handler) Get(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	d, err := h.svc.Get(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Update(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status != nil && *req.Status != StatusApproved {
		return echo.NewHTTPError(http.StatusBadRequest, "status can only be changed to approved")
	}

	ctx := c.Request().Context()
	d, err := h.svc.UpdateDraft(ctx, claims.UserID, id, req.DraftUpdate)
	if err != nil {
		return mapError(err)
	}
	if req.Status != nil {
		d, err = h.svc.Approve(ctx, claims.UserID, id)
		if err != nil {
			return mapError(err)
		}
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) AuditTrail(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	logs, err := h.svc.AuditTrail(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return mapError(err)
	}
	if logs == nil {
		logs = []AuditLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) PDF(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	doc, err := h.svc.RenderPDF(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return mapError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`inline; filename="prescription-`+id.String()+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	case errors.Is(err, ErrNotDraft):
		return echo.NewHTTPError(http.StatusConflict, "prescription has already been approved")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "prescription operation failed")
	}
}
