package consult

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediscript/mediscript/internal/domain/patient"
	"github.com/mediscript/mediscript/internal/platform/auth"
	"github.com/mediscript/mediscript/pkg/pagination"
)

// maxAudioBytes caps uploaded recordings at 25 MB, the transcription
// API's own limit.
const maxAudioBytes = 25 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("doctor"))
	g.POST("/record", h.Record)
	g.GET("/conversations", h.List)
	g.GET("/conversations/:id", h.Get)
}

// Record accepts a multipart form with an "audio" file and a "patient_id"
// field, and runs the consultation pipeline on it.
func (h *Handler) Record(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	patientID, err := uuid.Parse(c.FormValue("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}
	if fh.Size > maxAudioBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "audio file exceeds 25MB")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read audio file")
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read audio file")
	}

	res, err := h.svc.RecordConsultation(c.Request().Context(), claims.UserID, patientID, audio, fh.Filename)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) List(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	page := pagination.FromContext(c)

	items, total, err := h.svc.List(c.Request().Context(), claims.UserID, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list conversations")
	}
	if items == nil {
		items = []ListItem{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}
	d, err := h.svc.Get(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func mapError(err error) error {
	var genErr *GenerationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrEmptyTranscript):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no speech detected in the recording")
	case errors.As(err, &genErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "could not generate a valid prescription from this consultation")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "consultation processing failed")
	}
}
