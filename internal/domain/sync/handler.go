package sync

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const workbookMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/sync/refresh", h.Refresh)
	api.GET("/sync/export", h.Export)
	api.POST("/sync/import", h.Import)
}

// Refresh pulls the sheet backend snapshot and returns the resulting
// active collection.
func (h *Handler) Refresh(c echo.Context) error {
	patients, err := h.svc.FetchActivePatients(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) Export(c echo.Context) error {
	data, err := h.svc.ExportWorkbook(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="patients.xlsx"`)
	return c.Blob(http.StatusOK, workbookMIME, data)
}

func (h *Handler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing workbook file")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	count, err := h.svc.ImportWorkbook(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": count})
}
