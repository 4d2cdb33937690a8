package chat

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospicetrack/hospicetrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/messages", h.List)
	api.POST("/patients/:id/messages", h.Post)
	api.DELETE("/patients/:id/messages", h.Clear)
}

func (h *Handler) mapErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrInvalidMessage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) List(c echo.Context) error {
	msgs, err := h.svc.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) Post(c echo.Context) error {
	var body struct {
		Author string `json:"author"`
		Kind   string `json:"kind"`
		Body   string `json:"body"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Kind == "" {
		body.Kind = KindChat
	}
	if body.Author == "" {
		body.Author = auth.UserIDFromContext(c.Request().Context())
	}
	msg, err := h.svc.Post(c.Request().Context(), c.Param("id"), body.Author, body.Kind, body.Body)
	if err != nil {
		return h.mapErr(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) Clear(c echo.Context) error {
	if err := h.svc.Clear(c.Request().Context(), c.Param("id")); err != nil {
		return h.mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}
