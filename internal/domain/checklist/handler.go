package checklist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/tasks", h.Tasks)
	api.GET("/patients/:id/progress", h.Progress)
	api.POST("/patients/:id/tasks/:task/subtasks/:sub/toggle", h.ToggleSubtask)
	api.POST("/patients/:id/tasks/:task/subtasks/:sub/items/:item/toggle", h.ToggleSubSubtask)
	api.PUT("/patients/:id/tasks/:task/subtasks/:sub/items/:item/input", h.UpdateInput)
	api.POST("/tasks/mark-all-complete", h.MarkAllComplete)
}

func indexParam(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" index")
	}
	return n, nil
}

func (h *Handler) mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "nothing changed: patient or checklist item not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) Tasks(c echo.Context) error {
	tasks, err := h.svc.Tasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) Progress(c echo.Context) error {
	progress, err := h.svc.Progress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"progress": progress})
}

func (h *Handler) ToggleSubtask(c echo.Context) error {
	taskIdx, err := indexParam(c, "task")
	if err != nil {
		return err
	}
	subIdx, err := indexParam(c, "sub")
	if err != nil {
		return err
	}
	if err := h.svc.ToggleSubtask(c.Request().Context(), c.Param("id"), taskIdx, subIdx); err != nil {
		return h.mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleSubSubtask(c echo.Context) error {
	taskIdx, err := indexParam(c, "task")
	if err != nil {
		return err
	}
	subIdx, err := indexParam(c, "sub")
	if err != nil {
		return err
	}
	itemIdx, err := indexParam(c, "item")
	if err != nil {
		return err
	}
	if err := h.svc.ToggleSubSubtask(c.Request().Context(), c.Param("id"), taskIdx, subIdx, itemIdx); err != nil {
		return h.mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateInput(c echo.Context) error {
	taskIdx, err := indexParam(c, "task")
	if err != nil {
		return err
	}
	subIdx, err := indexParam(c, "sub")
	if err != nil {
		return err
	}
	itemIdx, err := indexParam(c, "item")
	if err != nil {
		return err
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.UpdateSubSubtaskInput(c.Request().Context(), c.Param("id"), taskIdx, subIdx, itemIdx, body.Value); err != nil {
		return h.mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllComplete(c echo.Context) error {
	var body struct {
		PatientName string `json:"patient_name"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.PatientName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_name is required")
	}
	if err := h.svc.MarkAllComplete(c.Request().Context(), body.PatientName); err != nil {
		return h.mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}
