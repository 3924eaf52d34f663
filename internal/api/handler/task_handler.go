package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/assignment-system/internal/api/metrics"
	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// TaskHandler handles HTTP requests for the task workflow.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type reworkRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type updateTaskRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Importance  *string `json:"importance"`
	Deadline    *string `json:"deadline"`
}

// transitionResponse reports a workflow outcome. A rejected transition is a
// 200 with applied=false: it is business feedback, not a fault.
type transitionResponse struct {
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// Get handles GET /v1/tasks/:title.
//
// @Summary      Get a task by title
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string  true  "Task title"
// @Success      200    {object}  domain.Task
// @Failure      404    {object}  map[string]string
// @Router       /v1/tasks/{title} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.GetTask(c.Request().Context(), c.Param("title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// StartWork handles PUT /v1/tasks/:title/start.
//
// @Summary      Start work on a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string  true  "Task title"
// @Success      200    {object}  transitionResponse
// @Failure      404    {object}  map[string]string
// @Router       /v1/tasks/{title}/start [put]
func (h *TaskHandler) StartWork(c echo.Context) error {
	result, err := h.service.StartWork(c.Request().Context(), c.Param("title"))
	return h.respond(c, "start_work", result, err)
}

// Complete handles PUT /v1/tasks/:title/complete.
//
// @Summary      Mark a task as completed
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string  true  "Task title"
// @Success      200    {object}  transitionResponse
// @Failure      404    {object}  map[string]string
// @Router       /v1/tasks/{title}/complete [put]
func (h *TaskHandler) Complete(c echo.Context) error {
	result, err := h.service.Complete(c.Request().Context(), c.Param("title"))
	return h.respond(c, "complete", result, err)
}

// SendToRework handles PUT /v1/tasks/:title/rework.
//
// @Summary      Send a completed task back to rework
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string         true  "Task title"
// @Param        body   body      reworkRequest  true  "Reviewer comment"
// @Success      200    {object}  transitionResponse
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/tasks/{title}/rework [put]
func (h *TaskHandler) SendToRework(c echo.Context) error {
	var req reworkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.SendToRework(c.Request().Context(), c.Param("title"), req.Comment)
	return h.respond(c, "send_to_rework", result, err)
}

// Update handles PATCH /v1/tasks/:title — a partial update. Only the
// supplied fields change; title and assignee are immutable here.
//
// @Summary      Update task fields
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string             true  "Task title"
// @Param        body   body      updateTaskRequest  true  "Fields to merge"
// @Success      200    {object}  domain.Task
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/tasks/{title} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	patch := ports.TaskPatch{
		Title:       c.Param("title"),
		Description: req.Description,
		Deadline:    req.Deadline,
	}
	if req.Status != nil {
		status, ok := domain.StatusFromString(*req.Status)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
		patch.Status = &status
	}
	if req.Importance != nil {
		importance := domain.ParseImportance(*req.Importance)
		patch.Importance = &importance
	}

	task, err := h.service.Update(c.Request().Context(), patch)
	if err != nil {
		metrics.TaskTransitionsTotal.WithLabelValues("update", "error").Inc()
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues("update", "applied").Inc()
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) respond(c echo.Context, operation string, result *ports.TransitionResult, err error) error {
	if err != nil {
		metrics.TaskTransitionsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}

	outcome := "applied"
	if !result.Applied {
		outcome = "rejected"
	}
	metrics.TaskTransitionsTotal.WithLabelValues(operation, outcome).Inc()

	return c.JSON(http.StatusOK, transitionResponse{
		Applied: result.Applied,
		Status:  string(result.Status),
		Reason:  result.Reason,
	})
}
