package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// UserHandler handles HTTP requests for user and assignment operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type assignTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Importance  string `json:"importance" validate:"omitempty,oneof=urgent should_hurry can_wait"`
	Deadline    string `json:"deadline"`
}

type profileResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Get handles GET /v1/users/:username.
//
// @Summary      Get a user with their task references
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.User
// @Failure      404       {object}  map[string]string
// @Router       /v1/users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile handles GET /v1/users/:username/profile — the task-free view.
//
// @Summary      Get a user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  profileResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/users/{username}/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.service.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Username: profile.Username, Role: profile.Role})
}

// List handles GET /v1/users — usernames of all non-admin accounts.
//
// @Summary      List usernames
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   string
// @Failure      403  {object}  map[string]string
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	names, err := h.service.ListUsernames(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, names)
}

// Delete handles DELETE /v1/users/:username — removes the user and cascades
// to their tasks and comments.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /v1/users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

// Assign handles POST /v1/users/:username/tasks — assigns a new task.
//
// @Summary      Assign a task to a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string             true  "Username"
// @Param        body      body      assignTaskRequest  true  "Task payload"
// @Success      201       {object}  domain.Task
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Router       /v1/users/{username}/tasks [post]
func (h *UserHandler) Assign(c echo.Context) error {
	var req assignTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := &ports.AssignTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Importance:  domain.ParseImportance(req.Importance),
		Deadline:    domain.ParseDeadline(req.Deadline, time.Now().UTC()),
	}

	task, err := h.service.AssignTask(c.Request().Context(), c.Param("username"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}
