package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/assignment-system/internal/core/ports"
)

// EventDispatcher is the interface the handler uses to enqueue events.
type EventDispatcher interface {
	Enqueue(event ports.AssignmentEvent)
	EnqueueBatch(events []ports.AssignmentEvent)
}

// AssignmentHandler ingests task-assignment events from external systems.
type AssignmentHandler struct {
	dispatcher EventDispatcher
}

// NewAssignmentHandler creates an AssignmentHandler backed by the given dispatcher.
func NewAssignmentHandler(dispatcher EventDispatcher) *AssignmentHandler {
	return &AssignmentHandler{dispatcher: dispatcher}
}

type assignmentEventRequest struct {
	Title        string `json:"title"         validate:"required"`
	Description  string `json:"description"`
	Importance   string `json:"importance"`
	Status       string `json:"status"`
	Deadline     string `json:"deadline"`
	AssignedUser string `json:"assigned_user" validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Receive handles POST /v1/assignments/events — enqueues one event, returns 202.
//
// @Summary      Ingest a single assignment event
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignmentEventRequest  true  "Assignment event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assignments/events [post]
func (h *AssignmentHandler) Receive(c echo.Context) error {
	var req assignmentEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(toAssignmentEvent(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// ReceiveBatch handles POST /v1/assignments/events/batch.
//
// @Summary      Ingest a batch of assignment events
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []assignmentEventRequest  true  "Array of assignment events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assignments/events/batch [post]
func (h *AssignmentHandler) ReceiveBatch(c echo.Context) error {
	var reqs []assignmentEventRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	events := make([]ports.AssignmentEvent, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("event[%d]: %s", i, err.Error()))
		}
		events = append(events, toAssignmentEvent(req))
	}

	h.dispatcher.EnqueueBatch(events)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "events accepted",
		Count:   len(events),
	})
}

// toAssignmentEvent maps the HTTP request to the service DTO.
func toAssignmentEvent(r assignmentEventRequest) ports.AssignmentEvent {
	return ports.AssignmentEvent{
		Title:        r.Title,
		Description:  r.Description,
		Importance:   r.Importance,
		Status:       r.Status,
		Deadline:     r.Deadline,
		AssignedUser: r.AssignedUser,
	}
}
