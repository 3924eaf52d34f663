package ports

import (
	"context"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

// TransitionResult reports the outcome of a state machine operation. A failed
// precondition is a normal business outcome, not an error: Applied is false
// and Reason says which rule blocked the move.
type TransitionResult struct {
	Applied bool
	Status  domain.TaskStatus // status after the operation
	Reason  string            // set when Applied is false
}

// TaskService owns the task workflow state machine.
type TaskService interface {
	StartWork(ctx context.Context, title string) (*TransitionResult, error)
	Complete(ctx context.Context, title string) (*TransitionResult, error)
	SendToRework(ctx context.Context, title, comment string) (*TransitionResult, error)
	Update(ctx context.Context, patch TaskPatch) (*domain.Task, error)
	GetTask(ctx context.Context, title string) (*domain.Task, error)
}

// AssignmentEvent is a task-assignment record delivered by the external
// ingestion feed. All enum and date fields arrive as free text and are
// normalized with parse-or-default semantics.
type AssignmentEvent struct {
	Title        string
	Description  string
	Importance   string
	Status       string
	Deadline     string
	AssignedUser string
}

// IngestService normalizes and applies external assignment events.
type IngestService interface {
	Process(ctx context.Context, event AssignmentEvent) error
}
