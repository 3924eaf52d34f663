package ports

import (
	"context"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

// TaskPatch carries a partial update. Nil fields are left untouched; title
// and assignee are never part of a patch.
type TaskPatch struct {
	Title       string // selects the task; never overwritten
	Description *string
	Status      *domain.TaskStatus
	Importance  *domain.Importance
	Deadline    *string // deadline text, normalized by the service
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	FindByTitle(ctx context.Context, title string) (*domain.Task, error)
	FindByAssignee(ctx context.Context, username string) ([]*domain.Task, error)

	// TransitionStatus atomically moves the task to next when its current
	// status is one of allowedFrom, optionally appending a comment in the
	// same write. It returns the updated task, or (nil, nil) when no
	// document matched the precondition (lost race or wrong state).
	TransitionStatus(ctx context.Context, title string, allowedFrom []domain.TaskStatus, next domain.TaskStatus, comment *domain.Comment) (*domain.Task, error)

	// ApplyPatch merges the non-nil patch fields into the stored task and
	// returns the updated document.
	ApplyPatch(ctx context.Context, title string, set map[string]any) (*domain.Task, error)

	DeleteByID(ctx context.Context, id string) error
	DeleteByAssignee(ctx context.Context, username string) error
}

// CommentRepository defines persistence operations for rework comments.
type CommentRepository interface {
	Save(ctx context.Context, c *domain.Comment) error
	DeleteByTaskID(ctx context.Context, taskID string) error
}

// Transactor runs fn inside a store-level transaction so that multi-document
// writes (assignment, user deletion) commit or roll back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
