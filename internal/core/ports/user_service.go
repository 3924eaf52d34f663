package ports

import (
	"context"
	"time"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

// AssignTaskInput carries the task payload an admin assigns to a user.
// Status is always forced to not_started by the service regardless of input.
type AssignTaskInput struct {
	Title       string
	Description string
	Importance  domain.Importance
	Deadline    time.Time
}

// Profile is the task-free view of a user.
type Profile struct {
	Username string
	Role     string
}

// UserService owns user accounts and the user-task assignment relationship.
type UserService interface {
	AssignTask(ctx context.Context, username string, input *AssignTaskInput) (*domain.Task, error)
	DeleteUser(ctx context.Context, username string) error
	GetUser(ctx context.Context, username string) (*domain.User, error)
	GetProfile(ctx context.Context, username string) (*Profile, error)
	ListUsernames(ctx context.Context) ([]string, error)
}
