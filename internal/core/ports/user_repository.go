package ports

import (
	"context"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Username uniqueness is enforced by the store; Create returns
// domain.ErrUserExists on a duplicate.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAllByRole(ctx context.Context, role string) ([]*domain.User, error)
	// AddTaskRef appends a task id to the user's owned set.
	AddTaskRef(ctx context.Context, username, taskID string) error
	DeleteByUsername(ctx context.Context, username string) error
}
