package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// UserService owns user accounts and the user-task assignment relationship.
type UserService struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	comments ports.CommentRepository
	tx       ports.Transactor
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	comments ports.CommentRepository,
	tx ports.Transactor,
	notifier ports.Notifier,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, tasks: tasks, comments: comments, tx: tx, notifier: notifier, log: log}
}

// AssignTask creates a task for the user. The task always starts in
// not_started regardless of what the caller supplied, and the task record plus
// the user's task set are written in one transaction: a reader never sees one
// without the other.
func (s *UserService) AssignTask(ctx context.Context, username string, input *ports.AssignTaskInput) (*domain.Task, error) {
	if input == nil || input.Title == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	deadline := input.Deadline
	if deadline.IsZero() {
		deadline = now.Add(domain.DefaultDeadlineDelay)
	}
	importance := input.Importance
	if importance == "" {
		importance = domain.ImportanceCanWait
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusNotStarted,
		Importance:  importance,
		Deadline:    deadline,
		Assignee:    user.Username,
		Comments:    []domain.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, task); err != nil {
			return err
		}
		return s.users.AddTaskRef(ctx, user.Username, task.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("username", username).
		Str("title", task.Title).
		Str("importance", string(task.Importance)).
		Msg("task assigned")

	s.notifier.Notify(ctx, ports.UserAudience(user.Username),
		fmt.Sprintf("you have a new task: %s", task.Title))
	return task, nil
}

// DeleteUser removes the user together with every task they own and each
// task's comments. Dependents go first so no dangling references survive a
// partial failure.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		owned, err := s.tasks.FindByAssignee(ctx, user.Username)
		if err != nil {
			return err
		}
		for _, t := range owned {
			if err := s.comments.DeleteByTaskID(ctx, t.ID); err != nil {
				return err
			}
		}
		if err := s.tasks.DeleteByAssignee(ctx, user.Username); err != nil {
			return err
		}
		return s.users.DeleteByUsername(ctx, user.Username)
	})
	if err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}

	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

// GetUser retrieves a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// GetProfile returns the task-free view of a user.
func (s *UserService) GetProfile(ctx context.Context, username string) (*ports.Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ports.Profile{Username: user.Username, Role: user.Role}, nil
}

// ListUsernames returns the usernames of all non-admin accounts.
func (s *UserService) ListUsernames(ctx context.Context) ([]string, error) {
	users, err := s.users.FindAllByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}
