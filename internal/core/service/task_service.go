package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// TaskService drives the task workflow state machine. Transitions whose
// precondition fails come back as rejected results, not errors; notifications
// fire only after the corresponding write has committed.
type TaskService struct {
	tasks    ports.TaskRepository
	comments ports.CommentRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	comments ports.CommentRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{tasks: tasks, comments: comments, notifier: notifier, log: log}
}

// StartWork moves a task from not_started to in_progress. No notification.
func (s *TaskService) StartWork(ctx context.Context, title string) (*ports.TransitionResult, error) {
	result, err := s.transition(ctx, "start_work", title, domain.StatusInProgress, nil)
	if err != nil {
		return nil, err
	}
	return &result.TransitionResult, nil
}

// Complete moves a task from in_progress or rework to completed and tells the
// admin channel who finished what.
func (s *TaskService) Complete(ctx context.Context, title string) (*ports.TransitionResult, error) {
	result, err := s.transition(ctx, "complete", title, domain.StatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if result.Applied {
		s.notifier.Notify(ctx, ports.AdminAudience(),
			fmt.Sprintf("user %s completed task %s", result.task.Assignee, title))
	}
	return &result.TransitionResult, nil
}

// SendToRework moves a completed task back to rework, attaching the reviewer
// comment, and tells the assignee.
func (s *TaskService) SendToRework(ctx context.Context, title, comment string) (*ports.TransitionResult, error) {
	if comment == "" {
		return nil, domain.ErrInvalidInput
	}

	c := &domain.Comment{Content: comment, CreatedAt: time.Now().UTC()}
	result, err := s.transition(ctx, "send_to_rework", title, domain.StatusRework, c)
	if err != nil {
		return nil, err
	}
	if !result.Applied {
		return &result.TransitionResult, nil
	}

	// The comment is embedded in the task by the transition write; the
	// comments collection copy is an audit record and non-fatal.
	c.TaskID = result.task.ID
	if err := s.comments.Save(ctx, c); err != nil {
		s.log.Warn().Err(err).Str("title", title).Msg("failed to save rework comment record")
	}

	s.notifier.Notify(ctx, ports.UserAudience(result.task.Assignee),
		fmt.Sprintf("task %s sent to rework", title))
	return &result.TransitionResult, nil
}

// Update merges the non-nil patch fields into the task. Unlike the workflow
// operations it is unconditional: any current status is accepted. Title and
// assignee are never overwritten.
func (s *TaskService) Update(ctx context.Context, patch ports.TaskPatch) (*domain.Task, error) {
	if patch.Title == "" {
		return nil, domain.ErrInvalidInput
	}

	set := map[string]any{}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.IsKnown() {
			return nil, domain.ErrInvalidInput
		}
		set["status"] = *patch.Status
	}
	if patch.Importance != nil {
		set["importance"] = *patch.Importance
	}
	if patch.Deadline != nil {
		set["deadline"] = domain.ParseDeadline(*patch.Deadline, time.Now().UTC())
	}

	updated, err := s.tasks.ApplyPatch(ctx, patch.Title, set)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("title", patch.Title).Msg("task updated")
	s.notifier.Notify(ctx, ports.UserAudience(updated.Assignee),
		fmt.Sprintf("task %s changed", patch.Title))
	return updated, nil
}

// GetTask retrieves a task by title.
func (s *TaskService) GetTask(ctx context.Context, title string) (*domain.Task, error) {
	return s.tasks.FindByTitle(ctx, title)
}

func (s *TaskService) transition(
	ctx context.Context,
	operation, title string,
	next domain.TaskStatus,
	comment *domain.Comment,
) (*resultWithTask, error) {
	current, err := s.tasks.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(next) {
		s.log.Debug().
			Str("title", title).
			Str("operation", operation).
			Str("status", string(current.Status)).
			Msg("transition rejected")
		return &resultWithTask{
			TransitionResult: ports.TransitionResult{
				Applied: false,
				Status:  current.Status,
				Reason:  fmt.Sprintf("cannot %s a task in status %s", operation, current.Status),
			},
			task: current,
		}, nil
	}

	// The precondition is re-checked inside the store write, so a concurrent
	// transition on the same task leaves exactly one winner.
	updated, err := s.tasks.TransitionStatus(ctx, title, domain.TransitionSources(next), next, comment)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", operation, title, err)
	}
	if updated == nil {
		return &resultWithTask{
			TransitionResult: ports.TransitionResult{
				Applied: false,
				Status:  current.Status,
				Reason:  fmt.Sprintf("cannot %s a task in status %s", operation, current.Status),
			},
			task: current,
		}, nil
	}

	s.log.Info().
		Str("title", title).
		Str("operation", operation).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Msg("task transitioned")

	return &resultWithTask{
		TransitionResult: ports.TransitionResult{Applied: true, Status: updated.Status},
		task:             updated,
	}, nil
}

type resultWithTask struct {
	ports.TransitionResult
	task *domain.Task
}
