package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

type taskServiceFixture struct {
	svc      *TaskService
	tasks    *stubTaskRepo
	comments *stubCommentRepo
	notifier *recordingNotifier
}

func newTaskServiceFixture() *taskServiceFixture {
	f := &taskServiceFixture{
		tasks:    newStubTaskRepo(),
		comments: newStubCommentRepo(),
		notifier: &recordingNotifier{},
	}
	f.svc = NewTaskService(f.tasks, f.comments, f.notifier, discardLogger)
	return f
}

func (f *taskServiceFixture) seedTask(t *testing.T, title string, status domain.TaskStatus) {
	t.Helper()
	err := f.tasks.Create(context.Background(), &domain.Task{
		Title:      title,
		Status:     status,
		Importance: domain.ImportanceUrgent,
		Assignee:   "alice",
		Deadline:   time.Now().Add(24 * time.Hour),
		Comments:   []domain.Comment{},
	})
	if err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
}

func TestTaskService_StartWork(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusNotStarted)

	result, err := f.svc.StartWork(context.Background(), "T1")
	if err != nil {
		t.Fatalf("StartWork returned error: %v", err)
	}
	if !result.Applied || result.Status != domain.StatusInProgress {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(f.notifier.all()) != 0 {
		t.Fatalf("start work must not notify")
	}

	// Starting twice is rejected, not an error.
	result, err = f.svc.StartWork(context.Background(), "T1")
	if err != nil {
		t.Fatalf("second StartWork returned error: %v", err)
	}
	if result.Applied {
		t.Fatalf("expected second start to be rejected")
	}
	if result.Status != domain.StatusInProgress {
		t.Fatalf("rejection must report the unchanged status, got %s", result.Status)
	}
}

func TestTaskService_Complete_FromNotStarted_Rejected(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusNotStarted)

	result, err := f.svc.Complete(context.Background(), "T1")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if result.Applied {
		t.Fatalf("completing a not-started task must be rejected")
	}
	if result.Reason == "" {
		t.Fatalf("rejection must carry a reason")
	}
	if len(f.notifier.all()) != 0 {
		t.Fatalf("rejected transition must not notify")
	}
}

func TestTaskService_Complete_Twice(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusInProgress)

	first, err := f.svc.Complete(context.Background(), "T1")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if !first.Applied || first.Status != domain.StatusCompleted {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := f.svc.Complete(context.Background(), "T1")
	if err != nil {
		t.Fatalf("second Complete returned error: %v", err)
	}
	if second.Applied {
		t.Fatalf("expected exactly one successful completion")
	}

	sent := f.notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one admin notification, got %d", len(sent))
	}
	if !sent[0].audience.Admin {
		t.Fatalf("completion must notify the admin channel")
	}
	if !strings.Contains(sent[0].message, "alice") || !strings.Contains(sent[0].message, "T1") {
		t.Fatalf("notification must name the assignee and the task: %q", sent[0].message)
	}
}

func TestTaskService_SendToRework_OnlyFromCompleted(t *testing.T) {
	f := newTaskServiceFixture()

	for _, status := range []domain.TaskStatus{domain.StatusNotStarted, domain.StatusInProgress, domain.StatusRework} {
		f2 := newTaskServiceFixture()
		f2.seedTask(t, "T1", status)

		result, err := f2.svc.SendToRework(context.Background(), "T1", "fix X")
		if err != nil {
			t.Fatalf("SendToRework from %s returned error: %v", status, err)
		}
		if result.Applied {
			t.Fatalf("rework from %s must be rejected", status)
		}

		task, _ := f2.tasks.FindByTitle(context.Background(), "T1")
		if len(task.Comments) != 0 {
			t.Fatalf("rejected rework must not append a comment")
		}
		if len(f2.notifier.all()) != 0 {
			t.Fatalf("rejected rework must not notify")
		}
	}

	f.seedTask(t, "T2", domain.StatusCompleted)
	result, err := f.svc.SendToRework(context.Background(), "T2", "fix Y")
	if err != nil {
		t.Fatalf("SendToRework returned error: %v", err)
	}
	if !result.Applied || result.Status != domain.StatusRework {
		t.Fatalf("unexpected result: %+v", result)
	}

	task, _ := f.tasks.FindByTitle(context.Background(), "T2")
	if len(task.Comments) != 1 || task.Comments[0].Content != "fix Y" {
		t.Fatalf("expected the rework comment on the task, got %v", task.Comments)
	}

	sent := f.notifier.all()
	if len(sent) != 1 || sent[0].audience.Username != "alice" {
		t.Fatalf("rework must notify the assignee, got %+v", sent)
	}
}

func TestTaskService_SendToRework_EmptyComment(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusCompleted)

	if _, err := f.svc.SendToRework(context.Background(), "T1", ""); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTaskService_Update_PartialMerge(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusInProgress)

	before, _ := f.tasks.FindByTitle(context.Background(), "T1")

	desc := "new description"
	updated, err := f.svc.Update(context.Background(), ports.TaskPatch{
		Title:       "T1",
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Description != "new description" {
		t.Fatalf("description not updated: %q", updated.Description)
	}
	if updated.Status != before.Status {
		t.Fatalf("status must be untouched, got %s", updated.Status)
	}
	if updated.Importance != before.Importance {
		t.Fatalf("importance must be untouched, got %s", updated.Importance)
	}
	if !updated.Deadline.Equal(before.Deadline) {
		t.Fatalf("deadline must be untouched")
	}
	if updated.Title != "T1" || updated.Assignee != before.Assignee {
		t.Fatalf("title and assignee must never change")
	}

	sent := f.notifier.all()
	if len(sent) != 1 || sent[0].audience.Username != "alice" {
		t.Fatalf("update must notify the assignee, got %+v", sent)
	}
	if !strings.Contains(sent[0].message, "changed") {
		t.Fatalf("unexpected message: %q", sent[0].message)
	}
}

func TestTaskService_Update_StatusOverride(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusNotStarted)

	// Update bypasses the transition preconditions: an explicit status field
	// is applied unconditionally.
	status := domain.StatusCompleted
	updated, err := f.svc.Update(context.Background(), ports.TaskPatch{Title: "T1", Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected status completed, got %s", updated.Status)
	}

	bogus := domain.TaskStatus("paused")
	if _, err := f.svc.Update(context.Background(), ports.TaskPatch{Title: "T1", Status: &bogus}); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestTaskService_UnknownTitle(t *testing.T) {
	f := newTaskServiceFixture()

	if _, err := f.svc.StartWork(context.Background(), "ghost"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := f.svc.Complete(context.Background(), "ghost"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), ports.TaskPatch{Title: "ghost"}); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// Full workflow: assign → start → complete → rework → complete, checking the
// status and the emitted notifications at every step.
func TestTaskService_WorkflowScenario(t *testing.T) {
	f := newTaskServiceFixture()
	f.seedTask(t, "T1", domain.StatusNotStarted)

	if result, _ := f.svc.StartWork(context.Background(), "T1"); !result.Applied || result.Status != domain.StatusInProgress {
		t.Fatalf("start: %+v", result)
	}
	if result, _ := f.svc.Complete(context.Background(), "T1"); !result.Applied || result.Status != domain.StatusCompleted {
		t.Fatalf("complete: %+v", result)
	}
	if result, _ := f.svc.SendToRework(context.Background(), "T1", "fix X"); !result.Applied || result.Status != domain.StatusRework {
		t.Fatalf("rework: %+v", result)
	}
	if result, _ := f.svc.Complete(context.Background(), "T1"); !result.Applied || result.Status != domain.StatusCompleted {
		t.Fatalf("second complete: %+v", result)
	}

	task, _ := f.tasks.FindByTitle(context.Background(), "T1")
	if len(task.Comments) != 1 || task.Comments[0].Content != "fix X" {
		t.Fatalf("expected one rework comment, got %v", task.Comments)
	}

	// complete → rework → complete: admin, alice, admin — in program order.
	sent := f.notifier.all()
	if len(sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(sent))
	}
	if !sent[0].audience.Admin || sent[1].audience.Username != "alice" || !sent[2].audience.Admin {
		t.Fatalf("unexpected notification order: %+v", sent)
	}
}
