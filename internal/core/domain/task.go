package domain

import (
	"errors"
	"strings"
	"time"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusRework     TaskStatus = "rework"
)

// Importance ranks how urgently a task needs attention.
type Importance string

const (
	ImportanceUrgent      Importance = "urgent"
	ImportanceShouldHurry Importance = "should_hurry"
	ImportanceCanWait     Importance = "can_wait"
)

// validTransitions defines the allowed state machine transitions.
// Completed and rework may cycle indefinitely; the forward states are
// each entered at most once.
var validTransitions = map[TaskStatus][]TaskStatus{
	StatusNotStarted: {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusRework},
	StatusRework:     {StatusCompleted},
}

var ErrTaskNotFound = errors.New("task not found")
var ErrDuplicateTask = errors.New("task already exists")
var ErrInvalidInput = errors.New("invalid input")

// statusOrder fixes the iteration order over the workflow statuses.
var statusOrder = []TaskStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusRework}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionSources returns the statuses a transition into next may start
// from, derived from the transition table.
func TransitionSources(next TaskStatus) []TaskStatus {
	var from []TaskStatus
	for _, s := range statusOrder {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

// IsKnown reports whether s is one of the four workflow statuses.
func (s TaskStatus) IsKnown() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusRework:
		return true
	}
	return false
}

// Comment is reviewer feedback attached to a task when it is sent to rework.
type Comment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	TaskID    string    `json:"task_id" bson:"task_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Task is the core aggregate root. Every task has exactly one assignee.
type Task struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Status      TaskStatus `json:"status" bson:"status"`
	Importance  Importance `json:"importance" bson:"importance"`
	Deadline    time.Time  `json:"deadline" bson:"deadline"`
	Assignee    string     `json:"assignee" bson:"assignee"`
	Comments    []Comment  `json:"comments" bson:"comments"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// DefaultDeadlineDelay is applied when an ingested event carries no usable deadline.
const DefaultDeadlineDelay = 24 * time.Hour

// statusAliases maps external status spellings to workflow statuses.
var statusAliases = map[string]TaskStatus{
	"not_started": StatusNotStarted,
	"in_progress": StatusInProgress,
	"completed":   StatusCompleted,
	"rework":      StatusRework,
}

// importanceAliases maps external importance spellings to importance levels.
var importanceAliases = map[string]Importance{
	"urgent":       ImportanceUrgent,
	"should_hurry": ImportanceShouldHurry,
	"can_wait":     ImportanceCanWait,
}

// deadlineFormats are tried in order when parsing deadline text from the
// ingestion feed. The first layout that parses wins.
var deadlineFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
}

// StatusFromString resolves external status text against the known aliases.
func StatusFromString(s string) (TaskStatus, bool) {
	st, ok := statusAliases[normalize(s)]
	return st, ok
}

// ParseStatus normalizes external status text. Unknown or empty input falls
// back to not_started.
func ParseStatus(s string) TaskStatus {
	if st, ok := StatusFromString(s); ok {
		return st
	}
	return StatusNotStarted
}

// ParseImportance normalizes external importance text. Unknown or empty input
// falls back to can_wait.
func ParseImportance(s string) Importance {
	if imp, ok := importanceAliases[normalize(s)]; ok {
		return imp
	}
	return ImportanceCanWait
}

// ParseDeadline parses deadline text against the accepted layouts in priority
// order. Missing or unparsable input yields now+DefaultDeadlineDelay.
func ParseDeadline(s string, now time.Time) time.Time {
	if s != "" {
		for _, layout := range deadlineFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return now.Add(DefaultDeadlineDelay)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
