package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis) for the assignment feed.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, username, title string) (bool, error)
	Mark(ctx context.Context, username, title string) error
}

type ingestService struct {
	users ports.UserService
	dedup DedupChecker
	log   zerolog.Logger
}

// NewIngestService returns an IngestService implementation.
func NewIngestService(users ports.UserService, dedup DedupChecker, log zerolog.Logger) ports.IngestService {
	return &ingestService{users: users, dedup: dedup, log: log}
}

// Process normalizes a single assignment event and applies it. Enum and date
// fields arrive as free text; anything unparsable falls back to the documented
// defaults rather than failing the event.
func (s *ingestService) Process(ctx context.Context, event ports.AssignmentEvent) error {
	if event.Title == "" || event.AssignedUser == "" {
		return fmt.Errorf("process assignment: %w", domain.ErrInvalidInput)
	}

	// Silently skip replayed events; a failed dedup check is not fatal.
	isDup, err := s.dedup.IsDuplicate(ctx, event.AssignedUser, event.Title)
	if err != nil {
		s.log.Warn().Err(err).Str("title", event.Title).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("title", event.Title).Str("username", event.AssignedUser).Msg("duplicate assignment skipped")
		return nil
	}

	// Assignment always starts fresh regardless of the status the event carries.
	if status := domain.ParseStatus(event.Status); status != domain.StatusNotStarted {
		s.log.Debug().Str("title", event.Title).Str("status", string(status)).Msg("event status ignored")
	}

	input := &ports.AssignTaskInput{
		Title:       event.Title,
		Description: event.Description,
		Importance:  domain.ParseImportance(event.Importance),
		Deadline:    domain.ParseDeadline(event.Deadline, time.Now().UTC()),
	}

	if markErr := s.dedup.Mark(ctx, event.AssignedUser, event.Title); markErr != nil {
		s.log.Warn().Err(markErr).Str("title", event.Title).Msg("failed to set dedup key")
	}

	if _, err := s.users.AssignTask(ctx, event.AssignedUser, input); err != nil {
		return fmt.Errorf("process assignment: %w", err)
	}

	s.log.Info().
		Str("title", event.Title).
		Str("username", event.AssignedUser).
		Msg("assignment event processed")
	return nil
}
