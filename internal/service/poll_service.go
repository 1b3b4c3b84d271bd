package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"livepoll/internal/domain"
	"livepoll/internal/repository"
	apperrors "livepoll/pkg/errors"
)

// slugAttempts bounds the collision-regeneration loop at creation
const slugAttempts = 5

// PollService orchestrates poll and question lifecycle. It owns the lazy
// auto-close evaluation: list reads scan for elapsed schedules and
// materialize the open-to-closed transition before returning.
type PollService struct {
	polls     repository.PollRepository
	questions repository.QuestionRepository
	cache     *CacheService
	notifier  ChangeNotifier
	logger    *zap.Logger
}

// NewPollService creates a new poll service
func NewPollService(polls repository.PollRepository, questions repository.QuestionRepository, cache *CacheService, notifier ChangeNotifier, logger *zap.Logger) *PollService {
	return &PollService{
		polls:     polls,
		questions: questions,
		cache:     cache,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreatePoll creates a poll with a fresh slug and display defaults
func (s *PollService) CreatePoll(ctx context.Context, ownerID int64, req *domain.PollCreateRequest) (*domain.Poll, error) {
	if req.Title == "" {
		return nil, apperrors.NewValidationError("Title is required", nil)
	}

	palette := req.ColorPalette
	if palette == "" {
		palette = domain.DefaultColorPalette
	}
	if !domain.ValidPalette(palette) {
		return nil, apperrors.NewValidationError("Unknown color palette", map[string]interface{}{
			"color_palette": palette,
		})
	}

	duration := req.SlideDuration
	if duration == 0 {
		duration = domain.DefaultSlideDuration
	}
	if duration < 1 {
		return nil, apperrors.NewValidationError("Slide duration must be at least 1 second", nil)
	}

	slug, err := s.freshSlug(ctx)
	if err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		Slug:            slug,
		Title:           req.Title,
		IsActive:        true,
		ClosesAt:        req.ClosesAt,
		ColorPalette:    palette,
		SlideDuration:   duration,
		EnableTitlePage: req.EnableTitlePage,
		OwnerID:         ownerID,
		Questions:       []*domain.Question{},
	}

	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, apperrors.NewInternalError("Failed to create poll", err)
	}

	s.notifier.Changed(poll.Slug, poll.ID)
	return poll, nil
}

// ListPolls returns the owner's polls, newest first. Before reading it scans
// currently-open polls and closes any whose schedule elapsed, so no caller
// of this path ever observes a poll as open past its scheduled close time.
func (s *PollService) ListPolls(ctx context.Context, ownerID int64, activeOnly bool) ([]*domain.Poll, error) {
	s.CloseElapsed(ctx)

	polls, err := s.polls.List(ctx, ownerID, activeOnly)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list polls", err)
	}
	return polls, nil
}

// CloseElapsed applies the open-to-closed transition to every active poll
// whose schedule has passed. Each poll's transition commits independently: a
// failure for one poll is logged and does not abort the rest of the scan.
// Exactly one notification is sent per applied transition; a rerun with
// nothing elapsed changes nothing.
func (s *PollService) CloseElapsed(ctx context.Context) {
	now := time.Now().UTC()

	elapsed, err := s.polls.ListElapsed(ctx, now)
	if err != nil {
		s.logger.Error("failed to scan for elapsed polls", zap.Error(err))
		return
	}

	for _, poll := range elapsed {
		if err := s.polls.MarkClosed(ctx, poll.ID, now); err != nil {
			s.logger.Error("failed to auto-close poll",
				zap.String("slug", poll.Slug),
				zap.Int64("poll_id", poll.ID),
				zap.Error(err))
			continue
		}

		s.logger.Info("auto-closed poll",
			zap.String("slug", poll.Slug),
			zap.Int64("poll_id", poll.ID),
			zap.Timep("closes_at", poll.ClosesAt))

		s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
		s.notifier.Changed(poll.Slug, poll.ID)
	}
}

// GetPoll retrieves a poll by slug, public read. Single-poll reads do not
// trigger the elapsed scan; vote submission re-checks the schedule itself.
func (s *PollService) GetPoll(ctx context.Context, slug string) (*domain.Poll, error) {
	poll, err := s.cache.GetPollWithCache(ctx, slug, s.polls.GetBySlug)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}
	return poll, nil
}

// UpdatePoll applies a partial update. Fields absent from the payload stay
// unchanged; an explicit null on closes_at clears the schedule.
func (s *PollService) UpdatePoll(ctx context.Context, ownerID int64, slug string, req *domain.PollUpdateRequest) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return nil, err
	}

	if req.Title.Set {
		if !req.Title.Valid || req.Title.Value == "" {
			return nil, apperrors.NewValidationError("Title cannot be empty", nil)
		}
		poll.Title = req.Title.Value
	}

	if req.ClosesAt.Set {
		poll.ClosesAt = req.ClosesAt.Ptr()
	}

	if req.ColorPalette.Set {
		if !req.ColorPalette.Valid || !domain.ValidPalette(req.ColorPalette.Value) {
			return nil, apperrors.NewValidationError("Unknown color palette", nil)
		}
		poll.ColorPalette = req.ColorPalette.Value
	}

	if req.SlideDuration.Set {
		if !req.SlideDuration.Valid || req.SlideDuration.Value < 1 {
			return nil, apperrors.NewValidationError("Slide duration must be at least 1 second", nil)
		}
		poll.SlideDuration = req.SlideDuration.Value
	}

	if req.EnableTitlePage.Set {
		if !req.EnableTitlePage.Valid {
			return nil, apperrors.NewValidationError("enable_title_page cannot be null", nil)
		}
		poll.EnableTitlePage = req.EnableTitlePage.Value
	}

	if err := s.polls.Update(ctx, poll); err != nil {
		return nil, apperrors.NewInternalError("Failed to update poll", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return poll, nil
}

// ClosePoll manually closes a poll, recording the actual close time
func (s *PollService) ClosePoll(ctx context.Context, ownerID int64, slug string) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.polls.MarkClosed(ctx, poll.ID, now); err != nil {
		return nil, apperrors.NewInternalError("Failed to close poll", err)
	}
	poll.IsActive = false
	poll.ClosedAt = &now

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return poll, nil
}

// ReopenPoll reopens a closed poll, clearing the recorded close time. A
// schedule left in the past will close it again on the next list scan.
func (s *PollService) ReopenPoll(ctx context.Context, ownerID int64, slug string) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return nil, err
	}

	if err := s.polls.MarkOpen(ctx, poll.ID); err != nil {
		return nil, apperrors.NewInternalError("Failed to reopen poll", err)
	}
	poll.IsActive = true
	poll.ClosedAt = nil

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return poll, nil
}

// DeletePoll removes a poll and everything under it
func (s *PollService) DeletePoll(ctx context.Context, ownerID int64, slug string) error {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return err
	}

	if err := s.polls.Delete(ctx, poll.ID); err != nil {
		return apperrors.NewInternalError("Failed to delete poll", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return nil
}

// AddQuestion appends a question to the poll, order assigned as max+1
func (s *PollService) AddQuestion(ctx context.Context, ownerID int64, slug string, req *domain.QuestionCreateRequest) (*domain.Question, error) {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return nil, err
	}

	question, err := questionFromRequest(poll.ID, req)
	if err != nil {
		return nil, err
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, apperrors.NewInternalError("Failed to create question", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return question, nil
}

// UpdateQuestion edits a question, replacing its option set wholesale
func (s *PollService) UpdateQuestion(ctx context.Context, ownerID int64, slug string, questionID int64, req *domain.QuestionCreateRequest) (*domain.Question, error) {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return nil, err
	}

	existing, err := s.questions.Get(ctx, poll.ID, questionID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get question", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("Question not found")
	}

	question, err := questionFromRequest(poll.ID, req)
	if err != nil {
		return nil, err
	}
	question.ID = existing.ID
	question.Order = existing.Order

	if err := s.questions.Update(ctx, question); err != nil {
		return nil, apperrors.NewInternalError("Failed to update question", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return question, nil
}

// DeleteQuestion removes a question and its dependents
func (s *PollService) DeleteQuestion(ctx context.Context, ownerID int64, slug string, questionID int64) error {
	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return err
	}

	existing, err := s.questions.Get(ctx, poll.ID, questionID)
	if err != nil {
		return apperrors.NewInternalError("Failed to get question", err)
	}
	if existing == nil {
		return apperrors.NewNotFoundError("Question not found")
	}

	if err := s.questions.Delete(ctx, poll.ID, questionID); err != nil {
		return apperrors.NewInternalError("Failed to delete question", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return nil
}

// ReorderQuestions bulk-assigns display order by position in orderedIDs
func (s *PollService) ReorderQuestions(ctx context.Context, ownerID int64, slug string, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return apperrors.NewValidationError("Ordered question ids are required", nil)
	}

	poll, err := s.ownedPoll(ctx, ownerID, slug)
	if err != nil {
		return err
	}

	if err := s.questions.Reorder(ctx, poll.ID, orderedIDs); err != nil {
		return apperrors.NewInternalError("Failed to reorder questions", err)
	}

	s.cache.InvalidatePoll(ctx, poll.Slug, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)
	return nil
}

// ownedPoll loads a poll and verifies the caller owns it. Ownership is
// enforced on mutations and listing only; slug reads, votes and live
// subscriptions stay public.
func (s *PollService) ownedPoll(ctx context.Context, ownerID int64, slug string) (*domain.Poll, error) {
	poll, err := s.polls.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}
	if poll.OwnerID != ownerID {
		return nil, apperrors.NewAuthorizationError("Poll belongs to another account")
	}
	return poll, nil
}

// freshSlug draws random slugs until one is unused
func (s *PollService) freshSlug(ctx context.Context) (string, error) {
	for i := 0; i < slugAttempts; i++ {
		slug, err := domain.NewSlug()
		if err != nil {
			return "", apperrors.NewInternalError("Failed to generate slug", err)
		}
		taken, err := s.polls.SlugExists(ctx, slug)
		if err != nil {
			return "", apperrors.NewInternalError("Failed to check slug", err)
		}
		if !taken {
			return slug, nil
		}
	}
	return "", apperrors.NewInternalError("Failed to find a free slug",
		fmt.Errorf("gave up after %d attempts", slugAttempts))
}

// questionFromRequest validates and builds a question from its payload
func questionFromRequest(pollID int64, req *domain.QuestionCreateRequest) (*domain.Question, error) {
	if req.Text == "" {
		return nil, apperrors.NewValidationError("Question text is required", nil)
	}
	if !req.Type.Valid() {
		return nil, apperrors.NewValidationError("Unknown question type", map[string]interface{}{
			"question_type": string(req.Type),
		})
	}

	visualization := req.Visualization
	if visualization == "" {
		visualization = domain.DefaultVisualization
	}
	if !domain.ValidVisualization(visualization) {
		return nil, apperrors.NewValidationError("Unknown visualization type", map[string]interface{}{
			"visualization_type": visualization,
		})
	}

	question := &domain.Question{
		PollID:        pollID,
		Text:          req.Text,
		Type:          req.Type,
		Visualization: visualization,
		Options:       []*domain.Option{},
	}

	// Options only apply to choice questions, extraneous ones are dropped
	if req.Type.Choice() {
		for _, opt := range req.Options {
			if opt.Text == "" {
				return nil, apperrors.NewValidationError("Option text cannot be empty", nil)
			}
			question.Options = append(question.Options, &domain.Option{Text: opt.Text})
		}
	}

	return question, nil
}
