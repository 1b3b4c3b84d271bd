package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"livepoll/internal/domain"
	"livepoll/internal/repository"
	apperrors "livepoll/pkg/errors"
)

// VoteService handles anonymous vote submission and results reads
type VoteService struct {
	polls    repository.PollRepository
	votes    repository.VoteRepository
	cache    *CacheService
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(polls repository.PollRepository, votes repository.VoteRepository, cache *CacheService, notifier ChangeNotifier, logger *zap.Logger) *VoteService {
	return &VoteService{
		polls:    polls,
		votes:    votes,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitVote records one anonymous vote on a poll's question. The poll is
// read fresh from storage, never the cache, and the schedule is re-checked
// here: a poll whose closes_at has elapsed rejects the vote even when no
// list scan has materialized the close yet.
func (s *VoteService) SubmitVote(ctx context.Context, slug string, req *domain.VoteRequest) (*domain.Vote, error) {
	poll, err := s.polls.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}

	if !poll.IsActive {
		return nil, apperrors.NewConflictError("Poll is closed")
	}
	if poll.ScheduleElapsed(time.Now().UTC()) {
		return nil, apperrors.NewConflictError("Poll has expired")
	}

	var question *domain.Question
	for _, q := range poll.Questions {
		if q.ID == req.QuestionID {
			question = q
			break
		}
	}
	if question == nil {
		return nil, apperrors.NewNotFoundError("Question not found")
	}

	vote := &domain.Vote{QuestionID: question.ID}

	if question.Type.Choice() {
		if req.OptionID == nil {
			return nil, apperrors.NewValidationError("Option is required for choice questions", nil)
		}
		if !question.HasOption(*req.OptionID) {
			return nil, apperrors.NewValidationError("Option does not belong to this question", nil)
		}
		vote.OptionID = req.OptionID
	} else {
		if req.TextAnswer == nil || *req.TextAnswer == "" {
			return nil, apperrors.NewValidationError("A text answer is required for open-ended questions", nil)
		}
		vote.TextAnswer = req.TextAnswer
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, apperrors.NewInternalError("Failed to record vote", err)
	}

	s.logger.Debug("vote recorded",
		zap.String("slug", slug),
		zap.Int64("poll_id", poll.ID),
		zap.Int64("question_id", question.ID))

	// Only after the write committed, viewers must be able to fetch what
	// the notification announces
	s.cache.InvalidateResults(ctx, poll.ID)
	s.notifier.Changed(poll.Slug, poll.ID)

	return vote, nil
}

// Results aggregates a poll's votes per question, public read
func (s *VoteService) Results(ctx context.Context, slug string) (*domain.PollResults, error) {
	poll, err := s.polls.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to get poll", err)
	}
	if poll == nil {
		return nil, apperrors.NewNotFoundError("Poll not found")
	}

	results, err := s.cache.GetResultsWithCache(ctx, poll.ID, func(ctx context.Context, pollID int64) (*domain.PollResults, error) {
		questions, err := s.votes.ResultsForPoll(ctx, pollID)
		if err != nil {
			return nil, err
		}
		return &domain.PollResults{
			PollID:    poll.ID,
			Slug:      poll.Slug,
			Title:     poll.Title,
			IsActive:  poll.IsActive,
			Questions: questions,
			UpdatedAt: time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate results", err)
	}

	return results, nil
}
