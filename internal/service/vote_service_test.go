package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"livepoll/internal/domain"
	apperrors "livepoll/pkg/errors"
)

func newTestVoteService(t *testing.T) (*VoteService, *fakePollRepo, *fakeVoteRepo, *fakeNotifier) {
	t.Helper()
	polls := newFakePollRepo()
	votes := &fakeVoteRepo{byPoll: make(map[int64][]*domain.QuestionResults)}
	notifier := &fakeNotifier{}
	cache := NewCacheService(nil, zap.NewNop())
	svc := NewVoteService(polls, votes, cache, notifier, zap.NewNop())
	return svc, polls, votes, notifier
}

// seedVotablePoll stores a poll that already carries one choice question and
// one open-ended question, the shape the repository layer returns
func seedVotablePoll(t *testing.T, polls *fakePollRepo, closesAt *time.Time, active bool) *domain.Poll {
	t.Helper()
	poll := seedPoll(t, polls, 1, closesAt)
	poll.IsActive = active
	if !active {
		now := time.Now().UTC()
		poll.ClosedAt = &now
	}
	poll.Questions = []*domain.Question{
		{
			ID:     10,
			PollID: poll.ID,
			Text:   "Favorite color?",
			Type:   domain.QuestionTypeMultipleChoice,
			Options: []*domain.Option{
				{ID: 100, QuestionID: 10, Text: "Red"},
				{ID: 101, QuestionID: 10, Text: "Blue"},
			},
		},
		{
			ID:     11,
			PollID: poll.ID,
			Text:   "Any feedback?",
			Type:   domain.QuestionTypeOpenEnded,
		},
	}
	return poll
}

func optionID(id int64) *int64 { return &id }

func textAnswer(s string) *string { return &s }

func TestVoteService_SubmitChoiceVote(t *testing.T) {
	svc, polls, votes, notifier := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, true)

	vote, err := svc.SubmitVote(context.Background(), poll.Slug, &domain.VoteRequest{
		QuestionID: 10,
		OptionID:   optionID(101),
	})
	require.NoError(t, err)

	assert.NotZero(t, vote.ID)
	assert.Equal(t, int64(10), vote.QuestionID)
	require.NotNil(t, vote.OptionID)
	assert.Equal(t, int64(101), *vote.OptionID)
	assert.Nil(t, vote.TextAnswer)
	assert.False(t, vote.CreatedAt.IsZero())

	require.Len(t, votes.votes, 1)
	assert.Equal(t, 1, notifier.countFor(poll.Slug), "exactly one notification per committed vote")
}

func TestVoteService_SubmitOpenEndedVote(t *testing.T) {
	svc, polls, _, notifier := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, true)

	vote, err := svc.SubmitVote(context.Background(), poll.Slug, &domain.VoteRequest{
		QuestionID: 11,
		TextAnswer: textAnswer("More demos please"),
	})
	require.NoError(t, err)

	assert.Nil(t, vote.OptionID)
	require.NotNil(t, vote.TextAnswer)
	assert.Equal(t, "More demos please", *vote.TextAnswer)
	assert.Equal(t, 1, notifier.countFor(poll.Slug))
}

func TestVoteService_RejectsClosedPoll(t *testing.T) {
	svc, polls, votes, notifier := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, false)

	_, err := svc.SubmitVote(context.Background(), poll.Slug, &domain.VoteRequest{
		QuestionID: 10,
		OptionID:   optionID(100),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.AsAppError(err).Type)
	assert.Empty(t, votes.votes)
	assert.Zero(t, notifier.count())
}

func TestVoteService_RejectsElapsedSchedule(t *testing.T) {
	svc, polls, votes, _ := newTestVoteService(t)

	// Still flagged active, no list scan has materialized the close yet
	past := time.Now().UTC().Add(-time.Minute)
	poll := seedVotablePoll(t, polls, &past, true)

	_, err := svc.SubmitVote(context.Background(), poll.Slug, &domain.VoteRequest{
		QuestionID: 10,
		OptionID:   optionID(100),
	})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "Poll has expired", appErr.Message)
	assert.Empty(t, votes.votes)
}

func TestVoteService_NotFound(t *testing.T) {
	svc, polls, _, _ := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, true)

	_, err := svc.SubmitVote(context.Background(), "000000", &domain.VoteRequest{QuestionID: 10})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)

	_, err = svc.SubmitVote(context.Background(), poll.Slug, &domain.VoteRequest{QuestionID: 99})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)
}

func TestVoteService_Validation(t *testing.T) {
	svc, polls, _, _ := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, true)

	tests := []struct {
		name string
		req  *domain.VoteRequest
	}{
		{"choice without option", &domain.VoteRequest{QuestionID: 10}},
		{"option of another question", &domain.VoteRequest{QuestionID: 10, OptionID: optionID(999)}},
		{"open-ended without text", &domain.VoteRequest{QuestionID: 11}},
		{"open-ended with empty text", &domain.VoteRequest{QuestionID: 11, TextAnswer: textAnswer("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitVote(context.Background(), poll.Slug, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
		})
	}
}

func TestVoteService_Results(t *testing.T) {
	svc, polls, votes, _ := newTestVoteService(t)
	poll := seedVotablePoll(t, polls, nil, true)

	votes.byPoll[poll.ID] = []*domain.QuestionResults{
		{
			QuestionID: 10,
			Text:       "Favorite color?",
			Type:       domain.QuestionTypeMultipleChoice,
			Options: []*domain.OptionCount{
				{OptionID: 100, Text: "Red", Count: 3},
				{OptionID: 101, Text: "Blue", Count: 1},
			},
			TotalVotes: 4,
		},
	}

	results, err := svc.Results(context.Background(), poll.Slug)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, results.PollID)
	assert.Equal(t, poll.Slug, results.Slug)
	require.Len(t, results.Questions, 1)
	assert.Equal(t, 4, results.Questions[0].TotalVotes)

	_, err = svc.Results(context.Background(), "000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)
}
