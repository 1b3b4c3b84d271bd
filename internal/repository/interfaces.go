package repository

import (
	"context"
	"time"

	"livepoll/internal/domain"
)

// PollRepository defines the interface for poll data operations. Lookup
// methods return (nil, nil) when the row is absent.
type PollRepository interface {
	// Create inserts a poll and fills its ID and CreatedAt
	Create(ctx context.Context, poll *domain.Poll) error

	// GetBySlug retrieves a poll with its questions and options
	GetBySlug(ctx context.Context, slug string) (*domain.Poll, error)

	// List retrieves the owner's polls, newest first
	List(ctx context.Context, ownerID int64, activeOnly bool) ([]*domain.Poll, error)

	// Update persists mutable poll attributes
	Update(ctx context.Context, poll *domain.Poll) error

	// MarkClosed flips the poll inactive and records the actual close time
	MarkClosed(ctx context.Context, id int64, closedAt time.Time) error

	// MarkOpen flips the poll active and clears the actual close time
	MarkOpen(ctx context.Context, id int64) error

	// Delete removes the poll; questions, options and votes cascade
	Delete(ctx context.Context, id int64) error

	// ListElapsed retrieves polls still active whose schedule has passed
	ListElapsed(ctx context.Context, now time.Time) ([]*domain.Poll, error)

	// SlugExists reports whether a slug is already taken
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// QuestionRepository defines the interface for question data operations
type QuestionRepository interface {
	// Create inserts a question with its options in one transaction and
	// assigns the next display order within the poll
	Create(ctx context.Context, question *domain.Question) error

	// Get retrieves one question with options, scoped to a poll
	Get(ctx context.Context, pollID, questionID int64) (*domain.Question, error)

	// Update persists question attributes and replaces its option set
	Update(ctx context.Context, question *domain.Question) error

	// Delete removes the question; options and votes cascade
	Delete(ctx context.Context, pollID, questionID int64) error

	// Reorder assigns display order by position in orderedIDs; ids not
	// belonging to the poll are ignored
	Reorder(ctx context.Context, pollID int64, orderedIDs []int64) error
}

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	// Create inserts a vote and fills its ID and CreatedAt
	Create(ctx context.Context, vote *domain.Vote) error

	// ResultsForPoll aggregates option tallies and open answers per question
	ResultsForPoll(ctx context.Context, pollID int64) ([]*domain.QuestionResults, error)
}

// UserRepository defines the interface for presenter account operations
type UserRepository interface {
	// Create inserts a user and fills its ID and CreatedAt
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user, (nil, nil) when absent
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Polls     PollRepository
	Questions QuestionRepository
	Votes     VoteRepository
	Users     UserRepository
}
