package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"livepoll/internal/domain"
	"livepoll/pkg/database"
)

type PollRepo struct {
	db *database.PostgresDB
}

func NewPollRepository(db *database.PostgresDB) *PollRepo {
	return &PollRepo{db: db}
}

// Create inserts a poll and fills its ID and CreatedAt
func (r *PollRepo) Create(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (slug, title, is_active, closes_at, color_palette, slide_duration, enable_title_page, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		poll.Slug,
		poll.Title,
		poll.IsActive,
		poll.ClosesAt,
		poll.ColorPalette,
		poll.SlideDuration,
		poll.EnableTitlePage,
		poll.OwnerID,
	).Scan(&poll.ID, &poll.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}
	return nil
}

// GetBySlug retrieves a poll with its questions and options
func (r *PollRepo) GetBySlug(ctx context.Context, slug string) (*domain.Poll, error) {
	var poll domain.Poll
	query := `
		SELECT id, slug, title, is_active, created_at, closed_at, closes_at,
		       color_palette, slide_duration, enable_title_page, owner_id
		FROM polls
		WHERE slug = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, slug).Scan(
		&poll.ID,
		&poll.Slug,
		&poll.Title,
		&poll.IsActive,
		&poll.CreatedAt,
		&poll.ClosedAt,
		&poll.ClosesAt,
		&poll.ColorPalette,
		&poll.SlideDuration,
		&poll.EnableTitlePage,
		&poll.OwnerID,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	questions, err := r.questionsForPoll(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Questions = questions

	return &poll, nil
}

// List retrieves the owner's polls, newest first
func (r *PollRepo) List(ctx context.Context, ownerID int64, activeOnly bool) ([]*domain.Poll, error) {
	query := `
		SELECT id, slug, title, is_active, created_at, closed_at, closes_at,
		       color_palette, slide_duration, enable_title_page, owner_id
		FROM polls
		WHERE owner_id = $1
	`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(
			&poll.ID,
			&poll.Slug,
			&poll.Title,
			&poll.IsActive,
			&poll.CreatedAt,
			&poll.ClosedAt,
			&poll.ClosesAt,
			&poll.ColorPalette,
			&poll.SlideDuration,
			&poll.EnableTitlePage,
			&poll.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	return polls, nil
}

// Update persists mutable poll attributes
func (r *PollRepo) Update(ctx context.Context, poll *domain.Poll) error {
	query := `
		UPDATE polls
		SET title = $2, closes_at = $3, color_palette = $4, slide_duration = $5, enable_title_page = $6
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		poll.ID,
		poll.Title,
		poll.ClosesAt,
		poll.ColorPalette,
		poll.SlideDuration,
		poll.EnableTitlePage,
	)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll %d not found", poll.ID)
	}
	return nil
}

// MarkClosed flips the poll inactive and records the actual close time
func (r *PollRepo) MarkClosed(ctx context.Context, id int64, closedAt time.Time) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE polls SET is_active = FALSE, closed_at = $2 WHERE id = $1`,
		id, closedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll %d not found", id)
	}
	return nil
}

// MarkOpen flips the poll active and clears the actual close time
func (r *PollRepo) MarkOpen(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE polls SET is_active = TRUE, closed_at = NULL WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to reopen poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll %d not found", id)
	}
	return nil
}

// Delete removes the poll; dependent rows cascade via foreign keys
func (r *PollRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poll %d not found", id)
	}
	return nil
}

// ListElapsed retrieves polls still marked active whose schedule has passed
func (r *PollRepo) ListElapsed(ctx context.Context, now time.Time) ([]*domain.Poll, error) {
	query := `
		SELECT id, slug, title, is_active, created_at, closed_at, closes_at,
		       color_palette, slide_duration, enable_title_page, owner_id
		FROM polls
		WHERE is_active = TRUE AND closes_at IS NOT NULL AND closes_at <= $1
	`

	rows, err := r.db.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list elapsed polls: %w", err)
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(
			&poll.ID,
			&poll.Slug,
			&poll.Title,
			&poll.IsActive,
			&poll.CreatedAt,
			&poll.ClosedAt,
			&poll.ClosesAt,
			&poll.ColorPalette,
			&poll.SlideDuration,
			&poll.EnableTitlePage,
			&poll.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan elapsed poll: %w", err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elapsed polls: %w", err)
	}

	return polls, nil
}

// SlugExists reports whether a slug is already taken
func (r *PollRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM polls WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// questionsForPoll loads a poll's questions with their options, in display order
func (r *PollRepo) questionsForPoll(ctx context.Context, pollID int64) ([]*domain.Question, error) {
	query := `
		SELECT id, poll_id, text, question_type, visualization_type, display_order
		FROM questions
		WHERE poll_id = $1
		ORDER BY display_order, id
	`

	rows, err := r.db.Pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*domain.Question
	byID := make(map[int64]*domain.Question)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.PollID, &q.Text, &q.Type, &q.Visualization, &q.Order); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Options = []*domain.Option{}
		questions = append(questions, &q)
		byID[q.ID] = &q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	if len(questions) == 0 {
		return questions, nil
	}

	optQuery := `
		SELECT o.id, o.question_id, o.text
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.poll_id = $1
		ORDER BY o.id
	`
	optRows, err := r.db.Pool.Query(ctx, optQuery, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt domain.Option
		if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.Text); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		if q, ok := byID[opt.QuestionID]; ok {
			q.Options = append(q.Options, &opt)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return questions, nil
}
