package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"livepoll/internal/domain"
	"livepoll/pkg/database"
)

type QuestionRepo struct {
	db *database.PostgresDB
}

func NewQuestionRepository(db *database.PostgresDB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create inserts a question with its options in one transaction. Display
// order is assigned as max existing order + 1 within the poll.
func (r *QuestionRepo) Create(ctx context.Context, question *domain.Question) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO questions (poll_id, text, question_type, visualization_type, display_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(display_order), -1) + 1 FROM questions WHERE poll_id = $1))
		RETURNING id, display_order
	`
	err = tx.QueryRow(ctx, query,
		question.PollID,
		question.Text,
		question.Type,
		question.Visualization,
	).Scan(&question.ID, &question.Order)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	for _, opt := range question.Options {
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, text) VALUES ($1, $2) RETURNING id`,
			question.ID, opt.Text,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("failed to create option: %w", err)
		}
		opt.QuestionID = question.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit question: %w", err)
	}
	return nil
}

// Get retrieves one question with options, scoped to a poll
func (r *QuestionRepo) Get(ctx context.Context, pollID, questionID int64) (*domain.Question, error) {
	var q domain.Question
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, poll_id, text, question_type, visualization_type, display_order
		FROM questions
		WHERE id = $1 AND poll_id = $2
	`, questionID, pollID).Scan(&q.ID, &q.PollID, &q.Text, &q.Type, &q.Visualization, &q.Order)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, question_id, text FROM options WHERE question_id = $1 ORDER BY id`,
		q.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	q.Options = []*domain.Option{}
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		q.Options = append(q.Options, &opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return &q, nil
}

// Update persists question attributes and replaces its option set wholesale.
// Votes referencing old options are removed by the cascade; editing a
// question resets its tallies.
func (r *QuestionRepo) Update(ctx context.Context, question *domain.Question) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE questions
		SET text = $2, question_type = $3, visualization_type = $4
		WHERE id = $1
	`, question.ID, question.Text, question.Type, question.Visualization)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %d not found", question.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM options WHERE question_id = $1`, question.ID); err != nil {
		return fmt.Errorf("failed to clear options: %w", err)
	}

	for _, opt := range question.Options {
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, text) VALUES ($1, $2) RETURNING id`,
			question.ID, opt.Text,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("failed to create option: %w", err)
		}
		opt.QuestionID = question.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit question update: %w", err)
	}
	return nil
}

// Delete removes the question; options and votes cascade
func (r *QuestionRepo) Delete(ctx context.Context, pollID, questionID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM questions WHERE id = $1 AND poll_id = $2`,
		questionID, pollID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %d not found", questionID)
	}
	return nil
}

// Reorder assigns display order by position in orderedIDs. The WHERE clause
// scopes each update to the poll, so foreign ids are silently ignored.
func (r *QuestionRepo) Reorder(ctx context.Context, pollID int64, orderedIDs []int64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for idx, id := range orderedIDs {
		if _, err := tx.Exec(ctx,
			`UPDATE questions SET display_order = $3 WHERE id = $1 AND poll_id = $2`,
			id, pollID, idx,
		); err != nil {
			return fmt.Errorf("failed to reorder question %d: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}
