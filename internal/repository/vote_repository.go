package repository

import (
	"context"
	"fmt"

	"livepoll/internal/domain"
	"livepoll/pkg/database"
)

type VoteRepo struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Create inserts a vote and fills its ID and CreatedAt. Votes are anonymous:
// no respondent identity is recorded.
func (r *VoteRepo) Create(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (question_id, option_id, text_answer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		vote.QuestionID,
		vote.OptionID,
		vote.TextAnswer,
	).Scan(&vote.ID, &vote.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// ResultsForPoll aggregates option tallies and open answers per question,
// in display order
func (r *VoteRepo) ResultsForPoll(ctx context.Context, pollID int64) ([]*domain.QuestionResults, error) {
	qRows, err := r.db.Pool.Query(ctx, `
		SELECT id, text, question_type, visualization_type
		FROM questions
		WHERE poll_id = $1
		ORDER BY display_order, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer qRows.Close()

	var results []*domain.QuestionResults
	byID := make(map[int64]*domain.QuestionResults)
	for qRows.Next() {
		var res domain.QuestionResults
		if err := qRows.Scan(&res.QuestionID, &res.Text, &res.Type, &res.Visualization); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		results = append(results, &res)
		byID[res.QuestionID] = &res
	}
	if err := qRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	if len(results) == 0 {
		return results, nil
	}

	// Option tallies, including zero-vote options
	optRows, err := r.db.Pool.Query(ctx, `
		SELECT o.question_id, o.id, o.text, COUNT(v.id)
		FROM options o
		JOIN questions q ON q.id = o.question_id
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE q.poll_id = $1
		GROUP BY o.question_id, o.id, o.text
		ORDER BY o.id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var questionID int64
		var count domain.OptionCount
		if err := optRows.Scan(&questionID, &count.OptionID, &count.Text, &count.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		if res, ok := byID[questionID]; ok {
			res.Options = append(res.Options, &count)
			res.TotalVotes += count.Count
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tallies: %w", err)
	}

	// Open-ended answers, oldest first
	ansRows, err := r.db.Pool.Query(ctx, `
		SELECT v.question_id, v.text_answer
		FROM votes v
		JOIN questions q ON q.id = v.question_id
		WHERE q.poll_id = $1 AND v.text_answer IS NOT NULL
		ORDER BY v.created_at, v.id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer ansRows.Close()

	for ansRows.Next() {
		var questionID int64
		var answer string
		if err := ansRows.Scan(&questionID, &answer); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if res, ok := byID[questionID]; ok {
			res.Answers = append(res.Answers, answer)
			res.TotalVotes++
		}
	}
	if err := ansRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}

	return results, nil
}
