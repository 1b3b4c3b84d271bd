package domain

import "time"

// Vote is an anonymous, immutable answer to a single question. A choice vote
// references an option; an open-ended vote carries free text instead.
type Vote struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	OptionID   *int64    `json:"option_id,omitempty"`
	TextAnswer *string   `json:"text_answer,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoteRequest is the payload for submitting a vote by slug
type VoteRequest struct {
	QuestionID int64   `json:"question_id"`
	OptionID   *int64  `json:"option_id,omitempty"`
	TextAnswer *string `json:"text_answer,omitempty"`
}

// OptionCount is a per-option tally within a question's results
type OptionCount struct {
	OptionID int64  `json:"option_id"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// QuestionResults aggregates the votes of one question. Choice questions
// report option tallies; open-ended questions report the raw answer list.
type QuestionResults struct {
	QuestionID    int64          `json:"question_id"`
	Text          string         `json:"text"`
	Type          QuestionType   `json:"question_type"`
	Visualization string         `json:"visualization_type"`
	Options       []*OptionCount `json:"options,omitempty"`
	Answers       []string       `json:"answers,omitempty"`
	TotalVotes    int            `json:"total_votes"`
}

// PollResults aggregates results for every question of a poll
type PollResults struct {
	PollID    int64              `json:"poll_id"`
	Slug      string             `json:"slug"`
	Title     string             `json:"title"`
	IsActive  bool               `json:"is_active"`
	Questions []*QuestionResults `json:"questions"`
	UpdatedAt time.Time          `json:"updated_at"`
}
