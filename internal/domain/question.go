package domain

// QuestionType enumerates the supported question kinds
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeOpenEnded      QuestionType = "open_ended"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeOpenEnded:
		return true
	}
	return false
}

// Choice reports whether the question type carries options
func (t QuestionType) Choice() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Visualization hints for the frontend renderer
const (
	VisualizationBar       = "bar"
	VisualizationPie       = "pie"
	VisualizationWordcloud = "wordcloud"
	VisualizationList      = "list"
)

// DefaultVisualization is applied when a question omits the hint
const DefaultVisualization = VisualizationBar

// Question belongs to exactly one poll and holds an explicit display order,
// unique within the poll
type Question struct {
	ID            int64        `json:"id"`
	PollID        int64        `json:"poll_id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"question_type"`
	Visualization string       `json:"visualization_type"`
	Order         int          `json:"order"`
	Options       []*Option    `json:"options"`
}

// HasOption reports whether the question owns an option with the given id
func (q *Question) HasOption(optionID int64) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Option belongs to exactly one question; only meaningful for choice questions
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
}

// QuestionCreateRequest is the payload for adding or editing a question.
// Editing replaces the option set wholesale.
type QuestionCreateRequest struct {
	Text          string       `json:"text"`
	Type          QuestionType `json:"question_type"`
	Visualization string       `json:"visualization_type,omitempty"`
	Options       []struct {
		Text string `json:"text"`
	} `json:"options"`
}

// ValidVisualization reports whether the given hint is known
func ValidVisualization(name string) bool {
	switch name {
	case VisualizationBar, VisualizationPie, VisualizationWordcloud, VisualizationList:
		return true
	}
	return false
}
