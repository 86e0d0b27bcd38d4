package quiz

// Option is a selectable answer belonging to one question.
// ID is -1 until the option has been persisted.
type Option struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

// Question is a text prompt with multiple options, exactly one of them correct.
type Question struct {
	ID              int64    `json:"id"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID int64    `json:"correct_option_id,omitempty"`
}

// Quiz is a named ordered collection of questions owned by one author.
type Quiz struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// QuizSummary is the row shape of quiz listings.
type QuizSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
}

// AnswerRecord is one submitted answer within a solve session. Records are
// append-only: they are written once and never mutated or deleted.
type AnswerRecord struct {
	UserID     int64 `json:"user_id"`
	QuizID     int64 `json:"quiz_id"`
	SessionID  int64 `json:"session_id"`
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

// NewQuestion builds an unpersisted question with the id sentinels set.
func NewQuestion(text string, options []Option) Question {
	return Question{ID: -1, Text: text, Options: options, CorrectOptionID: -1}
}

// SanitizeForStudent strips answer keys so a solving student never sees which
// option is marked correct.
func (q Quiz) SanitizeForStudent() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		cp := question
		cp.CorrectOptionID = 0
		cp.Options = make([]Option, len(question.Options))
		for j, o := range question.Options {
			o.Correct = false
			cp.Options[j] = o
		}
		out.Questions[i] = cp
	}
	return out
}
