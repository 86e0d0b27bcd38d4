package quiz

import "context"

// Store persists quiz trees. Create, Replace and Delete are atomic per call:
// either the whole tree is visible to later reads or none of it is.
type Store interface {
	// CreateQuiz persists the quiz, its questions, their options, the
	// correct-option back references and the link rows, returning the new id.
	CreateQuiz(ctx context.Context, q Quiz) (int64, error)

	// GetQuiz reconstructs the full tree: questions in link order, each
	// question's options, the correct option marked. ErrQuizNotFound if the
	// quiz row is absent.
	GetQuiz(ctx context.Context, id int64) (Quiz, error)

	// DeleteQuiz cascades through the link tables down to options.
	DeleteQuiz(ctx context.Context, id int64) error

	// ReplaceQuiz implements edit as delete-questions + recreate in one
	// atomic step. The quiz id is stable across edits; question and option
	// ids are not. ErrQuizNotFound if the quiz row is absent.
	ReplaceQuiz(ctx context.Context, id int64, q Quiz) error

	// ListByAuthor returns the author's quizzes, most recent id first.
	ListByAuthor(ctx context.Context, authorID int64) ([]QuizSummary, error)

	// ListAll returns every quiz, most recent id first.
	ListAll(ctx context.Context) ([]QuizSummary, error)
}
