package quiz

// ValidateQuiz checks structural well-formedness of a quiz tree before any
// persistence. All violations across the whole tree are collected in order and
// returned together so the caller can report every problem in one response.
// Ownership is not checked here; see Authorize.
func ValidateQuiz(q Quiz) []error {
	var errs []error
	if q.Name == "" {
		errs = append(errs, ErrNoQuizName)
	}
	if len(q.Questions) == 0 {
		errs = append(errs, ErrNoQuestions)
	}
	for _, question := range q.Questions {
		errs = append(errs, validateQuestion(question)...)
	}
	return errs
}

func validateQuestion(q Question) []error {
	var errs []error
	if q.Text == "" {
		errs = append(errs, ErrNoQuestionText)
	}
	if len(q.Options) < 2 {
		errs = append(errs, ErrNotEnoughAnswers)
	}
	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
	}
	if correct > 1 {
		errs = append(errs, ErrMultipleCorrectAnswers)
	}
	if correct == 0 {
		errs = append(errs, ErrNoCorrectAnswer)
	}
	for _, o := range q.Options {
		if o.Text == "" {
			errs = append(errs, ErrNoAnswerText)
		}
	}
	return errs
}

// Authorize is the one fatal check: the acting user must own the quiz.
// Unlike collected validation errors it aborts the whole request immediately.
func Authorize(q Quiz, userID int64) error {
	if q.AuthorID != userID {
		return ErrForbidden
	}
	return nil
}
