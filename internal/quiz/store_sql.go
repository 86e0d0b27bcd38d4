package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore implements Store on database/sql. The SQL sticks to $N
// placeholders, which both the pgx stdlib driver and modernc sqlite accept,
// so one query text serves both backends.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return createQuizTx(ctx, tx, q)
}

func createQuizTx(ctx context.Context, tx *sql.Tx, q Quiz) (int64, error) {
	var quizID int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO quizzes (name, author_id) VALUES ($1,$2) RETURNING id`,
		q.Name, q.AuthorID).Scan(&quizID)
	if err != nil {
		return 0, fmt.Errorf("insert quiz: %w", err)
	}
	return quizID, insertQuestionsTx(ctx, tx, quizID, q.Questions)
}

func insertQuestionsTx(ctx context.Context, tx *sql.Tx, quizID int64, questions []Question) error {
	for _, question := range questions {
		// correct_option_id starts at the -1 sentinel and is back-filled
		// once the owning option row exists.
		var questionID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO questions (text, correct_option_id) VALUES ($1,-1) RETURNING id`,
			question.Text).Scan(&questionID)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		correctID := int64(-1)
		for _, option := range question.Options {
			var optionID int64
			err = tx.QueryRowContext(ctx,
				`INSERT INTO answer_options (text) VALUES ($1) RETURNING id`,
				option.Text).Scan(&optionID)
			if err != nil {
				return fmt.Errorf("insert option: %w", err)
			}
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO question_answer_rel (question_id, answer_option_id) VALUES ($1,$2)`,
				questionID, optionID); err != nil {
				return err
			}
			if option.Correct {
				correctID = optionID
			}
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE questions SET correct_option_id=$1 WHERE id=$2`,
			correctID, questionID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_question_rel (quiz_id, question_id) VALUES ($1,$2)`,
			quizID, questionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, author_id FROM quizzes WHERE id=$1`, id).
		Scan(&q.ID, &q.Name, &q.AuthorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}

	// Link order follows question id: questions are inserted sequentially
	// inside one transaction, so ascending id is creation order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.text, q.correct_option_id
		 FROM quiz_question_rel r
		 JOIN questions q ON q.id = r.question_id
		 WHERE r.quiz_id=$1
		 ORDER BY q.id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var question Question
		if err := rows.Scan(&question.ID, &question.Text, &question.CorrectOptionID); err != nil {
			return Quiz{}, err
		}
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}

	for i := range q.Questions {
		if err := s.loadOptions(ctx, &q.Questions[i]); err != nil {
			return Quiz{}, err
		}
	}
	return q, nil
}

func (s *SQLStore) loadOptions(ctx context.Context, question *Question) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ao.id, ao.text
		 FROM question_answer_rel r
		 JOIN answer_options ao ON ao.id = r.answer_option_id
		 WHERE r.question_id=$1
		 ORDER BY ao.id`, question.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Text); err != nil {
			return err
		}
		o.Correct = o.ID == question.CorrectOptionID
		question.Options = append(question.Options, o)
	}
	return rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return deleteQuizTx(ctx, tx, id)
}

// deleteQuizTx collects the row ids of the whole tree first, then deletes
// leaf to root within the caller's transaction.
func deleteQuizTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if err := deleteQuestionsTx(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

// deleteQuestionsTx removes the quiz's question and option subtree, leaving
// the quiz row itself in place.
func deleteQuestionsTx(ctx context.Context, tx *sql.Tx, id int64) error {
	questionIDs, err := collectIDs(ctx, tx,
		`SELECT question_id FROM quiz_question_rel WHERE quiz_id=$1`, id)
	if err != nil {
		return err
	}
	var optionIDs []int64
	for _, qid := range questionIDs {
		ids, err := collectIDs(ctx, tx,
			`SELECT answer_option_id FROM question_answer_rel WHERE question_id=$1`, qid)
		if err != nil {
			return err
		}
		optionIDs = append(optionIDs, ids...)
	}

	for _, oid := range optionIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM answer_options WHERE id=$1`, oid); err != nil {
			return err
		}
	}
	for _, qid := range questionIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM question_answer_rel WHERE question_id=$1`, qid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, qid); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_question_rel WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	return nil
}

// ReplaceQuiz keeps the quiz row (so the id in answer records stays valid) but
// rebuilds the question and option subtree from scratch. Old records then
// reference question ids that no longer exist and grade as incorrect.
func (s *SQLStore) ReplaceQuiz(ctx context.Context, id int64, q Quiz) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	res, err := tx.ExecContext(ctx, `UPDATE quizzes SET name=$1 WHERE id=$2`, q.Name, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	if err = deleteQuestionsTx(ctx, tx, id); err != nil {
		return err
	}
	return insertQuestionsTx(ctx, tx, id, q.Questions)
}

func (s *SQLStore) ListByAuthor(ctx context.Context, authorID int64) ([]QuizSummary, error) {
	return s.list(ctx,
		`SELECT q.id, q.name, q.author_id, u.username
		 FROM quizzes q JOIN users u ON q.author_id = u.id
		 WHERE q.author_id=$1
		 ORDER BY q.id DESC`, authorID)
}

func (s *SQLStore) ListAll(ctx context.Context) ([]QuizSummary, error) {
	return s.list(ctx,
		`SELECT q.id, q.name, q.author_id, u.username
		 FROM quizzes q JOIN users u ON q.author_id = u.id
		 ORDER BY q.id DESC`)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]QuizSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizSummary{}
	for rows.Next() {
		var sum QuizSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.AuthorID, &sum.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func collectIDs(ctx context.Context, tx *sql.Tx, query string, arg int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
