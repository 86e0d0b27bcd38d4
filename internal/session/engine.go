// Package session groups a student's submitted answers into numbered solve
// sessions and scores them. There is no session table: state lives entirely in
// the append-only answer_records log.
package session

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"

	"github.com/quizzer-app/quizzer/internal/quiz"
)

type Engine struct {
	db    *sql.DB
	store quiz.Store
}

func NewEngine(db *sql.DB, store quiz.Store) *Engine {
	return &Engine{db: db, store: store}
}

// StartSession allocates the next session id for the user: max existing + 1,
// starting at 1. The counter is global per user, not per quiz. The returned id
// lives in caller-side transient state for the duration of the attempt; the
// engine does not track in-progress sessions.
func (e *Engine) StartSession(ctx context.Context, userID int64) (int64, error) {
	// Single-statement read keeps the max+1 window as small as the log
	// allows; concurrent starts for one user can still race, see DESIGN.md.
	var id int64
	err := e.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(session_id)+1, 1) FROM answer_records WHERE user_id=$1`,
		userID).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RecordAnswers validates every submitted question/option reference before
// anything is written. Ids arrive as raw strings; unparseable ids count as
// missing. If any reference is bad, all violations come back in errs and no
// row is persisted. err carries storage failures only; a lookup that cannot
// reach the database is never reported as a missing reference.
// With both return values nil, one answer record per pair was appended in one
// transaction.
func (e *Engine) RecordAnswers(ctx context.Context, userID, quizID, sessionID int64, answers map[string]string) (errs []error, err error) {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]quiz.AnswerRecord, 0, len(answers))
	for _, rawQuestion := range keys {
		rawOption := answers[rawQuestion]
		questionID, ok, err := e.lookup(ctx, `SELECT 1 FROM questions WHERE id=$1`, rawQuestion)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs = append(errs, quiz.UnknownQuestionError{ID: rawQuestion})
		}
		optionID, ok, err := e.lookup(ctx, `SELECT 1 FROM answer_options WHERE id=$1`, rawOption)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs = append(errs, quiz.UnknownOptionError{ID: rawOption})
		}
		records = append(records, quiz.AnswerRecord{
			UserID:     userID,
			QuizID:     quizID,
			SessionID:  sessionID,
			QuestionID: questionID,
			OptionID:   optionID,
		})
	}
	if len(errs) > 0 {
		return errs, nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answer_records (user_id, quiz_id, session_id, question_id, option_id)
			 VALUES ($1,$2,$3,$4,$5)`,
			rec.UserID, rec.QuizID, rec.SessionID, rec.QuestionID, rec.OptionID); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return nil, nil
}

// lookup parses a raw id and probes for the row. Only an unparseable id or
// sql.ErrNoRows count as missing; any other query error is returned as is.
func (e *Engine) lookup(ctx context.Context, query, raw string) (int64, bool, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	var one int
	if err := e.db.QueryRowContext(ctx, query, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// GradeSession scores one attempt. Total is the quiz's current question count,
// not the record count: unanswered questions count against the student. A
// record is correct when its option id matches the question's current correct
// option; since edits replace question and option ids, records from before an
// edit grade as incorrect. The log is append-only and session ids are not
// reserved, so resubmitting under an already used session id adds records and
// can push correct above total.
func (e *Engine) GradeSession(ctx context.Context, quizID, userID, sessionID int64) (correct, total int64, err error) {
	q, err := e.store.GetQuiz(ctx, quizID)
	if err != nil {
		return 0, 0, err
	}
	total = int64(len(q.Questions))
	err = e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_results
		 WHERE quiz_id=$1 AND user_id=$2 AND session_id=$3 AND option_id = correct_option_id`,
		quizID, userID, sessionID).Scan(&correct)
	if err != nil {
		return 0, 0, err
	}
	return correct, total, nil
}
