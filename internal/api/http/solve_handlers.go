package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/quizzer-app/quizzer/internal/auth/middleware"
	"github.com/quizzer-app/quizzer/internal/quiz"
	"github.com/quizzer-app/quizzer/internal/rbac"
	"github.com/quizzer-app/quizzer/internal/session"
)

// POST /quizzes/{quizID}/solve/start
// Allocates the student's next session id. The id is transient caller-side
// state for the duration of the attempt and comes back with the submission.
func StartSolveHandler(store quiz.Store, engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := loadQuiz(w, r, store); !ok {
			return
		}
		sessionID, err := engine.StartSession(r.Context(), authmw.UserIDFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"session_id": sessionID})
	}
}

type solveSubmission struct {
	SessionID int64             `json:"session_id"`
	Answers   map[string]string `json:"answers"` // question id -> option id, raw as submitted
}

// POST /quizzes/{quizID}/solve
// Records the whole batch of answers and grades the session. Bad references
// are all reported together and nothing is written.
func SubmitSolveHandler(store quiz.Store, engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := loadQuiz(w, r, store)
		if !ok {
			return
		}
		var sub solveSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		userID := authmw.UserIDFromContext(r.Context())
		errs, err := engine.RecordAnswers(r.Context(), userID, q.ID, sub.SessionID, sub.Answers)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if len(errs) > 0 {
			writeErrors(w, r, http.StatusBadRequest, errs)
			return
		}

		correct, total, err := engine.GradeSession(r.Context(), q.ID, userID, sub.SessionID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{
			"correct_answers": correct,
			"total_answers":   total,
		})
	}
}

// GET /history: authors see sessions on quizzes they own, students their own
// sessions.
func HistoryHandler(engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())
		var (
			rows []session.HistoryRow
			err  error
		)
		if rbac.RoleFromContext(r.Context()) == "author" {
			rows, err = engine.HistoryForAuthor(r.Context(), userID)
		} else {
			rows, err = engine.HistoryForUser(r.Context(), userID)
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
