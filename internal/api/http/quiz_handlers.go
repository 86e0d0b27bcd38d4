package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/quizzer-app/quizzer/internal/auth/middleware"
	"github.com/quizzer-app/quizzer/internal/quiz"
	"github.com/quizzer-app/quizzer/internal/rbac"
)

// POST /quizzes
// Body is the author payload shape: {"quiz name": {"question": {"option": isCorrect}}}.
// Validation errors are collected across the whole tree and reported together.
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())

		q, err := quiz.ParseQuizPayload(r.Body, userID)
		if err != nil {
			writeErrors(w, r, http.StatusBadRequest, []error{err})
			return
		}
		if errs := quiz.ValidateQuiz(q); len(errs) > 0 {
			writeErrors(w, r, http.StatusBadRequest, errs)
			return
		}

		id, err := store.CreateQuiz(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// GET /quizzes: authors see their own quizzes, students see all of them,
// most recent first.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			list []quiz.QuizSummary
			err  error
		)
		if rbac.RoleFromContext(r.Context()) == "author" {
			list, err = store.ListByAuthor(r.Context(), authmw.UserIDFromContext(r.Context()))
		} else {
			list, err = store.ListAll(r.Context())
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID}: students get the tree without answer keys.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := loadQuiz(w, r, store)
		if !ok {
			return
		}
		if rbac.RoleFromContext(r.Context()) == "student" {
			q = q.SanitizeForStudent()
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// PUT /quizzes/{quizID}
// Edit keeps the quiz id but replaces every question and option id.
func EditQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())
		original, ok := loadQuiz(w, r, store)
		if !ok {
			return
		}
		if err := quiz.Authorize(original, userID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		q, err := quiz.ParseQuizPayload(r.Body, userID)
		if err != nil {
			writeErrors(w, r, http.StatusBadRequest, []error{err})
			return
		}
		if errs := quiz.ValidateQuiz(q); len(errs) > 0 {
			writeErrors(w, r, http.StatusBadRequest, errs)
			return
		}

		if err := store.ReplaceQuiz(r.Context(), original.ID, q); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"id": original.ID})
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := loadQuiz(w, r, store)
		if !ok {
			return
		}
		if err := quiz.Authorize(q, authmw.UserIDFromContext(r.Context())); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if err := store.DeleteQuiz(r.Context(), q.ID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loadQuiz(w http.ResponseWriter, r *http.Request, store quiz.Store) (quiz.Quiz, bool) {
	id, err := parseID(chi.URLParam(r, "quizID"))
	if err != nil {
		http.Error(w, "bad quiz id", http.StatusBadRequest)
		return quiz.Quiz{}, false
	}
	q, err := store.GetQuiz(r.Context(), id)
	if err != nil {
		if errors.Is(err, quiz.ErrQuizNotFound) {
			http.Error(w, "quiz not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), 500)
		}
		return quiz.Quiz{}, false
	}
	return q, true
}
