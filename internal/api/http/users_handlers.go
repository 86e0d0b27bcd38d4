package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	authmw "github.com/quizzer-app/quizzer/internal/auth/middleware"
	"github.com/quizzer-app/quizzer/internal/db"
	"github.com/quizzer-app/quizzer/internal/quiz"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // author|student, default student
}

// POST /auth/register
func RegisterHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" {
			writeErrors(w, r, http.StatusBadRequest, []error{quiz.ErrNoUsername})
			return
		}
		if req.Password == "" {
			writeErrors(w, r, http.StatusBadRequest, []error{quiz.ErrNoPassword})
			return
		}
		if req.Role == "" {
			req.Role = "student"
		}
		if req.Role != "student" && req.Role != "author" {
			http.Error(w, "invalid role: "+req.Role, http.StatusBadRequest)
			return
		}

		var existing int64
		err := dbh.QueryRowContext(r.Context(),
			`SELECT id FROM users WHERE username=$1`, req.Username).Scan(&existing)
		if err == nil {
			writeErrors(w, r, http.StatusConflict, []error{quiz.ErrUsernameTaken})
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, err.Error(), 500)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		var id int64
		err = dbh.QueryRowContext(r.Context(),
			`INSERT INTO users (username, password_hash, role, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
			req.Username, string(hash), req.Role, time.Now().Unix()).Scan(&id)
		if err != nil {
			// The pre-check races with concurrent registrations; the UNIQUE
			// constraint is the authority.
			if db.IsUniqueViolation(err) {
				writeErrors(w, r, http.StatusConflict, []error{quiz.ErrUsernameTaken})
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(dbh *sql.DB, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		var (
			id   int64
			hash string
			role string
		)
		err := dbh.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role FROM users WHERE username=$1`, req.Username).
			Scan(&id, &hash, &role)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeErrors(w, r, http.StatusUnauthorized, []error{quiz.ErrIncorrectUsername})
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			writeErrors(w, r, http.StatusUnauthorized, []error{quiz.ErrIncorrectPassword})
			return
		}

		tok, err := authSvc.IssueJWT(id, role)
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": tok, "role": role})
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// POST /users/change-password
func ChangePasswordHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.UserIDFromContext(r.Context())
		if userID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.NewPassword == "" {
			writeErrors(w, r, http.StatusBadRequest, []error{quiz.ErrNoPassword})
			return
		}

		var storedHash string
		err := dbh.QueryRowContext(r.Context(),
			`SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&storedHash)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			writeErrors(w, r, http.StatusForbidden, []error{quiz.ErrIncorrectPassword})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := dbh.ExecContext(r.Context(),
			`UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), userID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
