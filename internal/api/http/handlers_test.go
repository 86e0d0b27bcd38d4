package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/quizzer-app/quizzer/internal/auth/middleware"
	"github.com/quizzer-app/quizzer/internal/db"
	"github.com/quizzer-app/quizzer/internal/quiz"
	"github.com/quizzer-app/quizzer/internal/rbac"
	"github.com/quizzer-app/quizzer/internal/session"
)

// newTestServer wires the same route table as cmd/quizzerd, minus CORS and
// request logging, over an in-memory database.
func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	store := quiz.NewSQLStore(dbh)
	engine := session.NewEngine(dbh, store)
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	r.Post("/auth/register", RegisterHandler(dbh))
	r.Post("/auth/login", LoginHandler(dbh, authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Use(authmw.AttachRoleFromDB(dbh, false))

		pr.With(rbac.Require("quiz:create")).Post("/quizzes", CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:edit")).Put("/quizzes/{quizID}", EditQuizHandler(store))
		pr.With(rbac.Require("quiz:delete")).Delete("/quizzes/{quizID}", DeleteQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes", ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", GetQuizHandler(store))
		pr.With(rbac.Require("history:view")).Get("/history", HistoryHandler(engine))
		pr.With(rbac.Require("quiz:solve")).Post("/quizzes/{quizID}/solve/start", StartSolveHandler(store, engine))
		pr.With(rbac.Require("quiz:solve")).Post("/quizzes/{quizID}/solve", SubmitSolveHandler(store, engine))
		pr.With(rbac.Require("user:change_password")).Post("/users/change-password", ChangePasswordHandler(dbh))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, dbh
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, body string, hdr map[string]string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func register(t *testing.T, base, username, role string) *client {
	t.Helper()
	c := &client{t: t, base: base}
	resp := c.do("POST", "/auth/register",
		fmt.Sprintf(`{"username":%q,"password":"secret","role":%q}`, username, role), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do("POST", "/auth/login",
		fmt.Sprintf(`{"username":%q,"password":"secret"}`, username), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["role"] != role {
		t.Fatalf("login %s: role %q, want %q", username, body["role"], role)
	}
	c.token = body["access_token"]
	return c
}

const capitalsPayload = `{"Capitals": {
	"Capital of Germany?": {"Paris": false, "London": false, "Berlin": true}
}}`

func TestAuthorStudentSolveFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	author := register(t, srv.URL, "alice", "author")
	student := register(t, srv.URL, "bob", "student")

	resp := author.do("POST", "/quizzes", capitalsPayload, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	quizID := decode[map[string]int64](t, resp)["id"]

	// Students list every quiz; the tree they fetch carries no answer key.
	resp = student.do("GET", "/quizzes", "", nil)
	list := decode[[]quiz.QuizSummary](t, resp)
	if len(list) != 1 || list[0].AuthorName != "alice" {
		t.Fatalf("student listing: %+v", list)
	}
	resp = student.do("GET", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	tree := decode[quiz.Quiz](t, resp)
	q := tree.Questions[0]
	if q.CorrectOptionID != 0 {
		t.Fatalf("answer key leaked to student: %+v", q)
	}
	for _, o := range q.Options {
		if o.Correct {
			t.Fatalf("answer key leaked to student: %+v", o)
		}
	}

	// The author's copy keeps the key.
	resp = author.do("GET", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	authorTree := decode[quiz.Quiz](t, resp)
	if authorTree.Questions[0].CorrectOptionID <= 0 {
		t.Fatal("author should see the correct option id")
	}

	resp = student.do("POST", fmt.Sprintf("/quizzes/%d/solve/start", quizID), "", nil)
	sessionID := decode[map[string]int64](t, resp)["session_id"]
	if sessionID != 1 {
		t.Fatalf("first session id: %d", sessionID)
	}

	var berlin int64
	for _, o := range q.Options {
		if o.Text == "Berlin" {
			berlin = o.ID
		}
	}
	submission := fmt.Sprintf(`{"session_id":%d,"answers":{"%d":"%d"}}`,
		sessionID, q.ID, berlin)
	resp = student.do("POST", fmt.Sprintf("/quizzes/%d/solve", quizID), submission, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	grade := decode[map[string]int64](t, resp)
	if grade["correct_answers"] != 1 || grade["total_answers"] != 1 {
		t.Fatalf("grade: %+v", grade)
	}

	// Both sides see the session in history.
	for _, c := range []*client{author, student} {
		resp = c.do("GET", "/history", "", nil)
		rows := decode[[]session.HistoryRow](t, resp)
		if len(rows) != 1 || rows[0].UserName != "bob" || rows[0].Correct != 1 {
			t.Fatalf("history: %+v", rows)
		}
	}
}

func TestRoleEnforcement(t *testing.T) {
	srv, _ := newTestServer(t)
	author := register(t, srv.URL, "alice", "author")
	rival := register(t, srv.URL, "mallory", "author")
	student := register(t, srv.URL, "bob", "student")

	resp := author.do("POST", "/quizzes", capitalsPayload, nil)
	quizID := decode[map[string]int64](t, resp)["id"]

	// Students cannot author, authors cannot solve.
	resp = student.do("POST", "/quizzes", capitalsPayload, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student create: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = author.do("POST", fmt.Sprintf("/quizzes/%d/solve/start", quizID), "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("author solve: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Ownership gates edit and delete even for another author.
	resp = rival.do("PUT", fmt.Sprintf("/quizzes/%d", quizID), capitalsPayload, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("rival edit: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = rival.do("DELETE", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("rival delete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// No token at all.
	anon := &client{t: t, base: srv.URL}
	resp = anon.do("GET", "/quizzes", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = author.do("DELETE", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner delete: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = author.do("DELETE", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete missing: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestValidationErrorsLocalized(t *testing.T) {
	srv, _ := newTestServer(t)
	author := register(t, srv.URL, "alice", "author")

	// One option and no marked answer: two violations reported together.
	payload := `{"Broken": {"Only question": {"Lonely option": false}}}`
	resp := author.do("POST", "/quizzes", payload, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	want := "Question should contain at least 2 options to answer\n" +
		"Question should contain at least one answer"
	if body["error"] != want {
		t.Fatalf("error body %q, want %q", body["error"], want)
	}

	resp = author.do("POST", "/quizzes", payload, map[string]string{"Accept-Language": "ru"})
	body = decode[map[string]string](t, resp)
	if !strings.Contains(body["error"], "Вопрос должен иметь как минимум 2 варианта ответа") {
		t.Fatalf("russian error body %q", body["error"])
	}

	// A non-object payload is one wrong-shape error, not a violation list.
	resp = author.do("POST", "/quizzes", `["not","a","quiz"]`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body = decode[map[string]string](t, resp)
	if body["error"] != "Got wrong data, should be dict of questions" {
		t.Fatalf("wrong-shape body %q", body["error"])
	}
}

func TestSubmitRejectsUnknownReferences(t *testing.T) {
	srv, _ := newTestServer(t)
	author := register(t, srv.URL, "alice", "author")
	student := register(t, srv.URL, "bob", "student")

	resp := author.do("POST", "/quizzes", capitalsPayload, nil)
	quizID := decode[map[string]int64](t, resp)["id"]

	resp = student.do("POST", fmt.Sprintf("/quizzes/%d/solve", quizID),
		`{"session_id":1,"answers":{"999":"888"}}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	want := "Question with id=999 does not exist\nAnswer with id=888 does not exist"
	if body["error"] != want {
		t.Fatalf("error body %q, want %q", body["error"], want)
	}

	// Nothing was recorded, so history stays empty.
	resp = student.do("GET", "/history", "", nil)
	if rows := decode[[]session.HistoryRow](t, resp); len(rows) != 0 {
		t.Fatalf("history should be empty, got %+v", rows)
	}
}

func TestRegisterAndChangePassword(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	resp := c.do("POST", "/auth/register", `{"username":"","password":"x"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty username: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	student := register(t, srv.URL, "bob", "student")
	resp = c.do("POST", "/auth/register", `{"username":"bob","password":"x"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do("POST", "/auth/login", `{"username":"nobody","password":"secret"}`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user login: status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "Incorrect username" {
		t.Fatalf("login error %q", body["error"])
	}

	resp = student.do("POST", "/users/change-password",
		`{"old_password":"wrong","new_password":"next"}`, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("wrong old password: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = student.do("POST", "/users/change-password",
		`{"old_password":"secret","new_password":"next"}`, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("change password: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do("POST", "/auth/login", `{"username":"bob","password":"secret"}`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = c.do("POST", "/auth/login", `{"username":"bob","password":"next"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new password rejected: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestEditKeepsQuizIDAndRekeysQuestions(t *testing.T) {
	srv, _ := newTestServer(t)
	author := register(t, srv.URL, "alice", "author")

	resp := author.do("POST", "/quizzes", capitalsPayload, nil)
	quizID := decode[map[string]int64](t, resp)["id"]
	resp = author.do("GET", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	before := decode[quiz.Quiz](t, resp)

	edited := `{"Capitals v2": {
		"Capital of France?": {"Paris": true, "Madrid": false}
	}}`
	resp = author.do("PUT", fmt.Sprintf("/quizzes/%d", quizID), edited, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit: status %d", resp.StatusCode)
	}
	if id := decode[map[string]int64](t, resp)["id"]; id != quizID {
		t.Fatalf("edit changed quiz id: %d -> %d", quizID, id)
	}

	resp = author.do("GET", fmt.Sprintf("/quizzes/%d", quizID), "", nil)
	after := decode[quiz.Quiz](t, resp)
	if after.Name != "Capitals v2" || len(after.Questions) != 1 {
		t.Fatalf("unexpected edited quiz: %+v", after)
	}
	if after.Questions[0].ID == before.Questions[0].ID {
		t.Fatal("question id should have churned")
	}
}
