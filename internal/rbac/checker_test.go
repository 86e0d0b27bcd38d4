package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"author", "quiz:create", true},
		{"author", "quiz:solve", false},
		{"student", "quiz:solve", true},
		{"student", "quiz:delete", false},
		{"student", "history:view", true},
		{"nobody", "quiz:view", false},
		{"", "quiz:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcards(t *testing.T) {
	c := NewChecker(map[string][]string{
		"admin":   {"*"},
		"grader":  {"quiz:*"},
		"limited": {"quiz:view"},
	})
	if !c.Has("admin", "anything:at_all") {
		t.Error("star should grant everything")
	}
	if !c.Has("grader", "quiz:delete") || c.Has("grader", "user:change_password") {
		t.Error("prefix wildcard should stay inside its namespace")
	}
	if c.Has("limited", "quiz:viewers") {
		t.Error("exact permission must not prefix-match")
	}
}

func TestRequireMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Require("quiz:create")(next)

	for _, tc := range []struct {
		role string
		want int
	}{
		{"author", http.StatusTeapot},
		{"student", http.StatusForbidden},
		{"", http.StatusForbidden},
	} {
		req := httptest.NewRequest("POST", "/quizzes", nil)
		if tc.role != "" {
			req = req.WithContext(WithRole(req.Context(), tc.role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("role %q: status %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}

func TestRoleContextRoundtrip(t *testing.T) {
	ctx := context.Background()
	if got := RoleFromContext(ctx); got != "" {
		t.Fatalf("empty context should carry no role, got %q", got)
	}
	if got := RoleFromContext(WithRole(ctx, "author")); got != "author" {
		t.Fatalf("got %q, want author", got)
	}
}
