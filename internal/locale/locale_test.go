package locale

import (
	"errors"
	"testing"

	"github.com/quizzer-app/quizzer/internal/quiz"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"en", "en"},
		{"en-US,en;q=0.9", "en"},
		{"ru", "ru"},
		{"ru-RU,ru;q=0.9,en;q=0.5", "ru"},
		{"de", "en"}, // unsupported falls back to the first supported tag
		{"garbage;;;", "en"},
	}
	for _, tc := range cases {
		if got := Match(tc.header); got != tc.want {
			t.Errorf("Match(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message("en", quiz.ErrNoQuizName); got != "Quiz name is required" {
		t.Errorf("en sentinel: %q", got)
	}
	if got := Message("ru", quiz.ErrNoQuizName); got != "Необходимо ввести название опросника" {
		t.Errorf("ru sentinel: %q", got)
	}
	if got := Message("en", quiz.UnknownQuestionError{ID: "42"}); got != "Question with id=42 does not exist" {
		t.Errorf("unknown question: %q", got)
	}
	if got := Message("ru", quiz.UnknownOptionError{ID: "abc"}); got != "Вариант ответа с id=abc не существует" {
		t.Errorf("unknown option: %q", got)
	}
	// Unknown languages fall back to English, unknown errors to Error().
	if got := Message("fr", quiz.ErrNoPassword); got != "Password is required" {
		t.Errorf("fallback catalog: %q", got)
	}
	plain := errors.New("disk on fire")
	if got := Message("en", plain); got != "disk on fire" {
		t.Errorf("fallback error: %q", got)
	}
}

func TestJoin(t *testing.T) {
	got := Join("en", []error{quiz.ErrNotEnoughAnswers, quiz.ErrNoCorrectAnswer})
	want := "Question should contain at least 2 options to answer\n" +
		"Question should contain at least one answer"
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
	if got := Join("en", nil); got != "" {
		t.Errorf("empty Join = %q", got)
	}
}

// Every sentinel must resolve in both catalogs; a missing key would render an
// empty message at the HTTP boundary.
func TestCatalogsComplete(t *testing.T) {
	for _, lang := range []string{"en", "ru"} {
		for sentinel, key := range sentinelKeys {
			if catalogs[lang][key] == "" {
				t.Errorf("%s catalog missing %q for %v", lang, key, sentinel)
			}
		}
	}
}
