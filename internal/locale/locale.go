// Package locale renders structured domain errors as user-facing text. The
// core engine is locale-agnostic; message formatting happens only here, at
// the HTTP boundary.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/quizzer-app/quizzer/internal/quiz"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// Match picks "en" or "ru" from an Accept-Language header value.
func Match(acceptLanguage string) string {
	_, index := language.MatchStrings(matcher, acceptLanguage)
	if index == 1 {
		return "ru"
	}
	return "en"
}

// Message translates one error kind. Unknown kinds fall back to err.Error().
func Message(lang string, err error) string {
	cat, ok := catalogs[lang]
	if !ok {
		cat = catalogs["en"]
	}

	var unknownQuestion quiz.UnknownQuestionError
	if errors.As(err, &unknownQuestion) {
		return fmt.Sprintf(cat["error_no_question_id"], unknownQuestion.ID)
	}
	var unknownOption quiz.UnknownOptionError
	if errors.As(err, &unknownOption) {
		return fmt.Sprintf(cat["error_no_answer_id"], unknownOption.ID)
	}

	for sentinel, key := range sentinelKeys {
		if errors.Is(err, sentinel) {
			return cat[key]
		}
	}
	return err.Error()
}

// Join renders a collected error list as one message per violation, newline
// separated.
func Join(lang string, errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, Message(lang, err))
	}
	return strings.Join(msgs, "\n")
}

var sentinelKeys = map[error]string{
	quiz.ErrNoQuizName:             "error_no_quiz_name",
	quiz.ErrNoQuestions:            "error_no_questions",
	quiz.ErrNoQuestionText:         "error_no_question_text",
	quiz.ErrNotEnoughAnswers:       "error_not_enough_answers",
	quiz.ErrMultipleCorrectAnswers: "error_question_too_many_answers",
	quiz.ErrNoCorrectAnswer:        "error_question_no_answers",
	quiz.ErrNoAnswerText:           "error_no_answer_text",
	quiz.ErrWrongDataShape:         "error_wrong_data",
	quiz.ErrNoUsername:             "error_no_username",
	quiz.ErrNoPassword:             "error_no_password",
	quiz.ErrUsernameTaken:          "error_username_is_taken",
	quiz.ErrIncorrectUsername:      "error_incorrect_username",
	quiz.ErrIncorrectPassword:      "error_incorrect_password",
}

var catalogs = map[string]map[string]string{
	"en": {
		"error_no_questions":              "Quiz should contain at least one question",
		"error_no_quiz_name":              "Quiz name is required",
		"error_no_question_text":          "Question text is required",
		"error_not_enough_answers":        "Question should contain at least 2 options to answer",
		"error_question_too_many_answers": "Question shouldn't contain more than one answer",
		"error_question_no_answers":       "Question should contain at least one answer",
		"error_no_answer_text":            "Answer text is required",
		"error_wrong_data":                "Got wrong data, should be dict of questions",
		"error_no_username":               "Username is required",
		"error_no_password":               "Password is required",
		"error_username_is_taken":         "User is already registered",
		"error_incorrect_username":        "Incorrect username",
		"error_incorrect_password":        "Incorrect password",
		"error_no_answer_id":              "Answer with id=%s does not exist",
		"error_no_question_id":            "Question with id=%s does not exist",
	},
	"ru": {
		"error_no_questions":              "Опросник должен содержать как минимум один вопрос",
		"error_no_quiz_name":              "Необходимо ввести название опросника",
		"error_no_question_text":          "Текст вопроса не может быть пуст",
		"error_not_enough_answers":        "Вопрос должен иметь как минимум 2 варианта ответа",
		"error_question_too_many_answers": "Вопрос не может иметь несколько вариантов ответов",
		"error_question_no_answers":       "Вопрос должен иметь выбранный ответ",
		"error_no_answer_text":            "Ответ не может быть пустым",
		"error_wrong_data":                "Получен неверный формат данных, должен быть словарь вопросов",
		"error_no_username":               "Имя не может быть пустым",
		"error_no_password":               "Пароль не может быть пустым",
		"error_username_is_taken":         "Пользователь уже зарегистрирован",
		"error_incorrect_username":        "Неверное имя пользователя",
		"error_incorrect_password":        "Неверный пароль",
		"error_no_answer_id":              "Вариант ответа с id=%s не существует",
		"error_no_question_id":            "Вопроса с id=%s не существует",
	},
}
