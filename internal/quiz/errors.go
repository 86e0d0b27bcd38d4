package quiz

import (
	"errors"
	"fmt"
)

// Validation errors are collected into lists and returned as data; only
// ErrForbidden and ErrQuizNotFound interrupt control flow. The boundary maps
// every kind to a localized message, the core never formats user-facing text.
var (
	ErrNoQuizName             = errors.New("quiz name is required")
	ErrNoQuestions            = errors.New("quiz must contain at least one question")
	ErrNoQuestionText         = errors.New("question text is required")
	ErrNotEnoughAnswers       = errors.New("question must have at least two options")
	ErrMultipleCorrectAnswers = errors.New("question has more than one correct option")
	ErrNoCorrectAnswer        = errors.New("question has no correct option")
	ErrNoAnswerText           = errors.New("option text is required")

	ErrWrongDataShape = errors.New("payload must be a map of questions to options")
	ErrForbidden      = errors.New("forbidden")
	ErrQuizNotFound   = errors.New("quiz not found")

	ErrNoUsername        = errors.New("username is required")
	ErrNoPassword        = errors.New("password is required")
	ErrUsernameTaken     = errors.New("username is already registered")
	ErrIncorrectUsername = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// UnknownQuestionError reports a submitted question id with no matching row.
// ID is kept as submitted: non-numeric garbage is reported, not parsed around.
type UnknownQuestionError struct {
	ID string
}

func (e UnknownQuestionError) Error() string {
	return fmt.Sprintf("question with id=%s does not exist", e.ID)
}

// UnknownOptionError reports a submitted option id with no matching row.
type UnknownOptionError struct {
	ID string
}

func (e UnknownOptionError) Error() string {
	return fmt.Sprintf("answer with id=%s does not exist", e.ID)
}
