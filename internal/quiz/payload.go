package quiz

import (
	"encoding/json"
	"io"
)

// ParseQuizPayload decodes the author submission shape
//
//	{ "quiz name": { "question text": { "option text": isCorrect, ... }, ... } }
//
// into an unpersisted Quiz owned by authorID. Question and option order follows
// the document order of the payload, which encoding/json's map decoding would
// lose; the token walk below keeps it. Any shape that is not a mapping of
// mappings of mappings to booleans yields ErrWrongDataShape.
func ParseQuizPayload(r io.Reader, authorID int64) (Quiz, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return Quiz{}, err
	}
	q := Quiz{ID: -1, AuthorID: authorID}
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return Quiz{}, err
		}
		q.Name = name
		questions, err := parseQuestions(dec)
		if err != nil {
			return Quiz{}, err
		}
		q.Questions = append(q.Questions, questions...)
	}
	if _, err := dec.Token(); err != nil { // closing }
		return Quiz{}, ErrWrongDataShape
	}
	return q, nil
}

func parseQuestions(dec *json.Decoder) ([]Question, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var questions []Question
	for dec.More() {
		text, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		options, err := parseOptions(dec)
		if err != nil {
			return nil, err
		}
		questions = append(questions, NewQuestion(text, options))
	}
	if _, err := dec.Token(); err != nil {
		return nil, ErrWrongDataShape
	}
	return questions, nil
}

func parseOptions(dec *json.Decoder) ([]Option, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var options []Option
	for dec.More() {
		text, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, ErrWrongDataShape
		}
		correct, ok := tok.(bool)
		if !ok {
			return nil, ErrWrongDataShape
		}
		options = append(options, Option{ID: -1, Text: text, Correct: correct})
	}
	if _, err := dec.Token(); err != nil {
		return nil, ErrWrongDataShape
	}
	return options, nil
}

func expectDelim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return ErrWrongDataShape
	}
	if d, ok := tok.(json.Delim); !ok || d != json.Delim(want) {
		return ErrWrongDataShape
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", ErrWrongDataShape
	}
	s, ok := tok.(string)
	if !ok {
		return "", ErrWrongDataShape
	}
	return s, nil
}
