package quiz

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	quizzes map[int64]Quiz
	authors map[int64]string // author id -> display name, for summaries
}

// NewInMemoryStore returns a Store backed by process memory. Handler tests use
// it; production wiring uses SQLStore.
func NewInMemoryStore(authors map[int64]string) Store {
	if authors == nil {
		authors = map[int64]string{}
	}
	return &memoryStore{nextID: 1, quizzes: map[int64]Quiz{}, authors: authors}
}

func (m *memoryStore) CreateQuiz(_ context.Context, q Quiz) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(q), nil
}

func (m *memoryStore) create(q Quiz) int64 {
	q.ID = m.nextID
	m.nextID++
	m.assignQuestionIDs(&q)
	m.quizzes[q.ID] = q
	return q.ID
}

func (m *memoryStore) assignQuestionIDs(q *Quiz) {
	for i := range q.Questions {
		q.Questions[i].ID = m.nextID
		m.nextID++
		correct := int64(-1)
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].ID = m.nextID
			if q.Questions[i].Options[j].Correct {
				correct = m.nextID
			}
			m.nextID++
		}
		q.Questions[i].CorrectOptionID = correct
	}
}

func (m *memoryStore) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return copyQuiz(q), nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func (m *memoryStore) ReplaceQuiz(_ context.Context, id int64, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.quizzes[id]
	if !ok {
		return ErrQuizNotFound
	}
	q.ID = id
	q.AuthorID = old.AuthorID
	m.assignQuestionIDs(&q)
	m.quizzes[id] = q
	return nil
}

func (m *memoryStore) ListByAuthor(_ context.Context, authorID int64) ([]QuizSummary, error) {
	return m.listWhere(func(q Quiz) bool { return q.AuthorID == authorID }), nil
}

func (m *memoryStore) ListAll(_ context.Context) ([]QuizSummary, error) {
	return m.listWhere(func(Quiz) bool { return true }), nil
}

func (m *memoryStore) listWhere(keep func(Quiz) bool) []QuizSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []QuizSummary{}
	for _, q := range m.quizzes {
		if keep(q) {
			out = append(out, QuizSummary{
				ID:         q.ID,
				Name:       q.Name,
				AuthorID:   q.AuthorID,
				AuthorName: m.authors[q.AuthorID],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func copyQuiz(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		cp := question
		cp.Options = append([]Option(nil), question.Options...)
		out.Questions[i] = cp
	}
	return out
}
