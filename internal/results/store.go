// Package results is the persistence collaborator for finished quiz
// attempts: one append-only record per attempt, keyed by quiz.
package results

import (
	"context"
	"sort"
	"sync"
)

// Record is the contract emitted by a finished session.
// ScorePercent is an integer in [0,100].
type Record struct {
	ID               string `json:"id"`
	QuizID           string `json:"quiz_id"`
	Title            string `json:"title"`
	ScorePercent     int    `json:"score"`
	TotalQuestions   int    `json:"total_questions"`
	CorrectAnswers   int    `json:"correct_answers"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
	CreatedAt        int64  `json:"created_at"`
}

// Sink is the minimal surface a session needs to report a result.
type Sink interface {
	Save(ctx context.Context, r Record) error
}

// Store adds history reads on top of Sink.
type Store interface {
	Sink
	ListByQuiz(ctx context.Context, quizID string) ([]Record, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore returns an in-memory Store for tests and dev hosts.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memoryStore) ListByQuiz(_ context.Context, quizID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.records {
		if r.QuizID == quizID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}
