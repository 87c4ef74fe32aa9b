package results

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists records in the quiz_results table. Works against
// both supported drivers; the placeholders below are understood by pgx
// and by modernc sqlite alike.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO quiz_results
		(id,quiz_id,title,score,total_questions,correct_answers,time_spent_seconds,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.QuizID, r.Title, r.ScorePercent, r.TotalQuestions, r.CorrectAnswers, r.TimeSpentSeconds, r.CreatedAt)
	return err
}

func (s *SQLStore) ListByQuiz(ctx context.Context, quizID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,title,score,total_questions,correct_answers,time_spent_seconds,created_at
		FROM quiz_results WHERE quiz_id=$1 ORDER BY created_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.QuizID, &r.Title, &r.ScorePercent, &r.TotalQuestions, &r.CorrectAnswers, &r.TimeSpentSeconds, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
