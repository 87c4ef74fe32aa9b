package session_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/roadprep/signquiz/internal/quiz"
	"github.com/roadprep/signquiz/internal/results"
	"github.com/roadprep/signquiz/internal/session"
	"github.com/roadprep/signquiz/internal/shuffle"
)

type captureSink struct {
	records []results.Record
}

func (c *captureSink) Save(_ context.Context, r results.Record) error {
	c.records = append(c.records, r)
	return nil
}

type failingSink struct{}

func (failingSink) Save(context.Context, results.Record) error {
	return errors.New("store down")
}

// stepClock returns start, then start+step on every later call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}

func makeQuestions(n int) []quiz.Question {
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Text:          fmt.Sprintf("question %d", i+1),
			CorrectAnswer: "A",
			Options: []quiz.Option{
				{ID: "A", Text: "right", IsCorrect: true},
				{ID: "B", Text: "wrong 1"},
				{ID: "C", Text: "wrong 2"},
				{ID: "D", Text: "wrong 3"},
			},
		}
	}
	return qs
}

func wrongOption(q quiz.Question) string {
	for _, o := range q.Options {
		if o.ID != q.CorrectAnswer {
			return o.ID
		}
	}
	return ""
}

func TestEndToEndAttempt(t *testing.T) {
	sink := &captureSink{}
	s := session.New("mock-sindh", "Sindh Mock Test",
		session.WithSource(shuffle.New(1)),
		session.WithClock(stepClock(time.Unix(1_700_000_000, 0), 90*time.Second)),
		session.WithSink(sink),
	)
	if err := s.Start(makeQuestions(3)); err != nil {
		t.Fatal(err)
	}

	// q1 wrong
	cur, _ := s.Current()
	if err := s.SelectAnswer(wrongOption(cur)); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	// q2 and q3 correct
	for i := 0; i < 2; i++ {
		cur, _ = s.Current()
		if err := s.SelectAnswer(cur.CorrectAnswer); err != nil {
			t.Fatal(err)
		}
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
	}

	if s.State() != session.StateFinished {
		t.Fatalf("state = %s, want finished", s.State())
	}
	res, ok := s.Result()
	if !ok {
		t.Fatal("Result() not available after finish")
	}
	if res.CorrectAnswers != 2 || res.TotalQuestions != 3 {
		t.Errorf("score = %d/%d, want 2/3", res.CorrectAnswers, res.TotalQuestions)
	}
	if res.ScorePercent != 67 {
		t.Errorf("scorePercent = %d, want 67", res.ScorePercent)
	}
	if len(res.Review) != 1 {
		t.Errorf("review entries = %d, want 1", len(res.Review))
	}
	if res.TimeSpentSeconds != 90 {
		t.Errorf("timeSpent = %d, want 90", res.TimeSpentSeconds)
	}
	if res.FinishedEarly {
		t.Error("finishedEarly set on a full run")
	}

	if len(sink.records) != 1 {
		t.Fatalf("sink received %d records", len(sink.records))
	}
	rec := sink.records[0]
	if rec.QuizID != "mock-sindh" || rec.ScorePercent != 67 || rec.CorrectAnswers != 2 || rec.TotalQuestions != 3 {
		t.Errorf("persisted record = %+v", rec)
	}
}

func TestReviewEntryShape(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(5)))
	if err := s.Start(makeQuestions(1)); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.Current()
	chosen := wrongOption(cur)
	_ = s.SelectAnswer(chosen)
	entries := s.Review()
	if len(entries) != 1 {
		t.Fatalf("review = %d entries", len(entries))
	}
	e := entries[0]
	if e.QuestionID != cur.ID || e.ChosenOptionID != chosen || e.CorrectOptionID != cur.CorrectAnswer {
		t.Errorf("entry = %+v", e)
	}
}

func TestFirstAnswerIsFinal(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(2)))
	if err := s.Start(makeQuestions(2)); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.Current()
	if err := s.SelectAnswer(cur.CorrectAnswer); err != nil {
		t.Fatal(err)
	}
	// re-selecting a wrong option is a no-op
	if err := s.SelectAnswer(wrongOption(cur)); err != nil {
		t.Fatal(err)
	}
	if s.Score() != 1 {
		t.Errorf("score = %d after re-select, want 1", s.Score())
	}
	if len(s.Review()) != 0 {
		t.Errorf("re-select produced a review entry")
	}
	// the recorded selection is the first pick, not the re-select
	if sel, ok := s.Selection(cur.ID); !ok || sel != cur.CorrectAnswer {
		t.Errorf("selection = %q, %v; want %q recorded", sel, ok, cur.CorrectAnswer)
	}
	if _, ok := s.Selection("no-such-question"); ok {
		t.Errorf("unknown question reported a selection")
	}
}

func TestFinishEarly(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(9)))
	if err := s.Start(makeQuestions(5)); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.Current()
	_ = s.SelectAnswer(wrongOption(cur))

	if err := s.FinishEarly(false); !errors.Is(err, session.ErrConfirmRequired) {
		t.Fatalf("unconfirmed finishEarly: err = %v", err)
	}
	if s.State() != session.StateInProgress {
		t.Fatal("unconfirmed finishEarly changed state")
	}

	if err := s.FinishEarly(true); err != nil {
		t.Fatal(err)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatal("no result after finishEarly")
	}
	if res.TotalQuestions != 5 {
		t.Errorf("totalQuestions = %d, want 5", res.TotalQuestions)
	}
	if res.CorrectAnswers != 0 || len(res.Review) != 1 {
		t.Errorf("score/review reflect unanswered questions: %+v", res)
	}
	if !res.FinishedEarly {
		t.Error("finishedEarly not set")
	}
}

func TestIllegalTransitions(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(4)))

	var ill *session.IllegalTransitionError
	if err := s.SelectAnswer("A"); !errors.As(err, &ill) {
		t.Errorf("selectAnswer before start: %v", err)
	}
	if err := s.Advance(); !errors.As(err, &ill) {
		t.Errorf("advance before start: %v", err)
	}
	if err := s.FinishEarly(true); !errors.As(err, &ill) {
		t.Errorf("finishEarly before start: %v", err)
	}

	if err := s.Start(makeQuestions(2)); err != nil {
		t.Fatal(err)
	}
	// advancing an unanswered question is outside the precondition
	if err := s.Advance(); !errors.As(err, &ill) {
		t.Errorf("advance unanswered: %v", err)
	}
	if cur, ok := s.Current(); !ok || cur.ID == "" {
		t.Error("failed advance mutated the cursor")
	}
	if s.Score() != 0 || len(s.Review()) != 0 {
		t.Error("failed operation left partial mutation")
	}
}

func TestResetAndRetryReshuffles(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(6)))
	qs := makeQuestions(30)
	if err := s.Start(qs); err != nil {
		t.Fatal(err)
	}
	firstAttempt := s.AttemptID()

	s.Reset()
	if s.State() != session.StateNotStarted {
		t.Fatalf("state after reset = %s", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Fatal("current question available after reset")
	}

	if err := s.Start(qs); err != nil {
		t.Fatal(err)
	}
	if s.AttemptID() == firstAttempt {
		t.Error("retry reused the attempt id")
	}
	if s.Score() != 0 || len(s.Review()) != 0 || s.Answered() {
		t.Error("retry carried state over from the previous attempt")
	}
}

func TestSinkFailureDoesNotUnfinish(t *testing.T) {
	s := session.New("q", "Quiz",
		session.WithSource(shuffle.New(8)),
		session.WithSink(failingSink{}),
	)
	if err := s.Start(makeQuestions(1)); err != nil {
		t.Fatal(err)
	}
	cur, _ := s.Current()
	_ = s.SelectAnswer(cur.CorrectAnswer)
	if err := s.Advance(); err == nil {
		t.Fatal("sink failure not surfaced")
	}
	if s.State() != session.StateFinished {
		t.Fatalf("state = %s, want finished despite sink failure", s.State())
	}
}

func TestProgressPercent(t *testing.T) {
	s := session.New("q", "Quiz", session.WithSource(shuffle.New(3)))
	if err := s.Start(makeQuestions(4)); err != nil {
		t.Fatal(err)
	}
	if got := s.Progress(); got != 25 {
		t.Errorf("progress at q1 = %v, want 25", got)
	}
	cur, _ := s.Current()
	_ = s.SelectAnswer(cur.CorrectAnswer)
	_ = s.Advance()
	if got := s.Progress(); got != 50 {
		t.Errorf("progress at q2 = %v, want 50", got)
	}
}
