// Package session drives a single randomized quiz attempt: start,
// answer, advance, finish, score, review. A Session is single-owner;
// exactly one logical actor may issue operations at a time. Hosts that
// share one across goroutines must wrap it in their own lock, because
// the operations are non-idempotent.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/roadprep/signquiz/internal/quiz"
	"github.com/roadprep/signquiz/internal/results"
	"github.com/roadprep/signquiz/internal/shuffle"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// ReviewEntry records one incorrectly answered question for post-quiz
// review. Correct answers never appear here.
type ReviewEntry struct {
	QuestionID      string `json:"question_id"`
	ChosenOptionID  string `json:"chosen_option_id"`
	CorrectOptionID string `json:"correct_option_id"`
}

// Result is the summary emitted when an attempt finishes.
type Result struct {
	AttemptID        string        `json:"attempt_id"`
	QuizID           string        `json:"quiz_id"`
	Title            string        `json:"title"`
	ScorePercent     int           `json:"score_percent"`
	CorrectAnswers   int           `json:"correct_answers"`
	TotalQuestions   int           `json:"total_questions"`
	TimeSpentSeconds int           `json:"time_spent_seconds"`
	FinishedEarly    bool          `json:"finished_early"`
	Review           []ReviewEntry `json:"review,omitempty"`
}

// IllegalTransitionError reports an operation called outside its
// precondition. The session state is left untouched.
type IllegalTransitionError struct {
	Op    string
	State State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s in state %s", e.Op, e.State)
}

// ErrConfirmRequired: FinishEarly was called before the last question
// without confirmation. The host confirms with the user and re-calls
// with confirmed=true.
var ErrConfirmRequired = errors.New("finish early requires confirmation")

type Session struct {
	quizID string
	title  string

	src  shuffle.Source
	now  func() time.Time
	sink results.Sink

	state      State
	attemptID  string
	questions  []quiz.Question
	current    int
	selections map[string]string // questionID -> optionID; answered questions only
	score      int
	review     []ReviewEntry
	startedAt  time.Time
	finishedAt time.Time
	early      bool
}

type Option func(*Session)

// WithSource injects the permutation source; tests pass a seeded one.
func WithSource(src shuffle.Source) Option {
	return func(s *Session) { s.src = src }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSink routes the finished-attempt record to a persistence
// collaborator. Without it results are only available via Result().
func WithSink(sink results.Sink) Option {
	return func(s *Session) { s.sink = sink }
}

func New(quizID, title string, opts ...Option) *Session {
	s := &Session{
		quizID: quizID,
		title:  title,
		src:    shuffle.Time(),
		now:    time.Now,
		state:  StateNotStarted,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start begins a fresh attempt over a shuffled copy of the questions.
// Option order is shuffled independently per question. Allowed from any
// state; a retry simply calls Start again and draws a new permutation.
func (s *Session) Start(questions []quiz.Question) error {
	if len(questions) == 0 {
		return errors.New("start: no questions")
	}
	shuffled := shuffle.Slice(s.src, questions)
	for i := range shuffled {
		shuffled[i].Options = shuffle.Slice(s.src, shuffled[i].Options)
	}
	s.state = StateInProgress
	s.attemptID = uuid.NewString()
	s.questions = shuffled
	s.current = 0
	s.selections = make(map[string]string, len(shuffled))
	s.score = 0
	s.review = nil
	s.startedAt = s.now()
	s.finishedAt = time.Time{}
	s.early = false
	return nil
}

// SelectAnswer records the answer for the current question. The first
// answer is final: re-selecting on an answered question is a no-op.
func (s *Session) SelectAnswer(optionID string) error {
	if s.state != StateInProgress {
		return &IllegalTransitionError{Op: "selectAnswer", State: s.state}
	}
	q := s.questions[s.current]
	if _, answered := s.selections[q.ID]; answered {
		return nil
	}
	known := false
	for _, o := range q.Options {
		if o.ID == optionID {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("selectAnswer: unknown option %q for question %s", optionID, q.ID)
	}
	s.selections[q.ID] = optionID
	if optionID == q.CorrectAnswer {
		s.score++
	} else {
		s.review = append(s.review, ReviewEntry{
			QuestionID:      q.ID,
			ChosenOptionID:  optionID,
			CorrectOptionID: q.CorrectAnswer,
		})
	}
	return nil
}

// Advance moves to the next question, or finishes the attempt when the
// current question is the last one. The current question must have been
// answered first.
func (s *Session) Advance() error {
	if s.state != StateInProgress {
		return &IllegalTransitionError{Op: "advance", State: s.state}
	}
	if _, answered := s.selections[s.questions[s.current].ID]; !answered {
		return &IllegalTransitionError{Op: "advance", State: s.state}
	}
	if s.current == len(s.questions)-1 {
		return s.finish(false)
	}
	s.current++
	return nil
}

// FinishEarly ends the attempt before the last question. Unanswered
// questions count neither correct nor incorrect. Unless the attempt is
// already on the last question, confirmed=false returns
// ErrConfirmRequired and changes nothing.
func (s *Session) FinishEarly(confirmed bool) error {
	if s.state != StateInProgress {
		return &IllegalTransitionError{Op: "finishEarly", State: s.state}
	}
	if s.current < len(s.questions)-1 && !confirmed {
		return ErrConfirmRequired
	}
	return s.finish(true)
}

// Reset discards the attempt from any state.
func (s *Session) Reset() {
	s.state = StateNotStarted
	s.attemptID = ""
	s.questions = nil
	s.current = 0
	s.selections = nil
	s.score = 0
	s.review = nil
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.early = false
}

// finish completes the transition, then reports to the sink. The state
// change is already durable when the sink runs; a save failure is
// returned but does not un-finish the attempt.
func (s *Session) finish(early bool) error {
	s.finishedAt = s.now()
	s.early = early
	s.state = StateFinished
	if s.sink == nil {
		return nil
	}
	res := s.result()
	err := s.sink.Save(context.Background(), results.Record{
		ID:               res.AttemptID,
		QuizID:           res.QuizID,
		Title:            res.Title,
		ScorePercent:     res.ScorePercent,
		TotalQuestions:   res.TotalQuestions,
		CorrectAnswers:   res.CorrectAnswers,
		TimeSpentSeconds: res.TimeSpentSeconds,
		CreatedAt:        s.finishedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// State reports the machine state.
func (s *Session) State() State { return s.state }

// AttemptID is stable for the lifetime of one attempt.
func (s *Session) AttemptID() string { return s.attemptID }

// Current returns the question under the cursor.
func (s *Session) Current() (quiz.Question, bool) {
	if s.state != StateInProgress {
		return quiz.Question{}, false
	}
	return s.questions[s.current], true
}

// Answered reports whether the current question has a recorded answer.
func (s *Session) Answered() bool {
	if s.state != StateInProgress {
		return false
	}
	_, ok := s.selections[s.questions[s.current].ID]
	return ok
}

// Selection returns the recorded answer for a question id.
func (s *Session) Selection(questionID string) (string, bool) {
	id, ok := s.selections[questionID]
	return id, ok
}

func (s *Session) Score() int { return s.score }

// Review returns a copy of the wrong-answer entries so far.
func (s *Session) Review() []ReviewEntry {
	return append([]ReviewEntry(nil), s.review...)
}

// Progress is the 0–100 position indicator: (index+1)/total*100.
func (s *Session) Progress() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	return float64(s.current+1) / float64(len(s.questions)) * 100
}

// ScorePercent is round(score/total*100).
func (s *Session) ScorePercent() int {
	if len(s.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(s.score) / float64(len(s.questions)) * 100))
}

// TimeSpent is seconds since Start, frozen at finish time once the
// attempt is over.
func (s *Session) TimeSpent() int {
	if s.startedAt.IsZero() {
		return 0
	}
	end := s.finishedAt
	if end.IsZero() {
		end = s.now()
	}
	return int(end.Sub(s.startedAt) / time.Second)
}

// Result returns the attempt summary; ok is false until Finished.
func (s *Session) Result() (Result, bool) {
	if s.state != StateFinished {
		return Result{}, false
	}
	return s.result(), true
}

func (s *Session) result() Result {
	return Result{
		AttemptID:        s.attemptID,
		QuizID:           s.quizID,
		Title:            s.title,
		ScorePercent:     s.ScorePercent(),
		CorrectAnswers:   s.score,
		TotalQuestions:   len(s.questions),
		TimeSpentSeconds: s.TimeSpent(),
		FinishedEarly:    s.early,
		Review:           append([]ReviewEntry(nil), s.review...),
	}
}
