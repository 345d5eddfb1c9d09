// Package navigation steps a session through a quiz's ordered questions.
package navigation

import (
	"time"

	"github.com/mbolis/quick-quiz/answers"
	"github.com/mbolis/quick-quiz/gate"
	"github.com/mbolis/quick-quiz/model"
	"github.com/mbolis/quick-quiz/validation"
)

// State is either AtQuestion(Index) or Completed. Error holds the failure
// surfaced by the last rejected Next.
type State struct {
	Index     int                `json:"index"`
	Completed bool               `json:"completed"`
	Error     *validation.Result `json:"error"`
}

// Start puts a session on the first question. A quiz without questions has no
// first question; callers show an empty state instead.
func Start(quiz model.Quiz) (State, error) {
	if len(quiz.Questions) == 0 {
		return State{}, model.ErrEmptyQuiz
	}
	return State{}, nil
}

// Restart is Start for a session that already ran; the caller resets answers.
func Restart(quiz model.Quiz) (State, error) {
	return Start(quiz)
}

// Next validates the current answer and advances. It does nothing while the
// gate is closed or once completed. On the last question it completes and
// returns the finished response.
func Next(s State, quiz model.Quiz, current []model.Answer, g gate.Gate, now time.Time) (State, *model.Response) {
	if s.Completed || !g.Active || s.Index < 0 || s.Index >= len(quiz.Questions) {
		return s, nil
	}

	q := quiz.Questions[s.Index]
	answer, _ := answers.Find(current, q.ID)
	if r := validation.ValidateQuestion(q, answer); !r.OK {
		s.Error = &r
		return s, nil
	}

	s.Error = nil
	if s.Index < len(quiz.Questions)-1 {
		s.Index++
		return s, nil
	}

	s.Completed = true
	return s, &model.Response{
		ID:          model.NewID(),
		Answers:     append([]model.Answer(nil), current...),
		SubmittedAt: now.UTC(),
	}
}

// Previous steps back one question and clears any surfaced error. It is a no-op
// on the first question and after completion.
func Previous(s State) State {
	if s.Completed || s.Index <= 0 {
		return s
	}
	return State{Index: s.Index - 1}
}
