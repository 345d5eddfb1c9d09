// Package session runs one traversal of a quiz. Each Session owns a goroutine
// that serializes answer edits, navigation and gate ticks, so a Next always
// sees the answers recorded before it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mbolis/quick-quiz/answers"
	"github.com/mbolis/quick-quiz/gate"
	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
	"github.com/mbolis/quick-quiz/navigation"
)

var ErrClosed = errors.New("session closed")

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Recorder receives finished responses of sessions bound to a saved quiz.
type Recorder interface {
	AppendResponse(ctx context.Context, quizID string, r model.Response) error
}

type Options struct {
	// QuizID binds the session to a saved quiz; empty means an ephemeral preview
	// whose responses are dropped.
	QuizID    string
	Recorder  Recorder
	NewTicker func(time.Duration) Ticker
	Now       func() time.Time
}

type Snapshot struct {
	QuizID   string               `json:"quizId"`
	Total    int                  `json:"total"`
	State    navigation.State     `json:"state"`
	Gate     gate.Gate            `json:"gate"`
	Question *model.Question      `json:"question"`
	Elements []model.ImageElement `json:"elements,omitempty"` // image questions only, in render order
	Answers  []model.Answer       `json:"answers"`
	Response *model.Response      `json:"response"`
}

type Session struct {
	quiz   model.Quiz
	opts   Options
	events chan func()
	done   chan struct{}
	once   sync.Once

	// owned by the loop goroutine
	answers  []model.Answer
	nav      navigation.State
	gate     gate.Gate
	ticker   Ticker
	tickC    <-chan time.Time
	response *model.Response
}

// New starts a session on the first question of quiz. It fails with
// model.ErrEmptyQuiz when there is nothing to show.
func New(quiz model.Quiz, opts Options) (*Session, error) {
	nav, err := navigation.Start(quiz)
	if err != nil {
		return nil, err
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		quiz:    quiz.Clone(),
		opts:    opts,
		events:  make(chan func()),
		done:    make(chan struct{}),
		answers: answers.Init(quiz.Questions),
		nav:     nav,
	}
	s.enter()

	go s.loop()
	return s, nil
}

func (s *Session) loop() {
	defer s.stopTicker()
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.tickC:
			s.tick()
		case <-s.done:
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Session) do(fn func()) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	ran := make(chan struct{})
	select {
	case s.events <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrClosed
	}
	<-ran
	return nil
}

// enter re-arms the gate for the current question, dropping any previous ticker.
func (s *Session) enter() {
	s.stopTicker()
	if s.nav.Completed {
		s.gate = gate.Gate{Active: true}
		return
	}

	q := s.quiz.Questions[s.nav.Index]
	s.gate = gate.Enter(q.Config.ButtonTimer)
	if s.gate.Running() {
		s.ticker = s.opts.NewTicker(gate.TickInterval)
		s.tickC = s.ticker.C()
	}
}

func (s *Session) tick() {
	s.gate = gate.Tick(s.gate, gate.TickInterval)
	if !s.gate.Running() {
		s.stopTicker()
	}
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.ticker = nil
	s.tickC = nil
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		QuizID:   s.opts.QuizID,
		Total:    len(s.quiz.Questions),
		State:    s.nav,
		Gate:     s.gate,
		Answers:  append([]model.Answer(nil), s.answers...),
		Response: s.response,
	}
	if !s.nav.Completed {
		q := s.quiz.Questions[s.nav.Index]
		snap.Question = &q
		if q.ComponentType == model.Image {
			snap.Elements = model.VisibleElements(q)
		}
	}
	return snap
}

func (s *Session) Quiz() model.Quiz {
	return s.quiz
}

func (s *Session) Snapshot() (snap Snapshot, err error) {
	err = s.do(func() { snap = s.snapshot() })
	return
}

// edit applies fn to the answers of a known question while the session is running.
func (s *Session) edit(questionID string, fn func(q model.Question)) (snap Snapshot, err error) {
	if _, _, ok := s.quiz.QuestionByID(questionID); !ok {
		return snap, fmt.Errorf("question %s: %w", questionID, model.ErrNotFound)
	}
	err = s.do(func() {
		if !s.nav.Completed {
			q, _, _ := s.quiz.QuestionByID(questionID)
			fn(q)
		}
		snap = s.snapshot()
	})
	return
}

func (s *Session) SetAnswer(questionID string, value model.Value) (Snapshot, error) {
	return s.edit(questionID, func(model.Question) {
		s.answers = answers.Set(s.answers, questionID, value)
	})
}

// ToggleOption fails with model.ErrNotFound for an option the question does not declare.
func (s *Session) ToggleOption(questionID, optionID string) (Snapshot, error) {
	if q, _, ok := s.quiz.QuestionByID(questionID); ok && !hasOption(q, optionID) {
		return Snapshot{}, fmt.Errorf("question %s option %s: %w", questionID, optionID, model.ErrNotFound)
	}
	return s.edit(questionID, func(q model.Question) {
		s.answers = answers.ToggleOption(s.answers, questionID, optionID, q.Config.MultiSelect)
	})
}

// SetField fails with model.ErrNotFound for a field the question does not declare.
func (s *Session) SetField(questionID, fieldID, value string) (Snapshot, error) {
	if q, _, ok := s.quiz.QuestionByID(questionID); ok && !hasInput(q, fieldID) {
		return Snapshot{}, fmt.Errorf("question %s field %s: %w", questionID, fieldID, model.ErrNotFound)
	}
	return s.edit(questionID, func(model.Question) {
		s.answers = answers.MergeField(s.answers, questionID, fieldID, value)
	})
}

func hasOption(q model.Question, id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func hasInput(q model.Question, id string) bool {
	for _, in := range q.Inputs {
		if in.ID == id {
			return true
		}
	}
	return false
}

// Next advances when the current answer validates. Completing a session bound
// to a quiz hands the response to the recorder; a recorder failure is returned
// but the session stays completed.
func (s *Session) Next(ctx context.Context) (snap Snapshot, err error) {
	doErr := s.do(func() {
		before := s.nav.Index
		var resp *model.Response
		s.nav, resp = navigation.Next(s.nav, s.quiz, s.answers, s.gate, s.opts.Now())
		if resp != nil {
			s.response = resp
			err = s.record(ctx, *resp)
		}
		if s.nav.Completed || s.nav.Index != before {
			s.enter()
		}
		snap = s.snapshot()
	})
	if doErr != nil {
		return snap, doErr
	}
	return snap, err
}

func (s *Session) record(ctx context.Context, resp model.Response) error {
	if s.opts.QuizID == "" || s.opts.Recorder == nil {
		log.Debugf("session: response %s not persisted (preview)", resp.ID)
		return nil
	}
	if err := s.opts.Recorder.AppendResponse(ctx, s.opts.QuizID, resp); err != nil {
		log.WithFields(log.Fields{"quiz": s.opts.QuizID, "response": resp.ID}).Errorf("session.record: %s", err)
		return err
	}
	return nil
}

func (s *Session) Previous() (snap Snapshot, err error) {
	err = s.do(func() {
		before := s.nav.Index
		s.nav = navigation.Previous(s.nav)
		if s.nav.Index != before {
			s.enter()
		}
		snap = s.snapshot()
	})
	return
}

// Restart clears every answer and returns to the first question.
func (s *Session) Restart() (snap Snapshot, err error) {
	err = s.do(func() {
		s.nav, _ = navigation.Restart(s.quiz)
		s.answers = answers.Reset(s.quiz.Questions)
		s.response = nil
		s.enter()
		snap = s.snapshot()
	})
	return
}

// Close stops the session's goroutine and its ticker. It is safe to call twice.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}
