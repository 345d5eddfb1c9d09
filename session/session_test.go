package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbolis/quick-quiz/gate"
	"github.com/mbolis/quick-quiz/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// tickers hands out fake tickers and remembers them in creation order.
type tickers struct {
	mu  sync.Mutex
	all []*fakeTicker
}

func (f *tickers) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	f.all = append(f.all, t)
	return t
}

func (f *tickers) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all[len(f.all)-1]
}

func (f *tickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.all)
}

type fakeRecorder struct {
	mu        sync.Mutex
	err       error
	quizIDs   []string
	responses []model.Response
}

func (r *fakeRecorder) AppendResponse(_ context.Context, quizID string, resp model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizIDs = append(r.quizIDs, quizID)
	r.responses = append(r.responses, resp)
	return r.err
}

func timedQuiz() model.Quiz {
	first := model.NewVideo()
	first.Config.ButtonTimer = 2
	second := model.NewLongText()

	quiz := model.NewQuiz()
	quiz.Questions = []model.Question{first, second}
	return quiz
}

func newSession(t *testing.T, quiz model.Quiz, opts Options) *Session {
	t.Helper()
	s, err := New(quiz, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewEmptyQuiz(t *testing.T) {
	_, err := New(model.NewQuiz(), Options{})
	assert.ErrorIs(t, err, model.ErrEmptyQuiz)
}

func TestGate(t *testing.T) {
	ft := &tickers{}
	s := newSession(t, timedQuiz(), Options{NewTicker: ft.New})
	ctx := context.Background()

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, gate.Gate{RemainingMs: 2000}, snap.Gate)
	require.Equal(t, 1, ft.count())

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.State.Index)

	ft.last().c <- time.Now()
	snap, _ = s.Snapshot()
	assert.Equal(t, gate.Gate{RemainingMs: 1000}, snap.Gate)

	ft.last().c <- time.Now()
	snap, _ = s.Snapshot()
	assert.True(t, snap.Gate.Active)
	assert.True(t, ft.last().stopped.Load())

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Index)
	assert.True(t, snap.Gate.Active)
	assert.Equal(t, 1, ft.count())

	t.Run("restarts on re-entry", func(t *testing.T) {
		snap, err := s.Previous()
		require.NoError(t, err)
		assert.Equal(t, 0, snap.State.Index)
		assert.Equal(t, gate.Gate{RemainingMs: 2000}, snap.Gate)
		assert.Equal(t, 2, ft.count())
	})

	t.Run("leaving stops the ticker", func(t *testing.T) {
		running := ft.last()
		snap, err := s.Restart()
		require.NoError(t, err)
		assert.True(t, running.stopped.Load())
		assert.Equal(t, gate.Gate{RemainingMs: 2000}, snap.Gate)
		assert.Equal(t, 3, ft.count())
	})
}

func TestAnswersAndCompletion(t *testing.T) {
	choice := model.NewMultipleChoice()
	choice.Config.Required = true
	choice.Config.MultiSelect = true
	details := model.NewText()
	quiz := model.NewQuiz()
	quiz.ID = "quiz-1"
	quiz.Questions = []model.Question{choice, details}

	rec := &fakeRecorder{}
	s := newSession(t, quiz, Options{QuizID: quiz.ID, Recorder: rec})
	ctx := context.Background()

	snap, err := s.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.State.Error)
	assert.Equal(t, 0, snap.State.Index)

	_, err = s.ToggleOption(choice.ID, "1")
	require.NoError(t, err)
	snap, err = s.ToggleOption(choice.ID, "3")
	require.NoError(t, err)
	assert.Equal(t, model.Multi("1", "3"), snap.Answers[0].Value)

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Index)
	assert.Nil(t, snap.State.Error)
	require.NotNil(t, snap.Question)
	assert.Equal(t, details.ID, snap.Question.ID)

	_, err = s.SetField(details.ID, "1", "Ann")
	require.NoError(t, err)

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.Completed)
	assert.Nil(t, snap.Question)
	require.NotNil(t, snap.Response)

	rec.mu.Lock()
	require.Len(t, rec.responses, 1)
	assert.Equal(t, []string{"quiz-1"}, rec.quizIDs)
	assert.Equal(t, snap.Response.ID, rec.responses[0].ID)
	assert.Equal(t, model.FieldMap(map[string]string{"1": "Ann"}), rec.responses[0].Answers[1].Value)
	rec.mu.Unlock()

	t.Run("edits after completion are ignored", func(t *testing.T) {
		snap, err := s.ToggleOption(choice.ID, "2")
		require.NoError(t, err)
		assert.Equal(t, model.Multi("1", "3"), snap.Answers[0].Value)
	})

	t.Run("restart clears answers", func(t *testing.T) {
		snap, err := s.Restart()
		require.NoError(t, err)
		assert.Equal(t, 0, snap.State.Index)
		assert.False(t, snap.State.Completed)
		assert.Nil(t, snap.Response)
		assert.Equal(t, model.Multi(), snap.Answers[0].Value)
		assert.Equal(t, model.Empty(), snap.Answers[1].Value)
	})
}

func TestRequiredOptionalRequired(t *testing.T) {
	choice := model.NewMultipleChoice()
	choice.Config.Required = true
	story := model.NewLongText()
	story.Config.Required = true
	quiz := model.NewQuiz()
	quiz.ID = "quiz-2"
	quiz.Questions = []model.Question{choice, model.NewText(), story}

	rec := &fakeRecorder{}
	s := newSession(t, quiz, Options{QuizID: quiz.ID, Recorder: rec})
	ctx := context.Background()

	snap, err := s.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.State.Error)
	assert.Equal(t, 0, snap.State.Index)

	_, err = s.ToggleOption(choice.ID, "2")
	require.NoError(t, err)
	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Index)

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Index)

	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Index)
	require.NotNil(t, snap.State.Error)

	_, err = s.SetAnswer(story.ID, model.Single("ok"))
	require.NoError(t, err)
	snap, err = s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.Completed)
	require.NotNil(t, snap.Response)
	assert.Len(t, snap.Response.Answers, 3)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.responses, 1)
	assert.Len(t, rec.responses[0].Answers, 3)
}

func TestRecorderFailure(t *testing.T) {
	quiz := model.NewQuiz()
	quiz.Questions = []model.Question{model.NewFinalScreen()}
	rec := &fakeRecorder{err: errors.New("disk full")}
	s := newSession(t, quiz, Options{QuizID: "q", Recorder: rec})

	snap, err := s.Next(context.Background())
	assert.EqualError(t, err, "disk full")
	assert.True(t, snap.State.Completed)
}

func TestPreviewIsNotRecorded(t *testing.T) {
	quiz := model.NewQuiz()
	quiz.Questions = []model.Question{model.NewFinalScreen()}
	rec := &fakeRecorder{}
	s := newSession(t, quiz, Options{Recorder: rec})

	snap, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.State.Completed)
	assert.Empty(t, rec.responses)
}

func TestUnknownQuestion(t *testing.T) {
	s := newSession(t, timedQuiz(), Options{NewTicker: (&tickers{}).New})

	_, err := s.SetAnswer("missing", model.Single("x"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUndeclaredOptionAndField(t *testing.T) {
	choice := model.NewMultipleChoice()
	details := model.NewText()
	quiz := model.NewQuiz()
	quiz.Questions = []model.Question{choice, details}
	s := newSession(t, quiz, Options{})

	_, err := s.ToggleOption(choice.ID, "99")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.SetField(details.ID, "nickname", "Ann")
	assert.ErrorIs(t, err, model.ErrNotFound)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, model.Multi(), snap.Answers[0].Value)
	assert.Equal(t, model.Empty(), snap.Answers[1].Value)
}

func TestImageElements(t *testing.T) {
	image := model.NewImage()
	image.Config.ShowInput = false
	image.ImageElements = []model.ImageElement{model.ElementTitle, model.ElementInput, model.ElementImage, model.ElementCTA}
	quiz := model.NewQuiz()
	quiz.Questions = []model.Question{image, model.NewFinalScreen()}
	s := newSession(t, quiz, Options{})

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []model.ImageElement{model.ElementTitle, model.ElementImage, model.ElementCTA}, snap.Elements)

	snap, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Index)
	assert.Nil(t, snap.Elements)
}

func TestClosed(t *testing.T) {
	ft := &tickers{}
	s, err := New(timedQuiz(), Options{NewTicker: ft.New})
	require.NoError(t, err)

	s.Close()
	s.Close()

	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Eventually(t, ft.last().stopped.Load, time.Second, 10*time.Millisecond)
}
