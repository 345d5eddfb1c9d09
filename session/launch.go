package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
)

// Source is the quiz a respondent session runs. An empty QuizID marks a
// preview whose completion is not persisted.
type Source struct {
	Quiz   model.Quiz
	QuizID string
}

type Gateway interface {
	ConsumeHandoff(ctx context.Context) (model.Handoff, bool, error)
	CurrentQuizID(ctx context.Context) (string, bool, error)
	GetQuiz(ctx context.Context, id string) (model.Quiz, error)
	RecordView(ctx context.Context, id string) error
}

// Resolve picks what a freshly opened respondent session shows: the staged
// hand-off when it carries questions, else the quiz currently open in the
// editor, else model.ErrEmptyQuiz.
func Resolve(ctx context.Context, gw Gateway) (Source, error) {
	h, ok, err := gw.ConsumeHandoff(ctx)
	if err != nil {
		return Source{}, err
	}
	if ok && len(h.Questions) > 0 {
		return Source{Quiz: h.Quiz(), QuizID: h.QuizID}, nil
	}

	id, ok, err := gw.CurrentQuizID(ctx)
	if err != nil {
		return Source{}, err
	}
	if !ok {
		return Source{}, model.ErrEmptyQuiz
	}

	src, err := ResolveQuiz(ctx, gw, id)
	if errors.Is(err, model.ErrNotFound) {
		log.Debugf("session.resolve: current quiz %s is gone", id)
		return Source{}, model.ErrEmptyQuiz
	}
	return src, err
}

// ResolveQuiz loads a saved quiz by id and counts the visit.
func ResolveQuiz(ctx context.Context, gw Gateway, id string) (Source, error) {
	return resolveQuiz(ctx, gw, id, false)
}

// ResolvePublished is ResolveQuiz for respondents reaching a quiz by id. A
// draft is reported as model.ErrNotFound and its visit is not counted.
func ResolvePublished(ctx context.Context, gw Gateway, id string) (Source, error) {
	return resolveQuiz(ctx, gw, id, true)
}

func resolveQuiz(ctx context.Context, gw Gateway, id string, published bool) (Source, error) {
	quiz, err := gw.GetQuiz(ctx, id)
	if err != nil {
		return Source{}, err
	}
	if published && quiz.Status != model.Published {
		return Source{}, fmt.Errorf("quiz %s is a draft: %w", id, model.ErrNotFound)
	}
	if len(quiz.Questions) == 0 {
		return Source{}, fmt.Errorf("quiz %s: %w", id, model.ErrEmptyQuiz)
	}
	if err := gw.RecordView(ctx, id); err != nil {
		log.Warnf("session.resolve.record_view: %s", err)
	}
	return Source{Quiz: quiz, QuizID: quiz.ID}, nil
}
