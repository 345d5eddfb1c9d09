package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-quiz/app"
	"github.com/mbolis/quick-quiz/httpx"
	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
)

type newQuestionRequest struct {
	ComponentType model.ComponentType `json:"componentType" validate:"required"`
}

type newOptionRequest struct {
	Text string `json:"text" validate:"max=500"`
}

type newInputRequest struct {
	Type model.InputType `json:"type" validate:"required,oneof=text email number tel date"`
}

type moveRequest struct {
	To int `json:"to" validate:"min=0"`
}

// editQuiz saves fn's edit of the quiz named in the URL and answers with the result.
func editQuiz(app app.App, w http.ResponseWriter, r *http.Request, code string, status int, fn func(model.Quiz) (model.Quiz, error)) {
	quiz, err := app.EditQuiz(r.Context(), chi.URLParam(r, "id"), fn)
	if err != nil {
		httpx.LogError(w, code, err)
		return
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	render.JSON(w, r, quiz)
}

// onQuestion lifts an edit of one question to an edit of its quiz.
func onQuestion(id string, fn func(model.Question) (model.Question, error)) func(model.Quiz) (model.Quiz, error) {
	return func(quiz model.Quiz) (model.Quiz, error) {
		question, _, ok := quiz.QuestionByID(id)
		if !ok {
			return quiz, fmt.Errorf("question %s: %w", id, model.ErrNotFound)
		}
		question, err := fn(question)
		if err != nil {
			return quiz, err
		}
		return model.ReplaceQuestion(quiz, question)
	}
}

func position[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := newQuestionRequest{}
		if !decodeBody(w, r, &req) {
			return
		}
		if !req.ComponentType.Valid() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "unknown component type %q", req.ComponentType)
			return
		}

		question := model.NewQuestion(req.ComponentType)
		editQuiz(app, w, r, "store.add_question", http.StatusCreated, func(quiz model.Quiz) (model.Quiz, error) {
			return model.AddQuestion(quiz, question), nil
		})
	}
}

// UpdateQuestion merges a partial question into the stored one. Config fields
// left out of the patch keep their values; a new componentType keeps the
// collections of the old one.
func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patch := model.QuestionPatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if patch.Config != nil {
			if err = validate.Struct(*patch.Config); err != nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
				return
			}
		}
		if patch.ComponentType != nil && !patch.ComponentType.Valid() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "unknown component type %q", *patch.ComponentType)
			return
		}

		editQuiz(app, w, r, "store.update_question", http.StatusOK, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			return model.Update(q, patch), nil
		}))
	}
}

func RemoveQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid := chi.URLParam(r, "qid")
		editQuiz(app, w, r, "store.remove_question", http.StatusOK, func(quiz model.Quiz) (model.Quiz, error) {
			if _, _, ok := quiz.QuestionByID(qid); !ok {
				return quiz, fmt.Errorf("question %s: %w", qid, model.ErrNotFound)
			}
			return model.RemoveQuestion(quiz, qid), nil
		})
	}
}

func MoveQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := moveRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		qid := chi.URLParam(r, "qid")
		editQuiz(app, w, r, "store.move_question", http.StatusOK, func(quiz model.Quiz) (model.Quiz, error) {
			_, from, ok := quiz.QuestionByID(qid)
			if !ok {
				return quiz, fmt.Errorf("question %s: %w", qid, model.ErrNotFound)
			}
			return model.MoveQuestion(quiz, from, req.To)
		})
	}
}

func AddOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := newOptionRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		editQuiz(app, w, r, "store.add_option", http.StatusCreated, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			return model.AddOption(q, req.Text), nil
		}))
	}
}

func RemoveOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oid := chi.URLParam(r, "oid")
		editQuiz(app, w, r, "store.remove_option", http.StatusOK, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			if position(q.Options, func(o model.Option) bool { return o.ID == oid }) < 0 {
				return q, fmt.Errorf("option %s: %w", oid, model.ErrNotFound)
			}
			return model.RemoveOption(q, oid), nil
		}))
	}
}

func MoveOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := moveRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		oid := chi.URLParam(r, "oid")
		editQuiz(app, w, r, "store.move_option", http.StatusOK, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			from := position(q.Options, func(o model.Option) bool { return o.ID == oid })
			if from < 0 {
				return q, fmt.Errorf("option %s: %w", oid, model.ErrNotFound)
			}
			options, err := model.Reorder(q.Options, from, req.To)
			if err != nil {
				return q, err
			}
			q.Options = options
			return q, nil
		}))
	}
}

func AddInput(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := newInputRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		editQuiz(app, w, r, "store.add_input", http.StatusCreated, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			return model.AddInput(q, req.Type), nil
		}))
	}
}

func RemoveInput(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid := chi.URLParam(r, "iid")
		editQuiz(app, w, r, "store.remove_input", http.StatusOK, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			if position(q.Inputs, func(in model.Input) bool { return in.ID == iid }) < 0 {
				return q, fmt.Errorf("input %s: %w", iid, model.ErrNotFound)
			}
			return model.RemoveInput(q, iid), nil
		}))
	}
}

// MoveImageElement changes the render order of an image question.
func MoveImageElement(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := moveRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		element := model.ImageElement(chi.URLParam(r, "element"))
		editQuiz(app, w, r, "store.move_element", http.StatusOK, onQuestion(chi.URLParam(r, "qid"), func(q model.Question) (model.Question, error) {
			from := position(q.ImageElements, func(el model.ImageElement) bool { return el == element })
			if from < 0 {
				return q, fmt.Errorf("image element %s: %w", element, model.ErrNotFound)
			}
			elements, err := model.Reorder(q.ImageElements, from, req.To)
			if err != nil {
				return q, err
			}
			q.ImageElements = elements
			return q, nil
		}))
	}
}
