package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/quick-quiz/app"
	"github.com/mbolis/quick-quiz/httpx"
	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
)

var validate = validator.New()

// decodeBody reads the JSON body into dst, a struct pointer, and runs its
// validate tags.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := render.DecodeJSON(r.Body, dst)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return false
	}
	err = validate.Struct(dst)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
		return false
	}
	return true
}

func decodeQuiz(w http.ResponseWriter, r *http.Request) (quiz model.Quiz, ok bool) {
	ok = decodeBody(w, r, &quiz)
	return
}

func CreateQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, ok := decodeQuiz(w, r)
		if !ok {
			return
		}

		saved, err := app.SaveQuiz(r.Context(), quiz)
		if err != nil {
			httpx.LogError(w, "store.save_quiz", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, saved)
	}
}

func ListQuizzes(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := app.ListQuizzes(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "store.list_quizzes", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"quizzes": quizzes,
		})
	}
}

func GetQuizById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := app.GetQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogError(w, "store.get_quiz", err)
			return
		}

		render.JSON(w, r, quiz)
	}
}

func UpdateQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, ok := decodeQuiz(w, r)
		if !ok {
			return
		}
		quiz.ID = chi.URLParam(r, "id")

		saved, err := app.SaveQuiz(r.Context(), quiz)
		if err != nil {
			httpx.LogError(w, "store.update_quiz", err)
			return
		}

		render.JSON(w, r, saved)
	}
}

func DeleteQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.DeleteQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogInternalError(w, "store.delete_quiz", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DuplicateQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := app.DuplicateQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogError(w, "store.duplicate_quiz", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, quiz)
	}
}

func PublishQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings := model.PublishSettings{}
		if !decodeBody(w, r, &settings) {
			return
		}

		quiz, err := app.Publish(r.Context(), chi.URLParam(r, "id"), settings)
		if err != nil {
			httpx.LogError(w, "store.publish", err)
			return
		}

		render.JSON(w, r, quiz)
	}
}

func UnpublishQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := app.Unpublish(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogError(w, "store.unpublish", err)
			return
		}

		render.JSON(w, r, quiz)
	}
}

func GetQuizResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses, err := app.ListResponses(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogInternalError(w, "store.list_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func GetHistory(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := app.History(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "store.history", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"history": entries,
		})
	}
}

func GetCurrentQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := app.CurrentQuizID(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "store.current_quiz", err)
			return
		}
		if !ok {
			httpx.LogNotFound(w, "current_quiz", "-")
			return
		}

		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}

func SetCurrentQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := struct {
			ID string `json:"id" validate:"required"`
		}{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || validate.Struct(body) != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		_, err = app.GetQuiz(r.Context(), body.ID)
		if err != nil {
			httpx.LogError(w, "store.current_quiz.get_quiz", err)
			return
		}
		err = app.SetCurrentQuiz(r.Context(), body.ID)
		if err != nil {
			httpx.LogInternalError(w, "store.current_quiz.set", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearCurrentQuiz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.ClearCurrentQuiz(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "store.current_quiz.clear", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// StagePreview hands the posted draft over to the next respondent session,
// without saving it.
func StagePreview(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz := model.Quiz{}
		err := render.DecodeJSON(r.Body, &quiz)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = quiz.Check(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		err = app.StageHandoff(r.Context(), quiz)
		if err != nil {
			httpx.LogInternalError(w, "store.stage_handoff", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
