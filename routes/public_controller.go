package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-quiz/app"
	"github.com/mbolis/quick-quiz/httpx"
	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
	"github.com/mbolis/quick-quiz/session"
)

func PublicGetQuizById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := app.GetQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogError(w, "store.get_quiz", err)
			return
		}
		if quiz.Status != model.Published {
			httpx.LogNotFound(w, "get_quiz.unpublished", quiz.ID)
			return
		}

		render.JSON(w, r, quiz.Public())
	}
}

type startRequest struct {
	QuizID string `json:"quizId" validate:"omitempty,max=100"`
}

// StartSession opens a respondent session, either on the published quiz named
// in the body or on whatever the editor left for preview.
func StartSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := startRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = validate.Struct(req); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		var src session.Source
		if req.QuizID != "" {
			src, err = session.ResolvePublished(r.Context(), app.Gateway, req.QuizID)
		} else {
			src, err = session.Resolve(r.Context(), app.Gateway)
		}
		if err != nil {
			httpx.LogError(w, "session.resolve", err)
			return
		}

		s, err := session.New(src.Quiz, session.Options{
			QuizID:   src.QuizID,
			Recorder: app.Gateway,
		})
		if err != nil {
			httpx.LogError(w, "session.new", err)
			return
		}
		snap, err := s.Snapshot()
		if err != nil {
			s.Close()
			httpx.LogError(w, "session.snapshot", err)
			return
		}
		id := app.Sessions.Add(s)
		log.WithFields(log.Fields{"session": id, "quiz": src.QuizID}).Debug("session.start")

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":       id,
			"quiz":     src.Quiz.Public(),
			"snapshot": snap,
		})
	}
}

func lookupSession(app app.App, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sid := chi.URLParam(r, "sid")
	s, ok := app.Sessions.Get(sid)
	if !ok {
		httpx.LogNotFound(w, "session.get", sid)
	}
	return s, ok
}

// sessionAction adapts one session operation to a handler answering with the
// resulting snapshot.
func sessionAction(app app.App, code string, op func(s *session.Session, r *http.Request) (session.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		snap, err := op(s, r)
		if err != nil {
			httpx.LogError(w, code, err)
			return
		}

		render.JSON(w, r, snap)
	}
}

func GetSession(app app.App) http.HandlerFunc {
	return sessionAction(app, "session.snapshot", func(s *session.Session, r *http.Request) (session.Snapshot, error) {
		return s.Snapshot()
	})
}

func CloseSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.Sessions.Remove(chi.URLParam(r, "sid"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func SetAnswer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		value := model.Value{}
		err := render.DecodeJSON(r.Body, &value)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		snap, err := s.SetAnswer(chi.URLParam(r, "qid"), value)
		if err != nil {
			httpx.LogError(w, "session.set_answer", err)
			return
		}

		render.JSON(w, r, snap)
	}
}

func ToggleOption(app app.App) http.HandlerFunc {
	return sessionAction(app, "session.toggle_option", func(s *session.Session, r *http.Request) (session.Snapshot, error) {
		return s.ToggleOption(chi.URLParam(r, "qid"), chi.URLParam(r, "oid"))
	})
}

func SetField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		body := struct {
			Value string `json:"value"`
		}{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		snap, err := s.SetField(chi.URLParam(r, "qid"), chi.URLParam(r, "fid"), body.Value)
		if err != nil {
			httpx.LogError(w, "session.set_field", err)
			return
		}

		render.JSON(w, r, snap)
	}
}

// Next answers with the snapshot even when persisting the finished response
// failed; the failure is logged and the respondent still sees the final screen.
func Next(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(app, w, r)
		if !ok {
			return
		}

		snap, err := s.Next(r.Context())
		if errors.Is(err, session.ErrClosed) {
			httpx.LogError(w, "session.next", err)
			return
		}
		if err != nil {
			log.Errorf("session.next.record: %s", err)
		}

		render.JSON(w, r, snap)
	}
}

func Previous(app app.App) http.HandlerFunc {
	return sessionAction(app, "session.previous", func(s *session.Session, r *http.Request) (session.Snapshot, error) {
		return s.Previous()
	})
}

func Restart(app app.App) http.HandlerFunc {
	return sessionAction(app, "session.restart", func(s *session.Session, r *http.Request) (session.Snapshot, error) {
		return s.Restart()
	})
}
