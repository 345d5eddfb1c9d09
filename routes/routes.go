package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-quiz/app"
	"github.com/mbolis/quick-quiz/routes/middlewares"
	"github.com/rs/cors"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)
	if len(app.AllowedOrigins) > 0 {
		root.Use(cors.New(cors.Options{
			AllowedOrigins: app.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/quizzes/{id}", PublicGetQuizById(app))

	api.Route("/sessions", func(r chi.Router) {
		r.Post("/", StartSession(app))
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", GetSession(app))
			r.Delete("/", CloseSession(app))

			r.Put("/answers/{qid}", SetAnswer(app))
			r.Post("/answers/{qid}/options/{oid}", ToggleOption(app))
			r.Put("/answers/{qid}/fields/{fid}", SetField(app))

			r.Post("/next", Next(app))
			r.Post("/previous", Previous(app))
			r.Post("/restart", Restart(app))
		})
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenAuth))

		// CRUD quiz
		r.Post("/quizzes", CreateQuiz(app))
		r.Get("/quizzes", ListQuizzes(app))
		r.Get("/quizzes/{id}", GetQuizById(app))
		r.Put("/quizzes/{id}", UpdateQuiz(app))
		r.Delete("/quizzes/{id}", DeleteQuiz(app))

		r.Post("/quizzes/{id}/duplicate", DuplicateQuiz(app))
		r.Post("/quizzes/{id}/publish", PublishQuiz(app))
		r.Post("/quizzes/{id}/unpublish", UnpublishQuiz(app))
		r.Get("/quizzes/{id}/responses", GetQuizResponses(app))

		// question editing
		r.Route("/quizzes/{id}/questions", func(r chi.Router) {
			r.Post("/", AddQuestion(app))
			r.Route("/{qid}", func(r chi.Router) {
				r.Patch("/", UpdateQuestion(app))
				r.Delete("/", RemoveQuestion(app))
				r.Post("/move", MoveQuestion(app))

				r.Post("/options", AddOption(app))
				r.Delete("/options/{oid}", RemoveOption(app))
				r.Post("/options/{oid}/move", MoveOption(app))

				r.Post("/inputs", AddInput(app))
				r.Delete("/inputs/{iid}", RemoveInput(app))

				r.Post("/elements/{element}/move", MoveImageElement(app))
			})
		})

		r.Get("/history", GetHistory(app))

		r.Get("/current", GetCurrentQuiz(app))
		r.Put("/current", SetCurrentQuiz(app))
		r.Delete("/current", ClearCurrentQuiz(app))

		r.Post("/preview", StagePreview(app))
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
