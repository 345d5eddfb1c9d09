package app

import (
	"github.com/go-chi/jwtauth"
	"github.com/mbolis/quick-quiz/config"
	"github.com/mbolis/quick-quiz/session"
	"github.com/mbolis/quick-quiz/store"
)

type App struct {
	*store.Gateway
	Sessions *session.Registry
	// nil leaves the editor API unauthenticated
	TokenAuth *jwtauth.JWTAuth
	config.Config
}
