package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/mbolis/quick-quiz/app"
	"github.com/mbolis/quick-quiz/config"
	"github.com/mbolis/quick-quiz/database"
	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/routes"
	"github.com/mbolis/quick-quiz/routes/middlewares"
	"github.com/mbolis/quick-quiz/session"
	"github.com/mbolis/quick-quiz/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.LogJSON {
		log.UseJSON()
	}

	var tokenAuth *jwtauth.JWTAuth
	if cfg.TokenSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(cfg.TokenSecret), nil)
	}
	if cfg.IssueToken {
		token, err := middlewares.IssueToken(tokenAuth, "editor", cfg.TokenTTL)
		if err != nil {
			log.Fatal("main.issue_token:", err)
		}
		fmt.Println(token)
		return
	}
	if tokenAuth == nil {
		log.Warn("main.auth: no -token-secret, editor API is open")
	}

	kv, closeKV, err := openStore(cfg)
	if err != nil {
		log.Fatal("main.store.open:", err)
	}
	defer closeKV()

	sessions := session.NewRegistry()
	defer sessions.CloseAll()

	app := app.App{
		Gateway:   store.NewGateway(kv),
		Sessions:  sessions,
		TokenAuth: tokenAuth,
		Config:    cfg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, cfg.SessionIdle)

	handler := routes.Wire(app)

	err = runServer(ctx, cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func openStore(cfg config.Config) (kv store.KV, closer func(), err error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := store.OpenRedis(context.Background(), cfg.RedisUrl)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Redis store at " + cfg.RedisUrl)
		return store.NewRedisKV(client, cfg.RedisPrefix), func() { client.Close() }, nil

	case config.StoreMemory:
		log.Warn("Using in-memory store, nothing will survive a restart")
		return store.NewMemoryKV(), func() {}, nil

	default:
		db, err := database.Open(cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using SQLite store at " + cfg.DBUrl)
		return database.NewKV(db), func() { db.Close() }, nil
	}
}

func sweepSessions(ctx context.Context, sessions *session.Registry, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if sessions.Sweep(maxIdle) > 0 {
				log.Infof("main.sweep: %d sessions open", sessions.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
