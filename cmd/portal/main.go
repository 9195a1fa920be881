package main // Entry point for the care-portal gateway

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/config"
	"github.com/mindwell/care-portal/internal/handler"
	"github.com/mindwell/care-portal/internal/router"
	"github.com/mindwell/care-portal/internal/session"
	"github.com/mindwell/care-portal/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second

	tokens := buildStore(cfg, log)
	client := api.NewClient(cfg.APIBaseURL, func() string {
		creds, err := tokens.Get()
		if err != nil {
			return ""
		}
		return creds.Access
	})

	sessions := session.NewManager(tokens, client, log)

	// Resolve any stored session before serving; pages read Loading()
	// until this finishes.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	sessions.Bootstrap(ctx)
	cancel()

	e := echo.New()
	e.HideBanner = true
	sh := handler.NewSessionHandler(sessions, client, cfg.CookieName, timeout)
	nav := handler.NewNavigationHandler(sessions)
	team := handler.NewTeamHandler(sessions, client, timeout)
	router.Register(e, cfg, sessions, sh, nav, team)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "backend": cfg.APIBaseURL}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// buildStore picks the token store driver from configuration, falling
// back to the file store when Redis is requested but unreachable.
func buildStore(cfg config.Config, log *logrus.Logger) store.TokenStore {
	switch cfg.TokenStore {
	case "memory":
		return store.NewMemoryStore()
	case "redis":
		if client := config.NewRedisClient(); client != nil {
			return store.NewRedisStore(client, cfg.SessionID)
		}
		log.Warn("redis unreachable, falling back to file token store")
	}
	fs, err := store.NewFileStore(cfg.TokenFile)
	if err != nil {
		log.WithError(err).Fatal("token store init failed")
	}
	return fs
}
