package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energyportal/internal/activity"
	"energyportal/internal/backend"
	"energyportal/internal/fetchguard"
	"energyportal/internal/httpapi"
	"energyportal/internal/session"
	"energyportal/pkg/authtoken"
	"energyportal/pkg/config"
	"energyportal/pkg/db"
	"energyportal/pkg/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	if cfg.Session.Secret == "" {
		if cfg.IsProd() {
			log.Fatal("SESSION_SECRET is required")
		}
		log.Warn("SESSION_SECRET not set, using an insecure development secret")
		cfg.Session.Secret = "dev-insecure-session-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}

	sessions := session.NewRepository(conn)
	go session.RunJanitor(ctx, sessions, time.Hour, log)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		Log:      log,
		Backend:  backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		Sessions: sessions,
		Activity: activity.NewRepository(conn),
		Signer:   authtoken.NewSigner(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL),
		Guard:    fetchguard.New(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http serve")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("http server stopped")
}
