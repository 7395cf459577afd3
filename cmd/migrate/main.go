package main

import (
	"context"

	"energyportal/pkg/config"
	"energyportal/pkg/db"
	"energyportal/pkg/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel)
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	// Uses DIRECT_URL when set so migrations bypass a pooler.
	if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	// Make sure the runtime connection string works too. DSNs are never logged.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("runtime db open failed")
	}
	pool.Close()

	log.WithField("path", cfg.MigrationsPath).Info("migrations applied")
}
