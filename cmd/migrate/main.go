package main

import (
	"go.uber.org/zap"

	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/config"
	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/logger"
	"github.com/usv008/pizza-inventory-system-sub002/internal/infrastructure/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := persistence.Migrate(db.DB); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	log.Info("migration complete", zap.String("driver", cfg.Database.Driver))
}
