// Command api serves the analysis pipeline over HTTP. Without DATABASE_URL
// records live in memory and disappear on restart.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"netpath/adapters/postgres"
	"netpath/adapters/stats/directed"
	"netpath/adapters/stats/enrich"
	"netpath/adapters/stats/glasso"
	"netpath/adapters/stats/tuning"
	"netpath/app"
	"netpath/internal"
	"netpath/internal/config"
	"netpath/internal/testkit"
	"netpath/ports"
	"netpath/ui"
)

func main() {
	// Load environment variables from .env file (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	var repo ports.AnalysisRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			logger.Error("database schema: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewAnalysisRepository(db)
		logger.Info("using postgres persistence")
	} else {
		repo = testkit.NewInMemoryAnalysisStore()
		logger.Warn("DATABASE_URL not set; analyses are kept in memory only")
	}

	estimator := glasso.New()
	estimator.Tol = cfg.Solver.Tol
	estimator.MaxIter = cfg.Solver.MaxIter
	service := app.NewAnalysisService(
		tuning.NewSelector(estimator),
		directed.New(),
		enrich.NewTester(),
		repo,
		logger,
	)

	server := ui.NewApp(service, repo, logger)
	if err := server.Serve(ui.Config{Port: cfg.Server.Port}); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
