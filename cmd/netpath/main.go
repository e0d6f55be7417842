// Command netpath runs one full analysis from input files: expression,
// condition labels, pathway membership, and optional structural masks. The
// results table is printed as markdown and optionally written to a file and
// persisted to postgres.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"netpath/adapters/excel"
	"netpath/adapters/postgres"
	"netpath/adapters/report"
	"netpath/adapters/stats/directed"
	"netpath/adapters/stats/enrich"
	"netpath/adapters/stats/glasso"
	"netpath/adapters/stats/tuning"
	"netpath/app"
	"netpath/domain/network"
	"netpath/internal"
	"netpath/internal/config"
	"netpath/ports"
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
	if cfg.Data.ExpressionFile == "" || cfg.Data.LabelsFile == "" || cfg.Data.IndicatorFile == "" {
		logger.Error("EXPRESSION_FILE, LABELS_FILE and INDICATOR_FILE are required")
		os.Exit(1)
	}

	ctx := context.Background()
	reader := excel.NewDataReader()

	m, err := reader.ReadExpression(cfg.Data.ExpressionFile)
	if err != nil {
		logger.Error("reading expression: %v", err)
		os.Exit(1)
	}
	labels, err := reader.ReadLabels(cfg.Data.LabelsFile, m.Samples)
	if err != nil {
		logger.Error("reading labels: %v", err)
		os.Exit(1)
	}
	indicator, err := reader.ReadIndicator(cfg.Data.IndicatorFile, m.Genes)
	if err != nil {
		logger.Error("reading indicator: %v", err)
		os.Exit(1)
	}
	var zero, one network.Mask
	if cfg.Data.ZeroMaskFile != "" {
		if zero, err = reader.ReadMask(cfg.Data.ZeroMaskFile, m.Genes); err != nil {
			logger.Error("reading zero mask: %v", err)
			os.Exit(1)
		}
	}
	if cfg.Data.OneMaskFile != "" {
		if one, err = reader.ReadMask(cfg.Data.OneMaskFile, m.Genes); err != nil {
			logger.Error("reading one mask: %v", err)
			os.Exit(1)
		}
	}

	var repo ports.AnalysisRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			logger.Error("database schema: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewAnalysisRepository(db)
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

	record, err := service.Run(ctx, app.AnalysisRequest{
		Expr:      m,
		Labels:    labels,
		Indicator: indicator,
		Zero:      zero,
		One:       one,
		Directed:  cfg.Data.Directed,
		Lambdas:   cfg.Grid.Lambdas,
		Weights:   cfg.Grid.Weights,
		Lambda:    cfg.Grid.Lambdas[0],
		Eta:       cfg.Solver.Eta,
		Eps:       cfg.Solver.Eps,
		Method:    ports.VarianceMethod(cfg.Data.VarianceMethod),
	})
	if err != nil {
		logger.Error("analysis failed: %v", err)
		os.Exit(1)
	}

	md := report.NewGenerator().Markdown(record)
	if cfg.Data.ReportFile != "" {
		if err := os.WriteFile(cfg.Data.ReportFile, []byte(md), 0o644); err != nil {
			logger.Error("writing report: %v", err)
			os.Exit(1)
		}
		logger.Info("report written to %s", cfg.Data.ReportFile)
	} else {
		os.Stdout.WriteString(md)
	}
}
