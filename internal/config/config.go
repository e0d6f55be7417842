package config

import (
	"os"
	"strconv"
	"strings"

	"netpath/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Solver   SolverConfig
	Grid     GridConfig
}

// DatabaseConfig holds database connection settings. URL is optional: without
// it analyses run in memory only and nothing is persisted.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds input file locations and the analysis mode
type DataConfig struct {
	ExpressionFile string
	LabelsFile     string
	IndicatorFile  string
	ZeroMaskFile   string
	OneMaskFile    string
	Directed       bool
	VarianceMethod string
	ReportFile     string
}

// SolverConfig holds the numerical knobs shared by the estimators
type SolverConfig struct {
	Eta     float64
	Eps     float64
	Tol     float64
	MaxIter int
}

// GridConfig holds the tuning grid for undirected estimation
type GridConfig struct {
	Lambdas []float64
	Weights []float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			ExpressionFile: getEnvOrDefault("EXPRESSION_FILE", ""),
			LabelsFile:     getEnvOrDefault("LABELS_FILE", ""),
			IndicatorFile:  getEnvOrDefault("INDICATOR_FILE", ""),
			ZeroMaskFile:   getEnvOrDefault("ZERO_MASK_FILE", ""),
			OneMaskFile:    getEnvOrDefault("ONE_MASK_FILE", ""),
			Directed:       getEnvBoolOrDefault("DIRECTED", false),
			VarianceMethod: getEnvOrDefault("VARIANCE_METHOD", "moments"),
			ReportFile:     getEnvOrDefault("REPORT_FILE", ""),
		},
		Solver: SolverConfig{
			Eta:     getEnvFloatOrDefault("SOLVER_ETA", 0.01),
			Eps:     getEnvFloatOrDefault("SOLVER_EPS", 1e-6),
			Tol:     getEnvFloatOrDefault("SOLVER_TOL", 1e-4),
			MaxIter: getEnvIntOrDefault("SOLVER_MAX_ITER", 200),
		},
	}

	lambdas, err := getEnvFloatsOrDefault("GRID_LAMBDAS", []float64{0.05, 0.1, 0.2, 0.4, 0.8})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse GRID_LAMBDAS")
	}
	weights, err := getEnvFloatsOrDefault("GRID_WEIGHTS", []float64{0})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse GRID_WEIGHTS")
	}
	cfg.Grid = GridConfig{Lambdas: lambdas, Weights: weights}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Solver.Eta < 0 || cfg.Solver.Eps < 0 || cfg.Solver.Tol <= 0 {
		return errors.ConfigInvalid("solver knobs must be non-negative and tolerance positive")
	}
	if cfg.Solver.MaxIter < 1 {
		return errors.ConfigInvalid("SOLVER_MAX_ITER must be at least 1")
	}
	if len(cfg.Grid.Lambdas) == 0 {
		return errors.ConfigInvalid("GRID_LAMBDAS must name at least one penalty")
	}
	for _, l := range cfg.Grid.Lambdas {
		if l < 0 {
			return errors.ConfigInvalid("GRID_LAMBDAS entries must be non-negative")
		}
	}
	for _, w := range cfg.Grid.Weights {
		if w < 0 {
			return errors.ConfigInvalid("GRID_WEIGHTS entries must be non-negative")
		}
	}
	switch cfg.Data.VarianceMethod {
	case "moments", "likelihood":
	default:
		return errors.ConfigInvalid("VARIANCE_METHOD must be 'moments' or 'likelihood'")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloatsOrDefault parses a comma-separated list of floats
func getEnvFloatsOrDefault(key string, defaultValue []float64) ([]float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.ConfigInvalid("invalid float in " + key + ": " + part)
		}
		out = append(out, parsed)
	}
	return out, nil
}
