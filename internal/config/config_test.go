package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("default port: %q", cfg.Server.Port)
	}
	if len(cfg.Grid.Lambdas) == 0 {
		t.Error("default lambda grid is empty")
	}
	if cfg.Data.VarianceMethod != "moments" {
		t.Errorf("default variance method: %q", cfg.Data.VarianceMethod)
	}
	if cfg.Solver.MaxIter < 1 {
		t.Errorf("default solver budget: %d", cfg.Solver.MaxIter)
	}
}

func TestLoadParsesGrids(t *testing.T) {
	t.Setenv("GRID_LAMBDAS", "0.05, 0.1,0.2")
	t.Setenv("GRID_WEIGHTS", "0,0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Grid.Lambdas) != 3 || cfg.Grid.Lambdas[1] != 0.1 {
		t.Errorf("lambdas not parsed: %v", cfg.Grid.Lambdas)
	}
	if len(cfg.Grid.Weights) != 2 || cfg.Grid.Weights[1] != 0.5 {
		t.Errorf("weights not parsed: %v", cfg.Grid.Weights)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GRID_LAMBDAS", "0.1,banana")
	if _, err := Load(); err == nil {
		t.Error("expected non-numeric lambda to be rejected")
	}

	t.Setenv("GRID_LAMBDAS", "-0.1")
	if _, err := Load(); err == nil {
		t.Error("expected negative lambda to be rejected")
	}

	t.Setenv("GRID_LAMBDAS", "0.1")
	t.Setenv("VARIANCE_METHOD", "bayes")
	if _, err := Load(); err == nil {
		t.Error("expected unknown variance method to be rejected")
	}
}
