package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got: %v", err)
	}
}

func TestValidateRejectsBadYearRange(t *testing.T) {
	cfg := Default()
	cfg.Simulation.EndYear = cfg.Simulation.StartYear - 1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for end year before start year")
	}
}

func TestValidateRejectsUnknownRoundingMode(t *testing.T) {
	cfg := Default()
	cfg.Decimal.Rounding = "nearest-star"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid rounding mode")
	}
}

func TestLoadUsesDefaultsWhenEnvUnset(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Decimal.Precision != defaultDecimalPrecision {
		t.Fatalf("expected default precision %d, got %d", defaultDecimalPrecision, cfg.Decimal.Precision)
	}
	if cfg.Simulation.StartYear != defaultStartYear || cfg.Simulation.EndYear != defaultEndYear {
		t.Fatalf("expected default year range, got %d-%d", cfg.Simulation.StartYear, cfg.Simulation.EndYear)
	}
}

func TestGetIntEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv(envStartYear, "not-a-number")
	if got := getIntEnv(envStartYear, 2025); got != 2025 {
		t.Fatalf("expected fallback 2025, got %d", got)
	}
}
