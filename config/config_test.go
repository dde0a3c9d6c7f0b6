package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEARNING_CYCLE_THRESHOLD", "")
	t.Setenv("PERSIST_PATTERNS", "")

	cfg := Load()
	if cfg.LearningCycleThreshold != 5 {
		t.Errorf("LearningCycleThreshold: got %d, want 5", cfg.LearningCycleThreshold)
	}
	if cfg.LearningWindow != 10 {
		t.Errorf("LearningWindow: got %d, want 10", cfg.LearningWindow)
	}
	if cfg.LearningMinSuccesses != 3 {
		t.Errorf("LearningMinSuccesses: got %d, want 3", cfg.LearningMinSuccesses)
	}
	if cfg.PersistPatterns {
		t.Error("PersistPatterns should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEARNING_WINDOW", "20")
	t.Setenv("PERSIST_PATTERNS", "yes")
	t.Setenv("RECORD_WORKERS", "not-a-number")

	cfg := Load()
	if cfg.LearningWindow != 20 {
		t.Errorf("LearningWindow: got %d, want 20", cfg.LearningWindow)
	}
	if !cfg.PersistPatterns {
		t.Error("PersistPatterns should be true")
	}
	if cfg.RecordWorkers != 4 {
		t.Errorf("RecordWorkers: got %d, want fallback 4", cfg.RecordWorkers)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
