package server

import (
	"os"
	"testing"
)

func TestNewGraphConfigFromEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("NEO4J_USERNAME", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg := NewGraphConfigFromEnv()

	if cfg.URI != "bolt://graph:7687" {
		t.Errorf("unexpected URI %q", cfg.URI)
	}
	if cfg.Username != "neo4j" {
		t.Errorf("NEO4J_USERNAME not picked up, got %q", cfg.Username)
	}
	if cfg.Password != "secret" {
		t.Errorf("NEO4J_PASSWORD not picked up, got %q", cfg.Password)
	}
}

func TestNewGraphConfigFromEnvDefaults(t *testing.T) {
	// t.Setenv registers restoration; unset so the defaults apply.
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := NewGraphConfigFromEnv()

	if cfg.URI == "" {
		t.Error("expected a default URI")
	}
	if cfg.Username != "" || cfg.Password != "" {
		t.Errorf("expected empty credentials, got %q/%q", cfg.Username, cfg.Password)
	}
}
