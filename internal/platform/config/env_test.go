package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int    `env:"PORT" envDefault:"123"`
	Dir  string `env:"DIR" envDefault:"data"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want 123", cfg.Port)
	}
	if cfg.Dir != "data" {
		t.Fatalf("dir = %q, want data", cfg.Dir)
	}
}

func TestParseEnvWithPrefixReadsPrefixedVariables(t *testing.T) {
	t.Setenv("MYRANOR_TEST_PORT", "8081")

	var cfg envTestConfig
	if err := ParseEnvWithPrefix(&cfg, "MYRANOR_TEST_"); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("port = %d, want 8081", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("MYRANOR_BAD_PORT", "not-an-int")

	var cfg envTestConfig
	err := ParseEnvWithPrefix(&cfg, "MYRANOR_BAD_")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
