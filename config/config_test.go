package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
http:
  address: ":8080"
storage:
  driver: bolt
  path: data/bookings.db
worker:
  sweep_minutes: 15
`)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
	assert.Equal(t, 15, cfg.Worker.SweepMinutes)
}

func TestLoadConfigDefaultsSweepMinutes(t *testing.T) {
	path := writeConfigFile(t, `
http:
  address: ":8080"
`)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, defaultSweepMinutes, cfg.Worker.SweepMinutes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: bolt
worker:
  sweep_minutes: 15
`)

	t.Setenv("STORAGE_DRIVER", "csv")
	t.Setenv("WORKER_SWEEP_MINUTES", "5")

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "csv", cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Worker.SweepMinutes)
}
