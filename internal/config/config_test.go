package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for an explicit missing file")
	}

	// No explicit path falls back to defaults when nothing is found.
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8484 {
		t.Fatalf("port = %d, want 8484", cfg.Server.Port)
	}
	if cfg.Generation.LeadMinutes != 5 || cfg.Generation.WindowMinutes != 60 ||
		cfg.Generation.FullDayWindowMinutes != 30 {
		t.Fatalf("generation defaults wrong: %+v", cfg.Generation)
	}
	if cfg.Generation.FillerToken != "mus" || cfg.Generation.DefaultProgram != "MUSICAL" {
		t.Fatalf("token defaults wrong: %+v", cfg.Generation)
	}
	if !cfg.Generation.National.Enabled || cfg.Generation.National.Hour != 19 {
		t.Fatalf("national defaults wrong: %+v", cfg.Generation.National)
	}
	if len(cfg.Generation.Countdown.Slots) != 2 || cfg.Generation.Countdown.SongsPerSlot != 5 {
		t.Fatalf("countdown defaults wrong: %+v", cfg.Generation.Countdown)
	}
	if cfg.Download.RetryCap != 2 {
		t.Fatalf("retry cap = %d, want 2", cfg.Download.RetryCap)
	}
	if cfg.Scrape.BatchSize != 3 || !cfg.Scrape.RetryFailed {
		t.Fatalf("scrape defaults wrong: %+v", cfg.Scrape)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
generation:
  lead_minutes: 10
  national:
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Generation.LeadMinutes != 10 {
		t.Fatalf("lead = %d, want 10", cfg.Generation.LeadMinutes)
	}
	if cfg.Generation.National.Enabled {
		t.Fatal("file override did not disable the national block")
	}
	// Untouched keys keep their defaults.
	if cfg.Generation.FillerToken != "mus" {
		t.Fatalf("filler = %q", cfg.Generation.FillerToken)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GRADECAST_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("port = %d, want 7070", cfg.Server.Port)
	}
}

func TestServerAddress(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8484}
	if got := c.Address(); got != "127.0.0.1:8484" {
		t.Fatalf("address = %q", got)
	}
}
