package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ScoringConcurrency != 8 || cfg.LadderConcurrency != 8 {
		t.Fatalf("concurrency defaults: %+v", cfg)
	}
	if cfg.BoundsCacheTTL != 30*time.Minute {
		t.Fatalf("bounds ttl: want=30m got=%v", cfg.BoundsCacheTTL)
	}
	if cfg.NotifyTimeout != 5*time.Second || cfg.StoreTimeout != 30*time.Second {
		t.Fatalf("timeouts: notify=%v store=%v", cfg.NotifyTimeout, cfg.StoreTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LADDER_CONCURRENCY", "0")
	t.Setenv("BOUNDS_CACHE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBOptions().Driver != "sqlite" {
		t.Fatalf("driver=%q", cfg.DBOptions().Driver)
	}
	if cfg.LadderConcurrency != 1 {
		t.Fatalf("concurrency floor: got=%d", cfg.LadderConcurrency)
	}
	if cfg.BoundsCacheTTL != 5*time.Minute {
		t.Fatalf("ttl=%v", cfg.BoundsCacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("origins=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
