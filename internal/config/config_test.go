package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "PRODUCTION")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != EnvProduction || !cfg.IsNotLocal() {
		t.Fatalf("expected production env, got %q", cfg.App.Env)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %s", cfg.Cache.TTL)
	}
	if cfg.Store.Backend != StoreBackendAidbox || cfg.Cache.Backend != CacheBackendLRU {
		t.Fatalf("unexpected backends: %q %q", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if cfg.Series.MaxOccurrences != 500 {
		t.Fatalf("expected 500 max occurrences, got %d", cfg.Series.MaxOccurrences)
	}
	if len(cfg.Auth.BasicClients) != 1 || cfg.Auth.BasicClients[0].Username != "availability_engine" {
		t.Fatalf("unexpected basic clients: %+v", cfg.Auth.BasicClients)
	}
}

func TestNewConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error for unknown store backend")
	}
}

func TestNewConfigRequiresRabbitURL(t *testing.T) {
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("RABBITMQ_URL", "")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error when RabbitMQ is enabled without url")
	}
}

func TestParseBasicClients(t *testing.T) {
	clients := ParseBasicClients("alice:secret, bob:p:w ,broken,:nouser")
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %+v", clients)
	}
	if clients[0].Username != "alice" || clients[0].Password != "secret" {
		t.Fatalf("unexpected first client: %+v", clients[0])
	}
	if clients[1].Username != "bob" || clients[1].Password != "p:w" {
		t.Fatalf("unexpected second client: %+v", clients[1])
	}
}
