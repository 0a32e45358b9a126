package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "c2VjcmV0",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 120*time.Hour {
		t.Fatalf("expected 120h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.LedgerDriver != DriverMemory || cfg.CredentialDriver != DriverMemory {
		t.Fatalf("expected memory drivers, got %q %q", cfg.LedgerDriver, cfg.CredentialDriver)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development mode")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "c2VjcmV0",
		"ENV":                "production",
		"LEDGER_DRIVER":      "postgres",
		"CREDENTIAL_DRIVER":  "mongo",
		"POSTGRES_MAX_CONNS": "25",
		"REDIS_ADDR":         "localhost:6379",
		"LEDGER_CACHE_TTL":   "5s",
		"AUDIT_WORKERS":      "8",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IsDevelopment() || cfg.Postgres.MaxConns != 25 || cfg.Redis.CacheTTL != 5*time.Second || cfg.AuditWorkers != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"bad ledger":       {"JWT_SECRET": "c2VjcmV0", "LEDGER_DRIVER": "sqlite"},
		"bad credentials":  {"JWT_SECRET": "c2VjcmV0", "CREDENTIAL_DRIVER": "ldap"},
		"non-positive ttl": {"JWT_SECRET": "c2VjcmV0", "TOKEN_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			if err == nil || !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}
