package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromMap(t *testing.T) {
	input := map[string]any{
		"storage": map[string]any{
			"driver": "sqlite",
			"dsn":    "file:blocks.db",
		},
		"schemas": map[string]any{
			"cache_ttl": 30000000000,
		},
	}

	cfg, err := Load(input)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != "file:blocks.db" {
		t.Fatalf("expected dsn, got %s", cfg.Storage.DSN)
	}
	if cfg.Schemas.CacheTTL != 30*time.Second {
		t.Fatalf("expected 30s cache ttl, got %s", cfg.Schemas.CacheTTL)
	}
}

func TestLoadFromStruct(t *testing.T) {
	input := Config{
		Storage: StorageConfig{Driver: DriverMemory},
		Secrets: SecretsConfig{AtRestKey: strings.Repeat("ab", 32)},
	}

	cfg, err := Load(input)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Schemas.CacheTTL != time.Minute {
		t.Fatalf("expected default cache ttl, got %s", cfg.Schemas.CacheTTL)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("expected memory driver default, got %s", cfg.Storage.Driver)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{Storage: StorageConfig{Driver: "etcd"}}},
		{"sqlite without dsn", Config{Storage: StorageConfig{Driver: DriverSQLite}}},
		{"short key", Config{Storage: StorageConfig{Driver: DriverMemory}, Secrets: SecretsConfig{AtRestKey: "abcd"}}},
		{"non hex key", Config{Storage: StorageConfig{Driver: DriverMemory}, Secrets: SecretsConfig{AtRestKey: strings.Repeat("zz", 32)}}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
