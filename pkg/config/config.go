package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages
// (storage, secrets, catalog commands) pull from these nested structs.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" json:"storage"`
	Secrets SecretsConfig `mapstructure:"secrets" json:"secrets"`
	Schemas SchemaConfig  `mapstructure:"schemas" json:"schemas"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "memory" or "sqlite". Callers with their own *bun.DB
	// (Postgres included) can bypass the driver and inject providers.
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// SecretsConfig controls at-rest sealing of document payloads.
type SecretsConfig struct {
	// AtRestKey is a hex-encoded 32-byte key. Empty disables sealing.
	AtRestKey string `mapstructure:"at_rest_key" json:"at_rest_key"`
}

// SchemaConfig scopes schema lookup caching.
type SchemaConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

// DriverMemory and DriverSQLite are the backends the module can open itself.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverMemory,
		},
		Schemas: SchemaConfig{
			CacheTTL: time.Minute,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Secrets.AtRestKey != "" {
		key, err := hex.DecodeString(c.Secrets.AtRestKey)
		if err != nil {
			return fmt.Errorf("secrets.at_rest_key must be hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("secrets.at_rest_key must decode to 32 bytes, got %d", len(key))
		}
	}
	if c.Schemas.CacheTTL < 0 {
		return fmt.Errorf("schemas.cache_ttl must be >= 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful. Once cfgx is fully implemented we
// can drop the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Schemas.CacheTTL == 0 {
		c.Schemas.CacheTTL = defaults.Schemas.CacheTTL
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
