package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "SHOPLIST_"

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	DBPath      string        `env:"DB_PATH" envDefault:"shoplist.db"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"text"`
	Timezone    string        `env:"TIMEZONE" envDefault:"Local"`
	SeedCatalog bool          `env:"SEED_CATALOG" envDefault:"true"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	Storage     StorageConfig `envPrefix:"STORAGE_"`
}

type StorageConfig struct {
	Endpoint      string        `env:"ENDPOINT"`
	Bucket        string        `env:"BUCKET"`
	Region        string        `env:"REGION" envDefault:"us-east-1"`
	AccessKey     string        `env:"ACCESS_KEY"`
	SecretKey     string        `env:"SECRET_KEY"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL"`
	URLExpiry     time.Duration `env:"URL_EXPIRY" envDefault:"168h"`
}

// Load reads SHOPLIST_* variables from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// Location resolves Timezone, used to bucket lists into calendar months.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
