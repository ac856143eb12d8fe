// Package config reads server settings from the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Config holds everything needed to run the server.
type Config struct {
	Addr            string
	StoreDriver     string
	BadgerPath      string
	DatabaseURL     string
	SeedOnStart     bool
	SeedCount       int
	ShutdownTimeout time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		StoreDriver:     DriverBadger,
		BadgerPath:      "data/badger",
		SeedCount:       50,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads the configuration from the environment on top of the defaults.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	cfg.Addr = envString(getenv, "APP_ADDR", cfg.Addr)
	cfg.StoreDriver = envString(getenv, "STORE_DRIVER", cfg.StoreDriver)
	cfg.BadgerPath = envString(getenv, "BADGER_PATH", cfg.BadgerPath)
	cfg.DatabaseURL = envString(getenv, "DATABASE_URL", cfg.DatabaseURL)

	var err error
	if cfg.SeedOnStart, err = envBool(getenv, "SEED_ON_START", cfg.SeedOnStart); err != nil {
		errs = append(errs, err)
	}
	if cfg.SeedCount, err = envInt(getenv, "SEED_COUNT", cfg.SeedCount); err != nil {
		errs = append(errs, err)
	}
	if cfg.ShutdownTimeout, err = envDuration(getenv, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

// BindFlags registers flags that override the loaded values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.StoreDriver, "driver", c.StoreDriver, "storage driver (badger or postgres)")
	fs.StringVar(&c.BadgerPath, "badger-path", c.BadgerPath, "badger data directory")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "postgres connection string")
	fs.BoolVar(&c.SeedOnStart, "seed", c.SeedOnStart, "seed sample posts into an empty store on start")
	fs.IntVar(&c.SeedCount, "seed-count", c.SeedCount, "number of sample posts to seed")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("APP_ADDR must not be empty"))
	}
	switch c.StoreDriver {
	case DriverBadger:
		if c.BadgerPath == "" {
			errs = append(errs, errors.New("BADGER_PATH must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverBadger, DriverPostgres, c.StoreDriver))
	}
	if c.SeedCount < 1 {
		errs = append(errs, fmt.Errorf("SEED_COUNT must be positive, got %d", c.SeedCount))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return i, nil
}

func envBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}
