// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	BaseURL         string        `yaml:"base_url"`
	Region          string        `yaml:"region"`
	UserAgent       string        `yaml:"user_agent"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	Port            string        `yaml:"port"`
	RedisAddr       string        `yaml:"redis_addr"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	BrowserPoolSize int           `yaml:"browser_pool_size"`
	OutDir          string        `yaml:"out_dir"`
	DBPath          string        `yaml:"db_path"`
	Debug           bool          `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Region:          DefaultRegion,
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
		FetchTimeout:    30 * time.Second,
		Port:            "8000",
		CacheTTL:        5 * time.Minute,
		BrowserPoolSize: 2,
		OutDir:          "out",
		DBPath:          "quotes.db",
	}
}

// Load builds a Config. path names an optional YAML file; an empty path skips
// it. A .env file in the working directory is read when present, without
// overriding variables already set in the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.BaseURL == "" {
		host, ok := RegionHosts[cfg.Region]
		if !ok {
			return cfg, fmt.Errorf("unknown region %q", cfg.Region)
		}
		cfg.BaseURL = host
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.BaseURL, "QUOTE_BASE_URL")
	setString(&cfg.Region, "QUOTE_REGION")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.Port, "PORT")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.OutDir, "OUT_DIR")
	setString(&cfg.DBPath, "DB_PATH")

	if err := setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.CacheTTL, "CACHE_TTL"); err != nil {
		return err
	}
	if v := os.Getenv("BROWSER_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid BROWSER_POOL_SIZE %q", v)
		}
		cfg.BrowserPoolSize = n
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG %q", v)
		}
		cfg.Debug = debug
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
