package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSearchAPIKey is injected at build time with
// -ldflags "-X github.com/glabrego/xkcd-cli/internal/config.DefaultSearchAPIKey=...".
var DefaultSearchAPIKey string

// Config holds runtime settings for the CLI app. Values come from an optional
// TOML file overlaid by XKCD_* environment variables.
type Config struct {
	ComicBaseURL      string        `toml:"comic_base_url" env:"XKCD_COMIC_BASE_URL" env-default:"https://xkcd.com"`
	WikiBaseURL       string        `toml:"wiki_base_url" env:"XKCD_WIKI_BASE_URL" env-default:"https://www.explainxkcd.com/wiki"`
	SearchURL         string        `toml:"search_url" env:"XKCD_SEARCH_URL" env-default:"https://qtg5aekc2iosjh93p.a1.typesense.net/multi_search"`
	SearchAPIKey      string        `toml:"search_api_key" env:"XKCD_SEARCH_API_KEY"`
	DBPath            string        `toml:"db_path" env:"XKCD_DB_PATH" env-default:"xkcd.db"`
	LogLevel          string        `toml:"log_level" env:"XKCD_LOG_LEVEL" env-default:"INFO"`
	LogFile           string        `toml:"log_file" env:"XKCD_LOG_FILE"`
	Locale            string        `toml:"locale" env:"XKCD_LOCALE" env-default:"nb-NO"`
	HTTPTimeout       time.Duration `toml:"http_timeout" env:"XKCD_HTTP_TIMEOUT" env-default:"10s"`
	RequestsPerSecond float64       `toml:"requests_per_second" env:"XKCD_RATE_LIMIT" env-default:"8"`
	FetchConcurrency  int           `toml:"fetch_concurrency" env:"XKCD_FETCH_CONCURRENCY" env-default:"4"`
	BrokerURL         string        `toml:"broker_url" env:"XKCD_BROKER_URL"`
	WatchInterval     time.Duration `toml:"watch_interval" env:"XKCD_WATCH_INTERVAL" env-default:"1h"`
}

// DefaultPath is ~/.config/xkcd/config.toml, or empty when the home
// directory cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "xkcd", "config.toml")
}

// Load reads path when it exists and then applies the environment. A missing
// file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" && fileExists(path) {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}

	if cfg.SearchAPIKey == "" {
		cfg.SearchAPIKey = DefaultSearchAPIKey
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for name, u := range map[string]string{
		"ComicBaseURL": c.ComicBaseURL,
		"WikiBaseURL":  c.WikiBaseURL,
		"SearchURL":    c.SearchURL,
	} {
		if u == "" {
			return fmt.Errorf("%s is required", name)
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must be an http(s) URL: %s", name, u)
		}
		if u[len(u)-1] == '/' {
			return fmt.Errorf("%s must not end with '/': %s", name, u)
		}
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LogLevel must be DEBUG, INFO, WARN or ERROR: %s", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTPTimeout must be positive: %s", c.HTTPTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("RequestsPerSecond must not be negative: %v", c.RequestsPerSecond)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FetchConcurrency must be at least 1: %d", c.FetchConcurrency)
	}
	if c.WatchInterval < time.Minute {
		return fmt.Errorf("WatchInterval must be at least 1m: %s", c.WatchInterval)
	}
	return nil
}

const fileHeader = `# xkcd-cli configuration.
# Every key can be overridden by the matching XKCD_* environment variable.
# The search API key is best supplied through XKCD_SEARCH_API_KEY.

`

// Write stores cfg as TOML at path without the search API key. It refuses to
// overwrite an existing file.
func Write(path string, cfg Config) error {
	if fileExists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	cfg.SearchAPIKey = ""
	if _, err := f.WriteString(fileHeader); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
