package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"environment"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`

	PrefsDBPath       string `yaml:"prefsDbPath"`
	Precision         int    `yaml:"precision"`
	HistoryLimit      int    `yaml:"historyLimit"`
	TextDebounceMs    int    `yaml:"textDebounceMs"`
	StickyRadius      int    `yaml:"stickyRadius"`
	StickyBreak       int    `yaml:"stickyBreak"`
	SessionTTLMinutes int    `yaml:"sessionTtlMinutes"`

	CORSOrigins []string `yaml:"corsOrigins"`
}

func Default() Config {
	return Config{
		Port:              "3000",
		Environment:       "development",
		ReadTimeout:       10,
		WriteTimeout:      10,
		PrefsDBPath:       "data/db/prefs.db",
		Precision:         2,
		HistoryLimit:      50,
		TextDebounceMs:    50,
		StickyRadius:      20,
		StickyBreak:       35,
		SessionTTLMinutes: 60,
	}
}

// Load загружает конфигурацию: defaults, then the YAML file named by
// CONFIG_FILE if any, then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.ReadTimeout = getEnvAsInt("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.PrefsDBPath = getEnv("PREFS_DB_PATH", cfg.PrefsDBPath)
	cfg.Precision = getEnvAsInt("PRECISION", cfg.Precision)
	cfg.HistoryLimit = getEnvAsInt("HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.TextDebounceMs = getEnvAsInt("TEXT_DEBOUNCE_MS", cfg.TextDebounceMs)
	cfg.StickyRadius = getEnvAsInt("STICKY_RADIUS", cfg.StickyRadius)
	cfg.StickyBreak = getEnvAsInt("STICKY_BREAK", cfg.StickyBreak)
	cfg.SessionTTLMinutes = getEnvAsInt("SESSION_TTL_MINUTES", cfg.SessionTTLMinutes)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	switch {
	case c.Precision < 0 || c.Precision > 10:
		return fmt.Errorf("%w: precision %d out of range", ErrInvalidConfig, c.Precision)
	case c.HistoryLimit < 1:
		return fmt.Errorf("%w: history limit must be positive", ErrInvalidConfig)
	case c.StickyRadius <= 0 || c.StickyBreak < c.StickyRadius:
		return fmt.Errorf("%w: sticky break must be at least the sticky radius", ErrInvalidConfig)
	case c.TextDebounceMs < 0:
		return fmt.Errorf("%w: negative text debounce", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
