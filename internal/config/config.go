package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultProbeTimeoutSeconds = 15
	defaultLogLevel            = "warn"
	defaultLogFormat           = "console"
)

type Config struct {
	LogLevel            string `json:"log_level"`
	LogFormat           string `json:"log_format"` // "console" or "json"
	ProbeTimeoutSeconds int    `json:"probe_timeout_seconds"`
	HistoryPath         string `json:"history_path,omitempty"` // defaults to <config dir>/history.db
}

func DefaultConfig() Config {
	return Config{
		LogLevel:            defaultLogLevel,
		LogFormat:           defaultLogFormat,
		ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
	}
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

func (c Config) ResolvedHistoryPath() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(ConfigDir(), "history.db")
}

func ConfigDir() string {
	if dir := os.Getenv("CREDKIT_CONFIG_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "credkit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "credkit")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads path, fills defaults, then applies CREDKIT_* environment
// overrides. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if cfg.ProbeTimeoutSeconds <= 0 {
		cfg.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = getEnv("CREDKIT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("CREDKIT_LOG_FORMAT", cfg.LogFormat)
	cfg.HistoryPath = getEnv("CREDKIT_HISTORY_PATH", cfg.HistoryPath)
	if d := getEnvDuration("CREDKIT_PROBE_TIMEOUT", 0); d >= time.Second {
		cfg.ProbeTimeoutSeconds = int(d / time.Second)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
