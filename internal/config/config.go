package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigFile is returned when ZEN_CONFIG_FILE names a file that cannot be
// read or parsed.
var ErrConfigFile = errors.New("config file")

type Config struct {
	Port             string
	DBPath           string
	CORSOrigins      []string
	MigrationsDir    string
	LogLevel         string
	LogFormat        string
	TickInterval     time.Duration
	SoundEnabled     bool
	KeepAwakeEnabled bool
}

type fileConfig struct {
	Port             string   `yaml:"port"`
	DBPath           string   `yaml:"db_path"`
	CORSOrigins      []string `yaml:"cors_origins"`
	MigrationsDir    string   `yaml:"migrations_dir"`
	LogLevel         string   `yaml:"log_level"`
	LogFormat        string   `yaml:"log_format"`
	TickIntervalMS   int      `yaml:"tick_interval_ms"`
	SoundEnabled     *bool    `yaml:"sound_enabled"`
	KeepAwakeEnabled *bool    `yaml:"keep_awake_enabled"`
}

func Default() Config {
	return Config{
		Port:             "8080",
		DBPath:           "./data/zenstream.db",
		CORSOrigins:      []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		LogLevel:         "info",
		LogFormat:        "text",
		TickInterval:     time.Second,
		SoundEnabled:     true,
		KeepAwakeEnabled: true,
	}
}

// Load starts from Default, overlays the YAML file named by ZEN_CONFIG_FILE
// when set, then applies environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := getEnv("ZEN_CONFIG_FILE", ""); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if ms := getEnvInt("TICK_INTERVAL_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	cfg.SoundEnabled = getEnvBool("SOUND_ENABLED", cfg.SoundEnabled)
	cfg.KeepAwakeEnabled = getEnvBool("KEEP_AWAKE_ENABLED", cfg.KeepAwakeEnabled)

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrConfigFile, path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrConfigFile, path, err)
	}

	if file.Port != "" {
		cfg.Port = file.Port
	}
	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if len(file.CORSOrigins) > 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if file.MigrationsDir != "" {
		cfg.MigrationsDir = file.MigrationsDir
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}
	if file.TickIntervalMS > 0 {
		cfg.TickInterval = time.Duration(file.TickIntervalMS) * time.Millisecond
	}
	if file.SoundEnabled != nil {
		cfg.SoundEnabled = *file.SoundEnabled
	}
	if file.KeepAwakeEnabled != nil {
		cfg.KeepAwakeEnabled = *file.KeepAwakeEnabled
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
