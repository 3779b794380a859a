package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultDataDir        = "data"
	defaultRedisAddr      = "localhost:6379"
	defaultRedisPrefix    = "packing:"
)

// Storage backends for saved packing lists.
const (
	BackendMemory    = "memory"
	BackendDatastore = "datastore"
	BackendRedis     = "redis"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimitRPS         float64       `yaml:"-"`
	RateLimitBurst       int           `yaml:"-"`
	LogLevel             string        `yaml:"log_level"`
	StorageBackend       string        `yaml:"storage_backend"`
	DataDir              string        `yaml:"data_dir"`
	Redis                RedisConfig   `yaml:"redis"`
	Tuning               packing.Tuning
}

// RedisConfig holds the Redis list store connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	LogLevel             string        `yaml:"log_level"`
	Storage              yamlStorage   `yaml:"storage"`
	Tuning               yamlTuning    `yaml:"tuning"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlStorage represents the storage section in YAML.
type yamlStorage struct {
	Backend string    `yaml:"backend"`
	DataDir string    `yaml:"data_dir"`
	Redis   yamlRedis `yaml:"redis"`
}

type yamlRedis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      string `yaml:"ttl"`
}

// yamlTuning represents the fitter tuning section in YAML.
type yamlTuning struct {
	PriorityScores       map[packing.Priority]float64 `yaml:"priority_scores"`
	WeightToVolumeFactor *float64                     `yaml:"weight_to_volume_factor"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile        string
	Port              *string
	RateLimitRPS      *float64
	RateLimitBurst    *int
	LogLevel          *string
	StorageBackend    *string
	DataDir           *string
	RedisAddr         *string
	PriorityScoresStr *string
	WeightFactor      *float64
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables (lowest precedence after defaults)
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		StorageBackend:       BackendMemory,
		DataDir:              defaultDataDir,
		Redis: RedisConfig{
			Addr:   defaultRedisAddr,
			Prefix: defaultRedisPrefix,
		},
		Tuning: packing.DefaultTuning(),
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct. Keys absent
// from the file keep their current value.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{yamlCfg.Storage.Redis.TTL, &cfg.Redis.TTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Storage.Backend != "" {
		cfg.StorageBackend = yamlCfg.Storage.Backend
	}
	if yamlCfg.Storage.DataDir != "" {
		cfg.DataDir = yamlCfg.Storage.DataDir
	}

	redis := yamlCfg.Storage.Redis
	if redis.Addr != "" {
		cfg.Redis.Addr = redis.Addr
	}
	if redis.Password != "" {
		cfg.Redis.Password = redis.Password
	}
	if redis.DB != nil {
		cfg.Redis.DB = *redis.DB
	}
	if redis.Prefix != "" {
		cfg.Redis.Prefix = redis.Prefix
	}

	for priority, score := range yamlCfg.Tuning.PriorityScores {
		if !priority.Valid() {
			return fmt.Errorf("tuning.priority_scores: unknown priority %q", priority)
		}
		cfg.Tuning.PriorityScores[priority] = score
	}
	if yamlCfg.Tuning.WeightToVolumeFactor != nil {
		cfg.Tuning.WeightToVolumeFactor = *yamlCfg.Tuning.WeightToVolumeFactor
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if backend := env("STORAGE_BACKEND"); backend != "" {
		cfg.StorageBackend = backend
	}

	if dir := env("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if addr := env("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if password := env("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if db := env("REDIS_DB"); db != "" {
		if value, err := strconv.Atoi(db); err == nil && value >= 0 {
			cfg.Redis.DB = value
		}
	}

	if prefix := env("REDIS_PREFIX"); prefix != "" {
		cfg.Redis.Prefix = prefix
	}

	if ttl := env("REDIS_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Redis.TTL = d
		}
	}

	if raw := env("PRIORITY_SCORES"); raw != "" {
		scores, err := parsePriorityScores(raw)
		if err != nil {
			return fmt.Errorf("parse PRIORITY_SCORES: %w", err)
		}
		for priority, score := range scores {
			cfg.Tuning.PriorityScores[priority] = score
		}
	}

	if factor := env("WEIGHT_TO_VOLUME_FACTOR"); factor != "" {
		if value, err := strconv.ParseFloat(factor, 64); err == nil {
			cfg.Tuning.WeightToVolumeFactor = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.StorageBackend != nil && *overrides.StorageBackend != "" {
		cfg.StorageBackend = *overrides.StorageBackend
	}

	if overrides.DataDir != nil && *overrides.DataDir != "" {
		cfg.DataDir = *overrides.DataDir
	}

	if overrides.RedisAddr != nil && *overrides.RedisAddr != "" {
		cfg.Redis.Addr = *overrides.RedisAddr
	}

	if overrides.PriorityScoresStr != nil && *overrides.PriorityScoresStr != "" {
		scores, err := parsePriorityScores(*overrides.PriorityScoresStr)
		if err != nil {
			return fmt.Errorf("parse priority scores: %w", err)
		}
		for priority, score := range scores {
			cfg.Tuning.PriorityScores[priority] = score
		}
	}

	if overrides.WeightFactor != nil && *overrides.WeightFactor >= 0 {
		cfg.Tuning.WeightToVolumeFactor = *overrides.WeightFactor
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.StorageBackend {
	case BackendMemory, BackendRedis:
	case BackendDatastore:
		if strings.TrimSpace(cfg.DataDir) == "" {
			return fmt.Errorf("data dir is required for the datastore backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// parsePriorityScores parses "essential=100,luxury=5" into a score map. Only
// known priorities with positive scores are accepted.
func parsePriorityScores(raw string) (map[packing.Priority]float64, error) {
	scores := make(map[packing.Priority]float64)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected priority=score, got %q", part)
		}
		priority := packing.Priority(strings.TrimSpace(name))
		if !priority.Valid() {
			return nil, fmt.Errorf("unknown priority %q", name)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q", value)
		}
		if score <= 0 {
			return nil, fmt.Errorf("score for %s must be positive, got %v", priority, score)
		}
		scores[priority] = score
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no priority scores provided")
	}
	return scores, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
