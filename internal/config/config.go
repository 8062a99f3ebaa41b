package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Triage/internal/scoring"
)

// Cache back ends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Data       DataConfig       `yaml:"data"`
	Hermes     HermesConfig     `yaml:"hermes"`
	Roster     RosterConfig     `yaml:"roster"`
	Cache      CacheConfig      `yaml:"cache"`
	Text       TextConfig       `yaml:"text"`
	Skill      SkillConfig      `yaml:"skill"`
	Assignment AssignmentConfig `yaml:"assignment"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	// RateLimit is requests per minute per client.
	RateLimit int `yaml:"rate_limit"`
}

// DatabaseConfig selects the PostgreSQL history store when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// DataConfig locates the CSV history store.
type DataConfig struct {
	TicketsPath     string `yaml:"tickets_path"`
	CalibrationPath string `yaml:"calibration_path"`
}

// HermesConfig enables the NATS event bus when URL is set.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type RosterConfig struct {
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// File replaces the HTTP roster with a static YAML file.
	File string `yaml:"file"`
}

type CacheConfig struct {
	Backend       string `yaml:"backend"`
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type TextConfig struct {
	ExtraStopwords []string `yaml:"extra_stopwords"`
	// ExtraRoots extends the stemmer's root dictionary.
	ExtraRoots []string `yaml:"extra_roots"`
}

type SkillConfig struct {
	MinDF           int     `yaml:"min_df"`
	MaxDF           float64 `yaml:"max_df"`
	TopNTags        int     `yaml:"top_n_tags"`
	FrequencyWeight float64 `yaml:"frequency_weight"`
	RelativeWeight  float64 `yaml:"relative_weight"`
}

type AssignmentConfig struct {
	TopK       int               `yaml:"top_k"`
	TSMWeights scoring.WeightSet `yaml:"tsm_weights"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RosterTimeout() time.Duration {
	return time.Duration(c.Roster.TimeoutMs) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			MetricsPort: 5001,
			RateLimit:   120,
		},
		Data: DataConfig{
			TicketsPath:     "Data Olah.csv",
			CalibrationPath: "Data CRI Final.csv",
		},
		Roster: RosterConfig{
			URL:       "http://localhost:3000/api",
			TimeoutMs: 5000,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       ".triage-cache",
			RedisAddr: "localhost:6379",
			KeyPrefix: "triage:artifact:",
		},
		Skill: SkillConfig{
			MinDF:           3,
			MaxDF:           0.95,
			TopNTags:        8,
			FrequencyWeight: 0.7,
			RelativeWeight:  0.3,
		},
		Assignment: AssignmentConfig{
			TopK:       5,
			TSMWeights: scoring.DefaultTSMWeights(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Assignment.TSMWeights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("assignment.tsm_weights: %w", err))
	}
	if c.Assignment.TopK < 1 {
		errs = append(errs, fmt.Errorf("assignment.top_k must be at least 1, got %d", c.Assignment.TopK))
	}
	if c.Skill.MinDF < 1 {
		errs = append(errs, fmt.Errorf("skill.min_df must be at least 1, got %d", c.Skill.MinDF))
	}
	if c.Skill.MaxDF <= 0 || c.Skill.MaxDF > 1 {
		errs = append(errs, fmt.Errorf("skill.max_df must be in (0, 1], got %g", c.Skill.MaxDF))
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of file, redis, none", c.Cache.Backend))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRIAGE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TRIAGE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("TRIAGE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("TRIAGE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("TRIAGE_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("TRIAGE_ROSTER_URL"); v != "" {
		cfg.Roster.URL = v
	}
	if v := os.Getenv("TRIAGE_ROSTER_TOKEN"); v != "" {
		cfg.Roster.Token = v
	}
	if v := os.Getenv("TRIAGE_ROSTER_FILE"); v != "" {
		cfg.Roster.File = v
	}
	if v := os.Getenv("TRIAGE_TICKETS_PATH"); v != "" {
		cfg.Data.TicketsPath = v
	}
	if v := os.Getenv("TRIAGE_CALIBRATION_PATH"); v != "" {
		cfg.Data.CalibrationPath = v
	}
	if v := os.Getenv("TRIAGE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("TRIAGE_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("TRIAGE_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
