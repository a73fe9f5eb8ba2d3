package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	redisclient "github.com/yungbote/survey-backend/internal/clients/redis"
	"github.com/yungbote/survey-backend/internal/data/db"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/envutil"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

const envConfigFilePath = "CONFIG_FILE_PATH"

type Medium string

const (
	MediumFile     Medium = "file"
	MediumSQLite   Medium = "sqlite"
	MediumPostgres Medium = "postgres"
	MediumRedis    Medium = "redis"
)

type SurveyConfig struct {
	Medium         Medium `yaml:"medium"`
	DataFile       string `yaml:"data_file"`
	SQLitePath     string `yaml:"sqlite_path"`
	DocumentName   string `yaml:"document_name"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
}

func (c SurveyConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

type HTTPConfig struct {
	Port             string   `yaml:"port"`
	StaticDir        string   `yaml:"static_dir"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Addr starts a dedicated listener. Empty serves /metrics on the API router only.
	Addr string `yaml:"addr"`
}

// Config is read from the optional YAML file named by CONFIG_FILE_PATH, then overridden by env.
type Config struct {
	LogMode  string                   `yaml:"log_mode"`
	Survey   SurveyConfig             `yaml:"survey"`
	HTTP     HTTPConfig               `yaml:"http"`
	Postgres db.PostgresConfig        `yaml:"postgres"`
	Redis    redisclient.Config       `yaml:"redis"`
	Metrics  MetricsConfig            `yaml:"metrics"`
	Otel     observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		Survey: SurveyConfig{
			Medium:         MediumFile,
			DataFile:       "data/survey-results.json",
			SQLitePath:     "data/survey.db",
			DocumentName:   "survey-results",
			WriteTimeoutMS: 5000,
		},
		HTTP: HTTPConfig{
			Port:      "3000",
			StaticDir: "public",
		},
		Postgres: db.PostgresConfig{
			Host: "localhost",
			Port: "5432",
			User: "postgres",
			Name: "survey",
		},
		Redis: redisclient.Config{
			Key:     "survey:results",
			Channel: "survey:events",
		},
		Otel: observability.OtelConfig{
			ServiceName: "survey-backend",
			SampleRatio: 1,
		},
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := envutil.String(envConfigFilePath, ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.Survey.Medium = Medium(strings.ToLower(envutil.String("SURVEY_MEDIUM", string(cfg.Survey.Medium))))
	cfg.Survey.DataFile = envutil.String("SURVEY_DATA_FILE", cfg.Survey.DataFile)
	cfg.Survey.SQLitePath = envutil.String("SQLITE_PATH", cfg.Survey.SQLitePath)
	cfg.Survey.DocumentName = envutil.String("SURVEY_DOCUMENT_NAME", cfg.Survey.DocumentName)
	cfg.Survey.WriteTimeoutMS = envutil.Int("SURVEY_WRITE_TIMEOUT_MS", cfg.Survey.WriteTimeoutMS)

	cfg.HTTP.Port = envutil.String("PORT", cfg.HTTP.Port)
	cfg.HTTP.StaticDir = envutil.String("STATIC_DIR", cfg.HTTP.StaticDir)
	cfg.HTTP.CORSAllowOrigins = envutil.List("CORS_ALLOW_ORIGINS", cfg.HTTP.CORSAllowOrigins)

	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Key = envutil.String("REDIS_KEY", cfg.Redis.Key)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if raw := envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""); raw != "" {
		cfg.Otel.Headers = observability.ParseHeaders(raw)
	}
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) validate() error {
	var errs []error
	switch c.Survey.Medium {
	case MediumFile:
		if strings.TrimSpace(c.Survey.DataFile) == "" {
			errs = append(errs, errors.New("SURVEY_DATA_FILE is required for the file medium"))
		}
	case MediumSQLite:
		if strings.TrimSpace(c.Survey.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite medium"))
		}
	case MediumPostgres:
		if strings.TrimSpace(c.Postgres.Host) == "" {
			errs = append(errs, errors.New("POSTGRES_HOST is required for the postgres medium"))
		}
	case MediumRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis medium"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported SURVEY_MEDIUM %q (want file, sqlite, postgres or redis)", c.Survey.Medium))
	}
	if c.Survey.WriteTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("SURVEY_WRITE_TIMEOUT_MS must be positive, got %d", c.Survey.WriteTimeoutMS))
	}
	if strings.TrimSpace(c.HTTP.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	return errors.Join(errs...)
}
