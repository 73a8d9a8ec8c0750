package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"

	EnvHTTPAddr       = "LIBRARY_HTTP_ADDR"
	EnvStorage        = "LIBRARY_STORAGE"
	EnvPostgresDSN    = "LIBRARY_POSTGRES_DSN"
	EnvPostgresDriver = "LIBRARY_POSTGRES_DRIVER"
	EnvCORSOrigins    = "CORS_ORIGINS"
	EnvRepairSchedule = "LIBRARY_REPAIR_SCHEDULE"
	EnvLogLevel       = "LIBRARY_LOG_LEVEL"
	EnvStrictCounters = "LIBRARY_STRICT_COUNTERS"

	EnvObservabilityEnabled = "LIBRARY_OBSERVABILITY_ENABLED"
	EnvOTLPEndpoint         = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvServiceName          = "OTEL_SERVICE_NAME"

	defaultEnvFile      = ".env"
	defaultOTLPEndpoint = "localhost:4317"
	defaultServiceName  = "library-loans"
)

var (
	// ErrReadingConfigFailed is returned when the YAML file cannot be read or parsed.
	ErrReadingConfigFailed = errors.New("reading config failed")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the complete service configuration.
type Config struct {
	HTTP           HTTPConfig     `yaml:"http"`
	Storage        string         `yaml:"storage"`
	Postgres       PostgresConfig `yaml:"postgres"`
	CORS           CORSConfig     `yaml:"cors"`
	Repair         RepairConfig   `yaml:"repair"`
	Log            LogConfig      `yaml:"log"`
	Observability  Observability  `yaml:"observability"`
	StrictCounters bool           `yaml:"strictCounters"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

// CORSConfig lists the allowed origins. When empty, local development origins are allowed.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// RepairConfig holds the cron schedule of the counter repair job. An empty schedule disables the job.
type RepairConfig struct {
	Schedule string `yaml:"schedule"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Observability switches OTLP export of traces, metrics, and logs. Setting OTEL_EXPORTER_OTLP_ENDPOINT
// enables it as well. An endpoint without scheme or with http:// is dialed without TLS.
type Observability struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080"},
		Storage:  StorageMemory,
		Postgres: PostgresConfig{Driver: DriverPGX},
		Log:      LogConfig{Level: "info"},
		Observability: Observability{
			Endpoint:    defaultOTLPEndpoint,
			ServiceName: defaultServiceName,
		},
	}
}

// Load resolves the configuration from defaults, the YAML file at path (skipped when path is empty),
// the given .env files (".env" when none are given; missing files are skipped), and the environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadingConfigFailed, err)
		}

		if err = yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{defaultEnvFile}
	}

	for _, envFile := range envFiles {
		// godotenv never overrides variables that are already set in the environment
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTP.Addr, EnvHTTPAddr)
	setString(&c.Storage, EnvStorage)
	setString(&c.Postgres.DSN, EnvPostgresDSN)
	setString(&c.Postgres.Driver, EnvPostgresDriver)
	setString(&c.Repair.Schedule, EnvRepairSchedule)
	setString(&c.Log.Level, EnvLogLevel)

	setString(&c.Observability.ServiceName, EnvServiceName)

	if raw := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); raw != "" {
		c.Observability.Endpoint = raw
		c.Observability.Enabled = true
	}

	if raw := strings.TrimSpace(os.Getenv(EnvCORSOrigins)); raw != "" {
		c.CORS.Origins = splitList(raw)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvStrictCounters)); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvStrictCounters, err)
		}

		c.StrictCounters = strict
	}

	if raw := strings.TrimSpace(os.Getenv(EnvObservabilityEnabled)); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvObservabilityEnabled, err)
		}

		c.Observability.Enabled = enabled
	}

	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: storage %q needs %s", ErrInvalidConfig, StoragePostgres, EnvPostgresDSN)
		}

		switch c.Postgres.Driver {
		case DriverPGX, DriverSQL, DriverSQLX:
		default:
			return fmt.Errorf("%w: unknown postgres driver %q", ErrInvalidConfig, c.Postgres.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http address must not be empty", ErrInvalidConfig)
	}

	if c.Observability.Enabled && c.Observability.Endpoint == "" {
		return fmt.Errorf("%w: observability needs an OTLP endpoint", ErrInvalidConfig)
	}

	if c.Repair.Schedule != "" {
		if _, err := cron.ParseStandard(c.Repair.Schedule); err != nil {
			return fmt.Errorf("%w: repair schedule: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

func setString(target *string, env string) {
	if raw := strings.TrimSpace(os.Getenv(env)); raw != "" {
		*target = raw
	}
}

func splitList(raw string) []string {
	items := make([]string, 0)

	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}
