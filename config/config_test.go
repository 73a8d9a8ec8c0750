package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/config"
)

var allEnv = []string{
	config.EnvHTTPAddr, config.EnvStorage, config.EnvPostgresDSN, config.EnvPostgresDriver,
	config.EnvCORSOrigins, config.EnvRepairSchedule, config.EnvLogLevel, config.EnvStrictCounters,
	config.EnvObservabilityEnabled, config.EnvOTLPEndpoint, config.EnvServiceName,
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range allEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_Load_Defaults(t *testing.T) {
	// arrange
	clearEnv(t)

	// act
	cfg, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func Test_Load_YAMLThenEnvFileThenEnvironment(t *testing.T) {
	// arrange
	clearEnv(t)
	yamlPath := writeFile(t, "library.yaml", `
http:
  addr: ":9090"
storage: postgres
postgres:
  dsn: postgres://yaml
  driver: sqlx
cors:
  origins: ["https://library.example"]
repair:
  schedule: "@hourly"
log:
  level: debug
  console: true
`)
	envPath := writeFile(t, "test.env", "LIBRARY_POSTGRES_DSN=postgres://dotenv\nLIBRARY_STRICT_COUNTERS=true\n")
	t.Setenv(config.EnvHTTPAddr, ":7070")
	t.Setenv(config.EnvCORSOrigins, "https://a.example, https://b.example")

	// act
	cfg, err := config.Load(yamlPath, envPath)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, config.StoragePostgres, cfg.Storage)
	assert.Equal(t, config.DriverSQLX, cfg.Postgres.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
	assert.Equal(t, "postgres://dotenv", cfg.Postgres.DSN)
	assert.True(t, cfg.StrictCounters)
	assert.Equal(t, "@hourly", cfg.Repair.Schedule)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.NoError(t, cfg.Validate())
}

func Test_Load_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	// arrange
	clearEnv(t)
	t.Setenv(config.EnvLogLevel, "warn")
	envPath := writeFile(t, "test.env", "LIBRARY_LOG_LEVEL=debug\n")

	// act
	cfg, err := config.Load("", envPath)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func Test_Load_Fails(t *testing.T) {
	t.Run("missing yaml file", func(t *testing.T) {
		clearEnv(t)

		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.ErrorIs(t, err, config.ErrReadingConfigFailed)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "bad.yaml", "http: [unclosed")

		_, err := config.Load(path)

		assert.ErrorIs(t, err, config.ErrReadingConfigFailed)
	})

	t.Run("malformed strict flag", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(config.EnvStrictCounters, "sometimes")

		_, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))

		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func Test_Validate_RejectsUnusableSettings(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{name: "unknown storage", mutate: func(cfg *config.Config) { cfg.Storage = "sqlite" }},
		{name: "postgres without dsn", mutate: func(cfg *config.Config) { cfg.Storage = config.StoragePostgres }},
		{name: "unknown driver", mutate: func(cfg *config.Config) {
			cfg.Storage = config.StoragePostgres
			cfg.Postgres.DSN = "postgres://x"
			cfg.Postgres.Driver = "odbc"
		}},
		{name: "empty http address", mutate: func(cfg *config.Config) { cfg.HTTP.Addr = "" }},
		{name: "malformed cron schedule", mutate: func(cfg *config.Config) { cfg.Repair.Schedule = "every tuesday" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			cfg := config.Default()
			tc.mutate(&cfg)

			// act
			err := cfg.Validate()

			// assert
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func Test_Validate_AcceptsCronSchedules(t *testing.T) {
	for _, schedule := range []string{"*/15 * * * *", "@every 10m", "0 3 * * *"} {
		cfg := config.Default()
		cfg.Repair.Schedule = schedule

		assert.NoError(t, cfg.Validate(), schedule)
	}
}

func Test_Load_OTLPEndpointEnablesObservability(t *testing.T) {
	// arrange
	clearEnv(t)
	t.Setenv(config.EnvOTLPEndpoint, "http://collector:4317")
	t.Setenv(config.EnvServiceName, "library-staging")

	// act
	cfg, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))

	// assert
	require.NoError(t, err)
	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, "http://collector:4317", cfg.Observability.Endpoint)
	assert.Equal(t, "library-staging", cfg.Observability.ServiceName)
}

func Test_Load_ObservabilitySwitch(t *testing.T) {
	// arrange
	clearEnv(t)
	t.Setenv(config.EnvObservabilityEnabled, "true")

	// act
	cfg, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))

	// assert
	require.NoError(t, err)
	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, config.Default().Observability.Endpoint, cfg.Observability.Endpoint)
	assert.NoError(t, cfg.Validate())
}

func Test_Load_RejectsMalformedObservabilitySwitch(t *testing.T) {
	// arrange
	clearEnv(t)
	t.Setenv(config.EnvObservabilityEnabled, "sometimes")

	// act
	_, err := config.Load("", filepath.Join(t.TempDir(), "missing.env"))

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_Validate_ObservabilityNeedsEndpoint(t *testing.T) {
	// arrange
	cfg := config.Default()
	cfg.Observability = config.Observability{Enabled: true}

	// act
	err := cfg.Validate()

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
