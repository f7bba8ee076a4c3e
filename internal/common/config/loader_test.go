package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: renovation
    user: scheduler
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "contractors", cfg.Database.Elasticsearch.ContractorIndex)
	assert.Equal(t, WeightsConfig{Availability: 0.40, Distance: 0.35, Rating: 0.25}, cfg.Scheduling.Weights)
	assert.Equal(t, 30.0, cfg.Scheduling.DefaultServiceRadiusMiles)
	assert.Equal(t, ContractorSourcePostgres, cfg.Scheduling.ContractorSource)
	assert.Equal(t, 10, cfg.Scheduling.MaxItems)
	assert.Equal(t, ":8080", cfg.Observability.MetricsAddress)

	loc, err := cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")

	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
database:
  postgres:
    host: db
    database: renovation
    user: scheduler
workers:
  recommend-contractors:
    enabled: true
    timeout: 15000
`))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)

	wcfg := GetWorkerConfig(cfg, "recommend-contractors")
	assert.Equal(t, 15000, wcfg.Timeout)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 3, wcfg.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "recommend-contractors"))
	assert.True(t, IsWorkerEnabled(cfg, "unconfigured"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"unknown contractor source", "scheduling:\n  contractor_source: mongo\n"},
		{"elasticsearch without addresses", "scheduling:\n  contractor_source: elasticsearch\n"},
		{"bad time zone", "scheduling:\n  time_zone: Mars/Olympus\n"},
		{"negative weight", "scheduling:\n  weights:\n    availability: -1\n    distance: 1\n    rating: 1\n"},
		{"cache without redis", "scheduling:\n  availability_cache_ttl: 1000\n"},
		{"email without sender", "notifications:\n  aws:\n    region: us-east-1\n  email:\n    enabled: true\n"},
		{"tracing without endpoint", "observability:\n  tracing:\n    enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, minimalConfig+tt.extra))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  postgres:\n    host: db\n"))
	assert.ErrorContains(t, err, "camunda.broker_address")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
