// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Scheduling    SchedulingConfig        `mapstructure:"scheduling"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses       []string `mapstructure:"addresses"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	ContractorIndex string   `mapstructure:"contractor_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Contractor sources accepted by scheduling.contractor_source.
const (
	ContractorSourcePostgres      = "postgres"
	ContractorSourceElasticsearch = "elasticsearch"
)

// SchedulingConfig drives the recommendation engine and its data sources.
type SchedulingConfig struct {
	Weights                      WeightsConfig `mapstructure:"weights"`
	DefaultServiceRadiusMiles    float64       `mapstructure:"default_service_radius_miles"`
	TimeZone                     string        `mapstructure:"time_zone"`
	ContractorSource             string        `mapstructure:"contractor_source"`
	AvailabilityCacheTTL         int           `mapstructure:"availability_cache_ttl"` // milliseconds, 0 disables the cache
	AvailabilityFetchConcurrency int           `mapstructure:"availability_fetch_concurrency"`
	MaxItems                     int           `mapstructure:"max_items"`
}

type WeightsConfig struct {
	Availability float64 `mapstructure:"availability"`
	Distance     float64 `mapstructure:"distance"`
	Rating       float64 `mapstructure:"rating"`
}

// Location resolves TimeZone. An empty zone is UTC.
func (s SchedulingConfig) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("scheduling.time_zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// NotificationConfig holds settings for the send-schedule-offer worker.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
}

type ObservabilityConfig struct {
	MetricsAddress string `mapstructure:"metrics_address"`
	Tracing        struct {
		Enabled        bool   `mapstructure:"enabled"`
		JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	} `mapstructure:"tracing"`
}
