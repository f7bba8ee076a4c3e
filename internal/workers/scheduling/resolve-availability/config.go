// internal/workers/scheduling/resolve-availability/config.go
package resolveavailability

import (
	"time"

	"renovation-workers/internal/common/config"
)

type Config struct {
	Location *time.Location
	Timeout  time.Duration
}

func LoadConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	return &Config{
		Location: loc,
		Timeout:  config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}, nil
}
