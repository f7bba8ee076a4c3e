// internal/workers/scheduling/recommend-contractors/config.go
package recommendcontractors

import (
	"time"

	"renovation-workers/internal/common/config"
	"renovation-workers/internal/scheduling/scoring"
)

type Config struct {
	Weights              scoring.Weights
	DefaultServiceRadius float64
	Location             *time.Location
	MaxItems             int
	ContractorSource     string
	Timeout              time.Duration
}

func LoadConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	return &Config{
		Weights: scoring.Weights{
			Availability: cfg.Scheduling.Weights.Availability,
			Distance:     cfg.Scheduling.Weights.Distance,
			Rating:       cfg.Scheduling.Weights.Rating,
		},
		DefaultServiceRadius: cfg.Scheduling.DefaultServiceRadiusMiles,
		Location:             loc,
		MaxItems:             cfg.Scheduling.MaxItems,
		ContractorSource:     cfg.Scheduling.ContractorSource,
		Timeout:              config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}, nil
}
