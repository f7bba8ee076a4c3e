// internal/workers/scheduling/send-schedule-offer/config.go
package sendscheduleoffer

import (
	"time"

	"renovation-workers/internal/common/config"
)

type Config struct {
	EmailEnabled     bool
	SMSEnabled       bool
	FromEmail        string
	SenderID         string
	ContractorSource string
	Location         *time.Location
	Timeout          time.Duration
}

func LoadConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	return &Config{
		EmailEnabled:     cfg.Notifications.Email.Enabled,
		SMSEnabled:       cfg.Notifications.SMS.Enabled,
		FromEmail:        cfg.Notifications.Email.FromEmail,
		SenderID:         cfg.Notifications.SMS.SenderID,
		ContractorSource: cfg.Scheduling.ContractorSource,
		Location:         loc,
		Timeout:          config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}, nil
}
