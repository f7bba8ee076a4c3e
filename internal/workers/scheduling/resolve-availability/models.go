// internal/workers/scheduling/resolve-availability/models.go
package resolveavailability

import (
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
)

type Input struct {
	ContractorID string           `json:"contractorId"`
	Date         string           `json:"date"` // YYYY-MM-DD
	TimeBlock    models.TimeBlock `json:"timeBlock"`
}

type Output struct {
	ContractorID string                    `json:"contractorId"`
	Date         string                    `json:"date"`
	TimeBlock    models.TimeBlock          `json:"timeBlock"`
	Status       models.AvailabilityStatus `json:"status"`
	Source       availability.Source       `json:"source"`
	IsAvailable  bool                      `json:"isAvailable"`
	Notes        string                    `json:"notes,omitempty"`
}
