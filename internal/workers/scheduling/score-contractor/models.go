// internal/workers/scheduling/score-contractor/models.go
package scorecontractor

import "renovation-workers/internal/models"

// Input scores either an inline contractor or one looked up by ContractorID.
type Input struct {
	ContractorID   string             `json:"contractorId,omitempty"`
	Contractor     *models.Contractor `json:"contractor,omitempty"`
	JobID          string             `json:"jobId,omitempty"`
	JobDate        string             `json:"jobDate"` // YYYY-MM-DD
	TimeBlock      models.TimeBlock   `json:"timeBlock"`
	JobLocation    *models.Address    `json:"jobLocation"`
	RequiredTrades []models.Trade     `json:"requiredTrades,omitempty"`
}

type Output struct {
	Recommendation models.ContractorRecommendation `json:"recommendation"`
	Eligible       bool                            `json:"eligible"`
	Ineligibility  []string                        `json:"ineligibility,omitempty"`
}

// Ineligibility reasons.
const (
	ReasonNotActive     = "contractor_not_active"
	ReasonTradeMismatch = "trade_mismatch"
)
