// internal/workers/scheduling/recommend-contractors/models.go
package recommendcontractors

import "renovation-workers/internal/models"

type Input struct {
	JobID          string                        `json:"jobId,omitempty"`
	JobDate        string                        `json:"jobDate"` // YYYY-MM-DD
	TimeBlock      models.TimeBlock              `json:"timeBlock"`
	JobLocation    *models.Address               `json:"jobLocation"`
	RequiredTrades []models.Trade                `json:"requiredTrades,omitempty"`
	Filters        *models.RecommendationFilters `json:"filters,omitempty"`
	MaxItems       int                           `json:"maxItems,omitempty"`
}

type Output struct {
	Recommendations []models.ContractorRecommendation `json:"recommendations"`
	Summary         Summary                           `json:"summary"`
}

// Summary describes one ranking run for the process and for operators.
type Summary struct {
	RunID            string           `json:"runId"`
	JobID            string           `json:"jobId,omitempty"`
	DateKey          string           `json:"dateKey"`
	TimeBlock        models.TimeBlock `json:"timeBlock"`
	Candidates       int              `json:"candidates"`
	Eligible         int              `json:"eligible"`
	Ranked           int              `json:"ranked"`
	Returned         int              `json:"returned"`
	DegradedDistance int              `json:"degradedDistance"`
	TopContractorID  string           `json:"topContractorId,omitempty"`
	TopScore         int              `json:"topScore"`
	HasCandidates    bool             `json:"hasCandidates"`
}
