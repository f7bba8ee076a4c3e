// internal/models/scheduling.go
package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSchedulingRequest = errors.New("invalid scheduling request")

// SchedulingRequest describes one labor slot to fill. It is immutable input to
// a single ranking call.
type SchedulingRequest struct {
	JobID          string    `json:"jobId,omitempty"`
	JobDate        time.Time `json:"jobDate"`
	TimeBlock      TimeBlock `json:"timeBlock"`
	JobLocation    *Address  `json:"jobLocation"`
	RequiredTrades []Trade   `json:"requiredTrades,omitempty"`
}

// Validate rejects structurally invalid requests. A job location that exists
// but was never geocoded is valid; it degrades distance scoring instead.
func (r SchedulingRequest) Validate() error {
	if r.JobLocation == nil {
		return fmt.Errorf("%w: job location is required", ErrInvalidSchedulingRequest)
	}
	if r.JobDate.IsZero() {
		return fmt.Errorf("%w: job date is required", ErrInvalidSchedulingRequest)
	}
	if !r.TimeBlock.IsValid() {
		return fmt.Errorf("%w: unknown time block %q", ErrInvalidSchedulingRequest, r.TimeBlock)
	}
	for _, t := range r.RequiredTrades {
		if !t.IsValid() {
			return fmt.Errorf("%w: unknown trade %q", ErrInvalidSchedulingRequest, t)
		}
	}
	return nil
}

// RecommendationFilters are optional ranking constraints. A nil pointer or
// empty slice means no constraint.
type RecommendationFilters struct {
	MinRating     *float64 `json:"minRating,omitempty"`
	MaxDistance   *float64 `json:"maxDistance,omitempty"`
	TradeFilter   []Trade  `json:"tradeFilter,omitempty"`
	OnlyAvailable bool     `json:"onlyAvailable,omitempty"`
}

// ScoreBreakdown holds the weighted (post-multiplication) sub-scores. Their
// sum equals the composite score before rounding.
type ScoreBreakdown struct {
	AvailabilityScore float64 `json:"availabilityScore"`
	DistanceScore     float64 `json:"distanceScore"`
	RatingScore       float64 `json:"ratingScore"`
}

func (b ScoreBreakdown) Total() float64 {
	return b.AvailabilityScore + b.DistanceScore + b.RatingScore
}

// ContractorRecommendation is one ranked candidate. It is built once per
// ranking call and never mutated afterwards.
type ContractorRecommendation struct {
	ContractorID          string             `json:"contractorId"`
	Contractor            Contractor         `json:"contractor"`
	Score                 int                `json:"score"`
	Distance              float64            `json:"distance"`
	DistanceKnown         bool               `json:"distanceKnown"`
	Rating                float64            `json:"rating"`
	Tier                  RatingTier         `json:"tier"`
	AvailabilityStatus    AvailabilityStatus `json:"availabilityStatus"`
	IsWithinServiceRadius bool               `json:"isWithinServiceRadius"`
	Breakdown             ScoreBreakdown     `json:"breakdown"`
}

// RatingTier is a display bucket derived from the overall rating. It plays no
// part in ranking.
type RatingTier string

const (
	TierElite    RatingTier = "elite"
	TierPro      RatingTier = "pro"
	TierStandard RatingTier = "standard"
)

const (
	eliteTierMinRating = 4.5
	proTierMinRating   = 3.5
)

func TierForRating(overall float64) RatingTier {
	switch {
	case overall >= eliteTierMinRating:
		return TierElite
	case overall >= proTierMinRating:
		return TierPro
	default:
		return TierStandard
	}
}
