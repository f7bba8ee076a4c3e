// Package ranking filters, scores and orders contractors for a scheduling
// request.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/scoring"
)

// ErrInvalidRequest is returned when the request cannot be ranked at all. It
// wraps models.ErrInvalidSchedulingRequest.
var ErrInvalidRequest = errors.New("cannot rank contractors")

// Scorer is satisfied by *scoring.Engine.
type Scorer interface {
	Score(contractor models.Contractor, req models.SchedulingRequest) models.ContractorRecommendation
}

var _ Scorer = (*scoring.Engine)(nil)

type Ranker struct {
	scorer Scorer
}

func NewRanker(scorer Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Stats counts how many contractors survived each stage of a ranking call.
type Stats struct {
	Candidates       int `json:"candidates"`
	Eligible         int `json:"eligible"`
	Ranked           int `json:"ranked"`
	DegradedDistance int `json:"degradedDistance"`
}

// Rank returns the recommendations for req, best first. An empty result is not
// an error.
func (r *Ranker) Rank(contractors []models.Contractor, req models.SchedulingRequest, filters *models.RecommendationFilters) ([]models.ContractorRecommendation, error) {
	recs, _, err := r.RankWithStats(contractors, req, filters)
	return recs, err
}

func (r *Ranker) RankWithStats(contractors []models.Contractor, req models.SchedulingRequest, filters *models.RecommendationFilters) ([]models.ContractorRecommendation, Stats, error) {
	stats := Stats{Candidates: len(contractors)}
	if err := req.Validate(); err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if filters == nil {
		filters = &models.RecommendationFilters{}
	}

	trades := filters.TradeFilter
	if len(trades) == 0 {
		trades = req.RequiredTrades
	}

	recs := make([]models.ContractorRecommendation, 0, len(contractors))
	for _, c := range contractors {
		if !eligible(c, trades, filters.MinRating) {
			continue
		}
		stats.Eligible++

		rec := r.scorer.Score(c, req)
		if !rec.DistanceKnown {
			stats.DegradedDistance++
		}
		if filters.MaxDistance != nil && (!rec.DistanceKnown || rec.Distance > *filters.MaxDistance) {
			continue
		}
		if filters.OnlyAvailable && rec.AvailabilityStatus != models.StatusAvailable {
			continue
		}
		recs = append(recs, rec)
	}

	Sort(recs)
	stats.Ranked = len(recs)
	return recs, stats, nil
}

func eligible(c models.Contractor, trades []models.Trade, minRating *float64) bool {
	if !c.IsActive() {
		return false
	}
	if len(trades) > 0 && !c.HasAnyTrade(trades) {
		return false
	}
	if minRating != nil && c.Rating.Overall < *minRating {
		return false
	}
	return true
}

// Sort orders recommendations by score, then distance (unknown last), then
// rating, then contractor ID.
func Sort(recs []models.ContractorRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return less(recs[i], recs[j])
	})
}

func less(a, b models.ContractorRecommendation) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.DistanceKnown != b.DistanceKnown {
		return a.DistanceKnown
	}
	if a.DistanceKnown && a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ContractorID < b.ContractorID
}

// Limit truncates recs to at most n entries. n <= 0 means no limit.
func Limit(recs []models.ContractorRecommendation, n int) []models.ContractorRecommendation {
	if n <= 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}
