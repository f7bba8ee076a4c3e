// Package scoring turns a contractor and a scheduling request into a weighted
// 0-100 recommendation score.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/scheduling/geo"
)

const (
	MinScore = 0
	MaxScore = 100

	maxRating = 5.0
)

var ErrInvalidWeights = errors.New("invalid scoring weights")

// Weights scales each 0-100 sub-score before they are summed.
type Weights struct {
	Availability float64 `json:"availability" mapstructure:"availability"`
	Distance     float64 `json:"distance" mapstructure:"distance"`
	Rating       float64 `json:"rating" mapstructure:"rating"`
}

func DefaultWeights() Weights {
	return Weights{Availability: 0.40, Distance: 0.35, Rating: 0.25}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"availability": w.Availability,
		"distance":     w.Distance,
		"rating":       w.Rating,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight %v", ErrInvalidWeights, name, v)
		}
	}
	if w.Availability+w.Distance+w.Rating == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

type Engine struct {
	resolver      *availability.Resolver
	weights       Weights
	defaultRadius float64
}

type Option func(*Engine)

func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithDefaultServiceRadius overrides the radius used for contractors that have
// not set one.
func WithDefaultServiceRadius(miles float64) Option {
	return func(e *Engine) {
		if miles > 0 {
			e.defaultRadius = miles
		}
	}
}

func NewEngine(resolver *availability.Resolver, opts ...Option) (*Engine, error) {
	if resolver == nil {
		resolver = availability.NewResolver(nil)
	}
	e := &Engine{
		resolver:      resolver,
		weights:       DefaultWeights(),
		defaultRadius: models.DefaultServiceRadiusMiles,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// Score computes the recommendation for one contractor. It never fails: a
// missing or invalid coordinate on either side zeroes the distance component
// and marks the contractor outside its service radius.
func (e *Engine) Score(contractor models.Contractor, req models.SchedulingRequest) models.ContractorRecommendation {
	status := e.resolver.ResolveStatus(contractor.ID, req.JobDate, req.TimeBlock)

	jobLocation := models.UnavailableLocation()
	if req.JobLocation != nil {
		jobLocation = req.JobLocation.Location()
	}
	dist, distErr := geo.Distance(contractor.Address.Location(), jobLocation)

	radius := contractor.ServiceRadius
	if radius <= 0 {
		radius = e.defaultRadius
	}

	var distanceRaw float64
	within := false
	if distErr == nil {
		distanceRaw, within = DistanceScore(dist, radius)
	}

	overall := clampRating(contractor.Rating.Overall)

	breakdown := models.ScoreBreakdown{
		AvailabilityScore: AvailabilityScore(status) * e.weights.Availability,
		DistanceScore:     distanceRaw * e.weights.Distance,
		RatingScore:       RatingScore(overall) * e.weights.Rating,
	}

	rec := models.ContractorRecommendation{
		ContractorID:          contractor.ID,
		Contractor:            contractor,
		Score:                 composite(breakdown),
		Rating:                overall,
		Tier:                  models.TierForRating(overall),
		AvailabilityStatus:    status,
		IsWithinServiceRadius: within,
		Breakdown:             breakdown,
	}
	if distErr == nil {
		rec.Distance = dist
		rec.DistanceKnown = true
	}
	return rec
}

// AvailabilityScore maps a status onto 0-100. Statuses outside the known set
// score 0.
func AvailabilityScore(status models.AvailabilityStatus) float64 {
	switch status {
	case models.StatusAvailable:
		return 100
	case models.StatusBusy:
		return 40
	case models.StatusUnavailable:
		return 0
	case models.StatusOnLeave:
		return 0
	default:
		return 0
	}
}

// DistanceScore applies a linear falloff from 100 at the job site to 0 at the
// service radius. The radius itself is outside.
func DistanceScore(miles, radius float64) (score float64, within bool) {
	if radius <= 0 || miles < 0 || miles >= radius {
		return 0, false
	}
	return math.Max(0, 100*(1-miles/radius)), true
}

// RatingScore normalizes a 0-5 overall rating onto 0-100.
func RatingScore(overall float64) float64 {
	return clampRating(overall) / maxRating * 100
}

func clampRating(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return math.Min(maxRating, math.Max(0, r))
}

func composite(b models.ScoreBreakdown) int {
	total := math.Round(b.Total())
	if total < MinScore {
		return MinScore
	}
	if total > MaxScore {
		return MaxScore
	}
	return int(total)
}
