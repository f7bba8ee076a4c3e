package scoring

import (
	"math"
	"testing"
	"time"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/scheduling/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fixtures
// ==========================

var jobSite = models.Address{Street: "1200 Larimer St", City: "Denver", State: "CO"}.WithCoordinates(39.7392, -104.9903)

var jobDate = time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

// northOf returns an address the given number of miles due north of the job site.
func northOf(miles float64) models.Address {
	degrees := miles / (geo.EarthRadiusMiles * math.Pi / 180)
	return models.Address{City: "Denver", State: "CO"}.WithCoordinates(*jobSite.Lat+degrees, *jobSite.Lng)
}

func contractor(id string, addr models.Address, overall float64) models.Contractor {
	return models.Contractor{
		ID:            id,
		BusinessName:  id + " Renovations",
		Address:       addr,
		Trades:        []models.Trade{models.TradeCarpentry},
		ServiceRadius: 30,
		Rating:        models.Rating{Overall: overall},
		Status:        models.ContractorStatusActive,
	}
}

func request() models.SchedulingRequest {
	site := jobSite
	return models.SchedulingRequest{
		JobID:       "job-1",
		JobDate:     jobDate,
		TimeBlock:   models.TimeBlockAM,
		JobLocation: &site,
	}
}

func busyOn(id string) models.AvailabilityRecord {
	return models.AvailabilityRecord{ContractorID: id, Date: "2026-04-20", Status: models.StatusBusy}
}

func newEngine(t *testing.T, records ...models.AvailabilityRecord) *Engine {
	t.Helper()
	engine, err := NewEngine(availability.NewResolver(availability.NewSnapshot(records...)))
	require.NoError(t, err)
	return engine
}

// ==========================
// Worked examples
// ==========================

func TestScore_NearbyAvailable(t *testing.T) {
	engine := newEngine(t)

	rec := engine.Score(contractor("A", northOf(5), 4.8), request())

	assert.Equal(t, 93, rec.Score)
	assert.True(t, rec.IsWithinServiceRadius)
	assert.True(t, rec.DistanceKnown)
	assert.InDelta(t, 5.0, rec.Distance, 1e-6)
	assert.Equal(t, models.StatusAvailable, rec.AvailabilityStatus)
	assert.InDelta(t, 40.0, rec.Breakdown.AvailabilityScore, 1e-9)
	assert.InDelta(t, 29.1667, rec.Breakdown.DistanceScore, 1e-3)
	assert.InDelta(t, 24.0, rec.Breakdown.RatingScore, 1e-9)
	assert.Equal(t, models.TierElite, rec.Tier)
}

func TestScore_FarBusy(t *testing.T) {
	engine := newEngine(t, busyOn("B"))

	rec := engine.Score(contractor("B", northOf(25), 4.8), request())

	assert.Equal(t, 46, rec.Score)
	assert.Equal(t, models.StatusBusy, rec.AvailabilityStatus)
	assert.InDelta(t, 16.0, rec.Breakdown.AvailabilityScore, 1e-9)
	assert.InDelta(t, 5.8333, rec.Breakdown.DistanceScore, 1e-3)
	assert.True(t, rec.IsWithinServiceRadius)
}

func TestScore_NoGeocode(t *testing.T) {
	engine := newEngine(t)

	rec := engine.Score(contractor("C", models.Address{City: "Denver", State: "CO"}, 5.0), request())

	assert.Equal(t, 65, rec.Score)
	assert.False(t, rec.IsWithinServiceRadius)
	assert.False(t, rec.DistanceKnown)
	assert.Zero(t, rec.Breakdown.DistanceScore)
	assert.InDelta(t, 40.0, rec.Breakdown.AvailabilityScore, 1e-9)
	assert.InDelta(t, 25.0, rec.Breakdown.RatingScore, 1e-9)
}

func TestScore_JobSiteNotGeocoded(t *testing.T) {
	engine := newEngine(t)
	req := request()
	req.JobLocation = &models.Address{City: "Denver", State: "CO"}

	rec := engine.Score(contractor("A", northOf(5), 4.8), req)

	assert.False(t, rec.DistanceKnown)
	assert.False(t, rec.IsWithinServiceRadius)
	assert.Equal(t, 64, rec.Score)
}

func TestScore_InvalidCoordinateDegrades(t *testing.T) {
	engine := newEngine(t)
	bad := models.Address{}.WithCoordinates(123.0, 10.0)

	rec := engine.Score(contractor("X", bad, 4.0), request())

	assert.False(t, rec.DistanceKnown)
	assert.False(t, rec.IsWithinServiceRadius)
	assert.Zero(t, rec.Breakdown.DistanceScore)
}

// ==========================
// Distance falloff
// ==========================

func TestScore_RadiusBoundaryExcluded(t *testing.T) {
	engine := newEngine(t)
	addr := northOf(12)

	dist, err := geo.Distance(addr.Location(), jobSite.Location())
	require.NoError(t, err)

	c := contractor("edge", addr, 3.0)
	c.ServiceRadius = dist

	rec := engine.Score(c, request())
	assert.Zero(t, rec.Breakdown.DistanceScore)
	assert.False(t, rec.IsWithinServiceRadius)
	assert.True(t, rec.DistanceKnown)
}

func TestScore_DefaultServiceRadius(t *testing.T) {
	engine := newEngine(t)
	c := contractor("A", northOf(15), 4.0)
	c.ServiceRadius = 0

	rec := engine.Score(c, request())
	assert.True(t, rec.IsWithinServiceRadius)
	assert.InDelta(t, 50*0.35, rec.Breakdown.DistanceScore, 1e-3)

	engine, err := NewEngine(nil, WithDefaultServiceRadius(10))
	require.NoError(t, err)
	rec = engine.Score(c, request())
	assert.False(t, rec.IsWithinServiceRadius)
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name   string
		miles  float64
		radius float64
		score  float64
		within bool
	}{
		{"at job site", 0, 30, 100, true},
		{"halfway", 15, 30, 50, true},
		{"at radius", 30, 30, 0, false},
		{"beyond radius", 45, 30, 0, false},
		{"zero radius", 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, within := DistanceScore(tt.miles, tt.radius)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.within, within)
		})
	}
}

// ==========================
// Sub-score mapping
// ==========================

func TestAvailabilityScore_CoversEveryStatus(t *testing.T) {
	expected := map[models.AvailabilityStatus]float64{
		models.StatusAvailable:   100,
		models.StatusBusy:        40,
		models.StatusUnavailable: 0,
		models.StatusOnLeave:     0,
	}
	for _, status := range models.AllAvailabilityStatuses {
		want, ok := expected[status]
		require.True(t, ok, "no expectation for %s", status)
		assert.Equal(t, want, AvailabilityScore(status), string(status))
	}
	assert.Zero(t, AvailabilityScore("vacation"))
}

func TestRatingScore_Clamped(t *testing.T) {
	assert.Equal(t, 0.0, RatingScore(-1))
	assert.Equal(t, 100.0, RatingScore(7))
	assert.InDelta(t, 96.0, RatingScore(4.8), 1e-9)
	assert.Equal(t, 0.0, RatingScore(math.NaN()))
}

// ==========================
// Composite invariants
// ==========================

func TestScore_BoundsAndBreakdown(t *testing.T) {
	statuses := map[string]models.AvailabilityStatus{
		"avail": models.StatusAvailable,
		"busy":  models.StatusBusy,
		"unav":  models.StatusUnavailable,
		"leave": models.StatusOnLeave,
	}

	var records []models.AvailabilityRecord
	for prefix, status := range statuses {
		if status == models.StatusAvailable {
			continue
		}
		for i := 0; i < 6; i++ {
			records = append(records, models.AvailabilityRecord{
				ContractorID: prefix + string(rune('0'+i)),
				Date:         "2026-04-20",
				Status:       status,
			})
		}
	}
	engine := newEngine(t, records...)

	for prefix := range statuses {
		for i := 0; i < 6; i++ {
			id := prefix + string(rune('0'+i))
			c := contractor(id, northOf(float64(i)*7), float64(i))
			rec := engine.Score(c, request())

			assert.GreaterOrEqual(t, rec.Score, MinScore, id)
			assert.LessOrEqual(t, rec.Score, MaxScore, id)
			assert.InDelta(t, float64(rec.Score), rec.Breakdown.Total(), 1.0, id)
		}
	}
}

func TestScore_DoesNotMutateContractor(t *testing.T) {
	engine := newEngine(t)
	c := contractor("A", northOf(5), 4.8)
	c.ServiceRadius = 0
	before := c

	rec := engine.Score(c, request())
	assert.Equal(t, before, c)
	assert.Equal(t, before, rec.Contractor)
}

func TestScore_AlternateWeights(t *testing.T) {
	engine, err := NewEngine(nil, WithWeights(Weights{Availability: 0, Distance: 0, Rating: 1}))
	require.NoError(t, err)

	near := engine.Score(contractor("near", northOf(1), 3.0), request())
	far := engine.Score(contractor("far", northOf(29), 4.0), request())

	assert.Equal(t, 60, near.Score)
	assert.Equal(t, 80, far.Score)
	assert.Zero(t, near.Breakdown.AvailabilityScore)
	assert.Zero(t, near.Breakdown.DistanceScore)
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{"negative", Weights{Availability: -0.1, Distance: 0.5, Rating: 0.6}},
		{"all zero", Weights{}},
		{"nan", Weights{Availability: math.NaN(), Distance: 0.5, Rating: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(nil, WithWeights(tt.weights))
			assert.ErrorIs(t, err, ErrInvalidWeights)
		})
	}
}
