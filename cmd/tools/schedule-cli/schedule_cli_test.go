// cmd/tools/schedule-cli/schedule_cli_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterYAML = `contractors:
  - id: c-a
    businessName: Mile High Tile
    email: crew@milehigh.test
    address: {city: Denver, state: CO, lat: 39.7392, lng: -104.9903}
    trades: [tile, flooring]
    serviceRadius: 25
    rating: {overall: 4.6}
    status: active
  - id: c-b
    businessName: Front Range Plumbing
    address: {city: Denver, state: CO}
    trades: [plumbing]
    rating: {overall: 4.0}
    status: active
  - id: c-c
    businessName: Retired Roofing
    address: {city: Denver, state: CO, lat: 39.74, lng: -104.99}
    trades: [roofing]
    rating: {overall: 5.0}
    status: inactive
availability:
  - contractorId: c-b
    date: "2026-05-11"
    status: busy
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ==========================
// rank
// ==========================

func TestRank_JSON(t *testing.T) {
	path := writeFixture(t, "roster.yaml", rosterYAML)

	out, err := execute(t, "rank", "-f", path, "--date", "2026-05-11", "--block", "am",
		"--lat", "39.7392", "--lng", "-104.9903", "-o", "json")
	require.NoError(t, err)

	var result rankResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, "2026-05-11", result.DateKey)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 2, result.Eligible)
	assert.Equal(t, 1, result.DegradedDistance)
	require.Len(t, result.Recommendations, 2)

	assert.Equal(t, "c-a", result.Recommendations[0].ContractorID)
	assert.Equal(t, 98, result.Recommendations[0].Score)
	assert.Equal(t, "c-b", result.Recommendations[1].ContractorID)
	assert.Equal(t, 36, result.Recommendations[1].Score)
	assert.False(t, result.Recommendations[1].DistanceKnown)
}

func TestRank_Table(t *testing.T) {
	path := writeFixture(t, "roster.yaml", rosterYAML)

	out, err := execute(t, "rank", "-f", path, "--date", "2026-05-11", "--lat", "39.7392", "--lng", "-104.9903")
	require.NoError(t, err)

	assert.Contains(t, out, "2026-05-11")
	assert.Contains(t, out, "Mile High Tile")
	assert.Contains(t, out, "0.0 mi")
	assert.Contains(t, out, "n/a")
	assert.NotContains(t, out, "Retired Roofing")
}

func TestRank_Filters(t *testing.T) {
	path := writeFixture(t, "roster.yaml", rosterYAML)

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"trade", []string{"--trade", "plumbing"}, []string{"c-b"}},
		{"only available", []string{"--only-available"}, []string{"c-a"}},
		{"max distance drops unknown distances", []string{"--max-distance", "10"}, []string{"c-a"}},
		{"min rating", []string{"--min-rating", "4.5"}, []string{"c-a"}},
		{"limit", []string{"-n", "1"}, []string{"c-a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"rank", "-f", path, "--date", "2026-05-11", "--lat", "39.7392", "--lng", "-104.9903", "-o", "json"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)

			var result rankResult
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			ids := make([]string, 0, len(result.Recommendations))
			for _, r := range result.Recommendations {
				ids = append(ids, r.ContractorID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestRank_UngeocodedSite(t *testing.T) {
	path := writeFixture(t, "roster.yaml", rosterYAML)

	out, err := execute(t, "rank", "-f", path, "--date", "2026-05-11", "-o", "json")
	require.NoError(t, err)

	var result rankResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.DegradedDistance)
	// 40 availability + 23 rating; no distance credit.
	assert.Equal(t, 63, result.Recommendations[0].Score)
}

func TestRank_JSONFixture(t *testing.T) {
	path := writeFixture(t, "roster.json", `{
  "contractors": [
    {"id": "c-1", "businessName": "Solo Electric", "address": {"lat": 30.2672, "lng": -97.7431},
     "trades": ["electrical"], "rating": {"overall": 3.0}, "status": "active"}
  ],
  "availability": [
    {"contractorId": "c-1", "date": "2026-05-11", "blocks": {"pm": "unavailable"}}
  ]
}`)

	out, err := execute(t, "rank", "-f", path, "--date", "2026-05-11", "--block", "pm",
		"--lat", "30.2672", "--lng", "-97.7431", "-o", "json")
	require.NoError(t, err)

	var result rankResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "unavailable", string(result.Recommendations[0].AvailabilityStatus))
	assert.Equal(t, 50, result.Recommendations[0].Score)
}

func TestRank_Errors(t *testing.T) {
	valid := writeFixture(t, "roster.yaml", rosterYAML)

	tests := []struct {
		name    string
		fixture string
		args    []string
		message string
	}{
		{"missing date", valid, nil, `required flag(s) "date" not set`},
		{"half a coordinate", valid, []string{"--date", "2026-05-11", "--lat", "39.7"}, "--lat and --lng must be given together"},
		{"bad block", valid, []string{"--date", "2026-05-11", "--block", "night"}, "unknown time block"},
		{"bad trade", valid, []string{"--date", "2026-05-11", "--trade", "welding"}, "welding"},
		{"bad output", valid, []string{"--date", "2026-05-11", "-o", "xml"}, "unknown output format"},
		{"negative max distance", valid, []string{"--date", "2026-05-11", "--max-distance=-5"}, "--max-distance must not be negative"},
		{"negative min rating", valid, []string{"--date", "2026-05-11", "--min-rating=-1"}, "--min-rating must not be negative"},
		{"bad time zone", valid, []string{"--date", "2026-05-11", "--time-zone", "Nowhere/Land"}, "time zone"},
		{
			"invalid contractor",
			writeFixture(t, "bad.yaml", "contractors:\n  - id: c-1\n    status: active\n"),
			[]string{"--date", "2026-05-11"},
			"BusinessName",
		},
		{
			"duplicate ids",
			writeFixture(t, "dup.yaml", "contractors:\n  - {id: c-1, businessName: A, status: active}\n  - {id: c-1, businessName: B, status: active}\n"),
			[]string{"--date", "2026-05-11"},
			"duplicate contractor id",
		},
		{"unsupported format", writeFixture(t, "roster.csv", "id,name\n"), []string{"--date", "2026-05-11"}, "unsupported fixture format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"rank", "-f", tt.fixture}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

// ==========================
// distance
// ==========================

func TestDistance(t *testing.T) {
	out, err := execute(t, "distance", "39.7392", "-104.9903", "39.7392", "-104.9903", "--radius", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "0.00 miles")
	assert.Contains(t, out, "within 25 mi radius: true (distance score 100.0)")
}

func TestDistance_Errors(t *testing.T) {
	_, err := execute(t, "distance", "91", "0", "0", "0")
	assert.Error(t, err)

	_, err = execute(t, "distance", "north", "0", "0", "0")
	assert.ErrorContains(t, err, "is not a number")

	_, err = execute(t, "distance", "1", "2")
	assert.Error(t, err)
}

// ==========================
// workers
// ==========================

func TestWorkers(t *testing.T) {
	out, err := execute(t, "workers")
	require.NoError(t, err)
	for _, taskType := range []string{"recommend-contractors", "resolve-availability", "score-contractor", "send-schedule-offer"} {
		assert.Contains(t, out, taskType)
	}
	assert.Contains(t, out, "OFFER_SEND_FAILED")

	_, err = execute(t, "workers", "--registry", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
