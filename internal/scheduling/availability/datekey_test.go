package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey_RoundTrip(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	keys := []string{"2026-01-01", "2026-02-28", "2028-02-29", "2026-03-08", "2026-11-01", "2026-12-31"}
	for _, loc := range []*time.Location{time.UTC, denver} {
		for _, key := range keys {
			parsed, err := ParseDateKeyIn(key, loc)
			require.NoError(t, err)
			assert.Equal(t, key, FormatDateKeyIn(parsed, loc), "%s in %s", key, loc)
		}
	}
}

func TestDateKey_SameCalendarDaySameKey(t *testing.T) {
	morning := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	night := time.Date(2026, 7, 4, 23, 59, 59, 999, time.UTC)

	assert.Equal(t, "2026-07-04", FormatDateKey(morning))
	assert.Equal(t, FormatDateKey(morning), FormatDateKey(night))
}

func TestParseDateKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "2026-13-01", "2026-02-30", "07/04/2026", "2026-7-4"} {
		_, err := ParseDateKey(key)
		assert.Error(t, err, key)
	}
}

func TestParseDateKey_DefaultsToUTC(t *testing.T) {
	parsed, err := ParseDateKey("2026-07-04")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
	assert.Equal(t, 0, parsed.Hour())

	parsed, err = ParseDateKeyIn("2026-07-04", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
}
