// internal/workers/scheduling/resolve-availability/handler_test.go
package resolveavailability

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockAvailabilitySource struct {
	Records  []models.AvailabilityRecord
	Err      error
	Requests []string
}

func (m *MockAvailabilitySource) RecordForDate(_ context.Context, contractorID, dateKey string) (*models.AvailabilityRecord, error) {
	m.Requests = append(m.Requests, contractorID+"@"+dateKey)
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := availability.NewSnapshot(m.Records...).AvailabilityForDate(contractorID, dateKey)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *MockAvailabilitySource) SnapshotForDate(_ context.Context, _ string, _ []string) (*availability.Snapshot, error) {
	return availability.NewSnapshot(m.Records...), m.Err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Location: time.UTC, Timeout: 5 * time.Second}
}

func newHandler(t *testing.T, source *MockAvailabilitySource) *Handler {
	return NewHandler(createTestConfig(), source, logger.NewTestLogger(t))
}

var records = []models.AvailabilityRecord{
	{ContractorID: "c-whole", Date: "2026-05-11", Status: models.StatusOnLeave, Notes: "family trip"},
	{ContractorID: "c-blocks", Date: "2026-05-11", Status: models.StatusBusy,
		Blocks: &models.BlockStatus{AM: models.StatusBusy, PM: models.StatusAvailable}},
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Resolution(t *testing.T) {
	tests := []struct {
		name      string
		input     Input
		status    models.AvailabilityStatus
		source    availability.Source
		available bool
		notes     string
	}{
		{"no record defaults to available", Input{"c-none", "2026-05-11", models.TimeBlockAM}, models.StatusAvailable, availability.SourceDefault, true, ""},
		{"whole day applies to every block", Input{"c-whole", "2026-05-11", models.TimeBlockEvening}, models.StatusOnLeave, availability.SourceWholeDay, false, "family trip"},
		{"block entry", Input{"c-blocks", "2026-05-11", models.TimeBlockAM}, models.StatusBusy, availability.SourceBlock, false, ""},
		{"blocks win over whole day", Input{"c-blocks", "2026-05-11", models.TimeBlockPM}, models.StatusAvailable, availability.SourceBlock, true, ""},
		{"unset block is available", Input{"c-blocks", "2026-05-11", models.TimeBlockEvening}, models.StatusAvailable, availability.SourceDefault, true, ""},
		{"other dates are unaffected", Input{"c-whole", "2026-05-12", models.TimeBlockAM}, models.StatusAvailable, availability.SourceDefault, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newHandler(t, &MockAvailabilitySource{Records: records})

			output, err := handler.Execute(context.Background(), &tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.status, output.Status)
			assert.Equal(t, tt.source, output.Source)
			assert.Equal(t, tt.available, output.IsAvailable)
			assert.Equal(t, tt.notes, output.Notes)
			assert.Equal(t, tt.input.Date, output.Date)
		})
	}
}

func TestHandler_Run_ValidatesSchema(t *testing.T) {
	source := &MockAvailabilitySource{Records: records}
	handler := newHandler(t, source)

	_, err := handler.run(context.Background(), `{"contractorId":"c-whole","date":"2026-05-11"}`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.AsStandardError(err).Code)
	assert.Empty(t, source.Requests)

	output, err := handler.run(context.Background(), `{"contractorId":"c-whole","date":"2026-05-11","timeBlock":"pm"}`)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnLeave, output.Status)
	assert.Equal(t, []string{"c-whole@2026-05-11"}, source.Requests)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		storeErr error
		expected errors.ErrorCode
	}{
		{"impossible date", Input{"c-1", "2026-13-01", models.TimeBlockAM}, nil, errors.ErrCodeInvalidSchedulingRequest},
		{"bad time block", Input{"c-1", "2026-05-11", "night"}, nil, errors.ErrCodeInputValidationFailed},
		{"store failure", Input{"c-1", "2026-05-11", models.TimeBlockAM}, stderrors.New("connection refused"), errors.ErrCodeAvailabilityFetchFailed},
		{"store timeout", Input{"c-1", "2026-05-11", models.TimeBlockAM}, context.DeadlineExceeded, errors.ErrCodeQueryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newHandler(t, &MockAvailabilitySource{Err: tt.storeErr})

			_, err := handler.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.expected, errors.AsStandardError(err).Code)
		})
	}
}
