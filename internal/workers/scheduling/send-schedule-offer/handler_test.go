// internal/workers/scheduling/send-schedule-offer/handler_test.go
package sendscheduleoffer

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/models"
	"renovation-workers/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.PublishFunc(ctx, params, optFns...)
}

type MockContractorSource struct {
	Contractors map[string]models.Contractor
	Err         error
}

func (m *MockContractorSource) ListContractors(_ context.Context, _ store.ContractorFilter) ([]models.Contractor, error) {
	return nil, m.Err
}

func (m *MockContractorSource) GetContractor(_ context.Context, id string) (*models.Contractor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Contractors[id]
	if !ok {
		return nil, store.ErrContractorNotFound
	}
	return &c, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:     true,
		SMSEnabled:       true,
		FromEmail:        "scheduling@renovate.test",
		SenderID:         "RENOVATE",
		ContractorSource: "postgres",
		Location:         time.UTC,
		Timeout:          30 * time.Second,
	}
}

func createTestInput() *Input {
	score := 93
	return &Input{
		ContractorID: "c-1",
		JobID:        "job-42",
		JobDate:      "2026-05-11",
		TimeBlock:    models.TimeBlockAM,
		JobAddress:   "1200 Larimer St, Denver",
		Score:        &score,
	}
}

func testContractors() *MockContractorSource {
	return &MockContractorSource{Contractors: map[string]models.Contractor{
		"c-1": {ID: "c-1", BusinessName: "Mile High Tile", Email: "crew@milehigh.test", Phone: "+13035550100"},
		"c-2": {ID: "c-2", BusinessName: "Front Range Electric", Email: "office@frontrange.test"},
	}}
}

func okSES(captured **ses.SendEmailInput) *MockSESService {
	return &MockSESService{SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		if captured != nil {
			*captured = params
		}
		return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
	}}
}

func okSNS(captured **sns.PublishInput) *MockSNSService {
	return &MockSNSService{PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		if captured != nil {
			*captured = params
		}
		return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
	}}
}

func failingSES() *MockSESService {
	return &MockSESService{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, stderrors.New("MessageRejected")
	}}
}

func failingSNS() *MockSNSService {
	return &MockSNSService{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return nil, stderrors.New("Throttling")
	}}
}

func channelStatuses(output *Output) map[string]string {
	out := make(map[string]string, len(output.Channels))
	for _, c := range output.Channels {
		out[c.Channel] = c.Status
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SendsEveryChannel(t *testing.T) {
	var email *ses.SendEmailInput
	var sms *sns.PublishInput
	handler := NewHandler(createTestConfig(), testContractors(), okSES(&email), okSNS(&sms), logger.NewTestLogger(t))
	handler.now = func() time.Time { return time.Date(2026, 5, 1, 15, 4, 5, 0, time.UTC) }

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.NotEmpty(t, output.OfferID)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "2026-05-01T15:04:05Z", output.SentAt)
	require.Len(t, output.Channels, 2)
	assert.Equal(t, ChannelResult{Channel: ChannelEmail, Status: StatusSent, MessageID: "ses-msg-1"}, output.Channels[0])
	assert.Equal(t, ChannelResult{Channel: ChannelSMS, Status: StatusSent, MessageID: "sns-msg-1"}, output.Channels[1])

	require.NotNil(t, email)
	assert.Equal(t, "scheduling@renovate.test", *email.Source)
	assert.Equal(t, []string{"crew@milehigh.test"}, email.Destination.ToAddresses)
	assert.Equal(t, "New job offer for Monday, May 11 morning", *email.Message.Subject.Data)
	assert.Contains(t, *email.Message.Body.Text.Data, "1200 Larimer St, Denver")
	assert.Contains(t, *email.Message.Body.Text.Data, "Match score: 93/100")

	require.NotNil(t, sms)
	assert.Equal(t, "+13035550100", *sms.PhoneNumber)
	assert.Contains(t, *sms.Message, "job job-42")
}

func TestHandler_Execute_ChannelSelection(t *testing.T) {
	tests := []struct {
		name         string
		config       func(*Config)
		contractorID string
		channels     []string
		status       string
		expected     map[string]string
	}{
		{
			name:         "email only",
			contractorID: "c-1",
			channels:     []string{ChannelEmail},
			status:       StatusSent,
			expected:     map[string]string{ChannelEmail: StatusSent},
		},
		{
			name:         "duplicate channels collapse",
			contractorID: "c-1",
			channels:     []string{ChannelSMS, "SMS"},
			status:       StatusSent,
			expected:     map[string]string{ChannelSMS: StatusSent},
		},
		{
			name:         "no phone skips sms",
			contractorID: "c-2",
			status:       StatusSent,
			expected:     map[string]string{ChannelEmail: StatusSent, ChannelSMS: StatusSkipped},
		},
		{
			name:         "sms disabled",
			config:       func(c *Config) { c.SMSEnabled = false },
			contractorID: "c-1",
			status:       StatusSent,
			expected:     map[string]string{ChannelEmail: StatusSent, ChannelSMS: StatusDisabled},
		},
		{
			name:         "everything disabled",
			config:       func(c *Config) { c.SMSEnabled, c.EmailEnabled = false, false },
			contractorID: "c-1",
			status:       StatusSkipped,
			expected:     map[string]string{ChannelEmail: StatusDisabled, ChannelSMS: StatusDisabled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			if tt.config != nil {
				tt.config(cfg)
			}
			sesMock, snsMock := okSES(nil), okSNS(nil)
			handler := NewHandler(cfg, testContractors(), sesMock, snsMock, logger.NewTestLogger(t))

			input := createTestInput()
			input.ContractorID = tt.contractorID
			input.Channels = tt.channels

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, tt.status, output.Status)
			assert.Equal(t, tt.expected, channelStatuses(output))
		})
	}
}

func TestHandler_Execute_NilClientsCountAsDisabled(t *testing.T) {
	handler := NewHandler(createTestConfig(), testContractors(), nil, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
	assert.Equal(t, map[string]string{ChannelEmail: StatusDisabled, ChannelSMS: StatusDisabled}, channelStatuses(output))
}

func TestHandler_Execute_PartialDelivery(t *testing.T) {
	handler := NewHandler(createTestConfig(), testContractors(), okSES(nil), failingSNS(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, output.Status)
	require.Len(t, output.Channels, 2)
	assert.Equal(t, StatusFailed, output.Channels[1].Status)
	assert.Equal(t, "Throttling", output.Channels[1].Reason)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contractors *MockContractorSource
		sesMock     *MockSESService
		snsMock     *MockSNSService
		input       func(*Input)
		code        errors.ErrorCode
	}{
		{
			name:        "every channel fails",
			contractors: testContractors(),
			sesMock:     failingSES(),
			snsMock:     failingSNS(),
			code:        errors.ErrCodeOfferSendFailed,
		},
		{
			name:        "unknown contractor",
			contractors: testContractors(),
			input:       func(in *Input) { in.ContractorID = "c-404" },
			code:        errors.ErrCodeContractorNotFound,
		},
		{
			name:        "contractor store down",
			contractors: &MockContractorSource{Err: stderrors.New("connection refused")},
			code:        errors.ErrCodeContractorFetchFailed,
		},
		{
			name:        "contractor lookup timed out",
			contractors: &MockContractorSource{Err: context.DeadlineExceeded},
			code:        errors.ErrCodeQueryTimeout,
		},
		{
			name:        "bad date",
			contractors: testContractors(),
			input:       func(in *Input) { in.JobDate = "2026-13-40" },
			code:        errors.ErrCodeInvalidSchedulingRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sesMock, snsMock := tt.sesMock, tt.snsMock
			if sesMock == nil {
				sesMock = okSES(nil)
			}
			if snsMock == nil {
				snsMock = okSNS(nil)
			}
			handler := NewHandler(createTestConfig(), tt.contractors, sesMock, snsMock, logger.NewTestLogger(t))

			input := createTestInput()
			if tt.input != nil {
				tt.input(input)
			}

			_, err := handler.Execute(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.AsStandardError(err).Code)
		})
	}
}

func TestHandler_Execute_ErrorBeforeSendingSendsNothing(t *testing.T) {
	sesMock, snsMock := okSES(nil), okSNS(nil)
	handler := NewHandler(createTestConfig(), testContractors(), sesMock, snsMock, logger.NewTestLogger(t))

	input := createTestInput()
	input.ContractorID = "c-404"
	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)
	assert.Zero(t, sesMock.calls)
	assert.Zero(t, snsMock.calls)
}

func TestHandler_Run_RejectsUnknownChannel(t *testing.T) {
	handler := NewHandler(createTestConfig(), testContractors(), okSES(nil), okSNS(nil), logger.NewTestLogger(t))

	_, err := handler.run(context.Background(), `{"contractorId":"c-1","jobId":"job-42","jobDate":"2026-05-11","timeBlock":"am","channels":["pager"]}`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.AsStandardError(err).Code)
}
