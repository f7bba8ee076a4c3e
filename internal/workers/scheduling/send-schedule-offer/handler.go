// internal/workers/scheduling/send-schedule-offer/handler.go
package sendscheduleoffer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"renovation-workers/internal/common/aws"
	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/metrics"
	"renovation-workers/internal/common/validation"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-schedule-offer"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	contractors  store.ContractorSource
	sesClient    SESService
	snsClient    SNSService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, contractors store.ContractorSource, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		contractors:  contractors,
		sesClient:    sesClient,
		snsClient:    snsClient,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	log := logger.ForJob(h.logger, job)
	log.Info("processing job", nil)
	done := metrics.TrackJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		outcome := h.errorHandler.HandleJobError(context.Background(), client, job, err)
		done(outcome.Error.Code)
		return
	}

	h.completeJob(client, job, output)
	done("")
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
	result, err := validation.ValidateJobVariables(TaskType, []byte(variables))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInputValidationFailedError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputValidationFailedError(err.Error())
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	jobDate, err := availability.ParseDateKeyIn(input.JobDate, h.config.Location)
	if err != nil {
		return nil, errors.NewInvalidSchedulingRequestError(err)
	}
	if !input.TimeBlock.IsValid() {
		return nil, errors.NewInvalidSchedulingRequestError(fmt.Errorf("unknown time block %q", input.TimeBlock))
	}

	contractor, err := h.contractors.GetContractor(ctx, input.ContractorID)
	switch {
	case err == nil:
	case stderrors.Is(err, store.ErrContractorNotFound):
		return nil, errors.NewContractorNotFoundError(input.ContractorID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("get contractor", err)
	default:
		return nil, errors.NewContractorFetchFailedError(h.config.ContractorSource, err)
	}

	offerID := uuid.New().String()
	subject, body := composeOffer(contractor, input, jobDate)

	output := &Output{
		OfferID:  offerID,
		Channels: make([]ChannelResult, 0, 2),
		SentAt:   h.now().UTC().Format(time.RFC3339),
	}

	var lastErr error
	var lastChannel string
	for _, channel := range h.channels(input) {
		res, err := h.deliver(ctx, channel, contractor, subject, body)
		metrics.OffersSent.WithLabelValues(channel, res.Status).Inc()
		if err != nil {
			h.logger.Error("offer delivery failed", map[string]interface{}{
				"channel":      channel,
				"contractorId": contractor.ID,
				"error":        err,
			})
			lastErr, lastChannel = err, channel
		}
		output.Channels = append(output.Channels, res)
	}

	output.Status = overallStatus(output.Channels)
	if output.Status == StatusFailed {
		return nil, errors.NewOfferSendFailedError(lastChannel, lastErr).
			WithMetadata("contractorId", contractor.ID).
			WithMetadata("offerId", offerID)
	}

	h.logger.Info("schedule offer processed", map[string]interface{}{
		"offerId":      offerID,
		"contractorId": contractor.ID,
		"jobId":        input.JobID,
		"status":       output.Status,
	})
	return output, nil
}

// channels returns the requested channels, or every channel when none were
// requested. Duplicates are dropped.
func (h *Handler) channels(input *Input) []string {
	requested := input.Channels
	if len(requested) == 0 {
		requested = []string{ChannelEmail, ChannelSMS}
	}
	seen := make(map[string]bool, len(requested))
	out := make([]string, 0, len(requested))
	for _, c := range requested {
		c = strings.ToLower(strings.TrimSpace(c))
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (h *Handler) deliver(ctx context.Context, channel string, contractor *models.Contractor, subject, body string) (ChannelResult, error) {
	res := ChannelResult{Channel: channel}

	switch channel {
	case ChannelEmail:
		if !h.config.EmailEnabled || h.sesClient == nil {
			res.Status = StatusDisabled
			return res, nil
		}
		if contractor.Email == "" {
			res.Status, res.Reason = StatusSkipped, "no email on file"
			return res, nil
		}
		out, err := h.sesClient.SendEmail(ctx, aws.EmailInput(h.config.FromEmail, contractor.Email, subject, body))
		if err != nil {
			res.Status, res.Reason = StatusFailed, err.Error()
			return res, err
		}
		res.Status = StatusSent
		if out != nil && out.MessageId != nil {
			res.MessageID = *out.MessageId
		}
		return res, nil

	case ChannelSMS:
		if !h.config.SMSEnabled || h.snsClient == nil {
			res.Status = StatusDisabled
			return res, nil
		}
		if contractor.Phone == "" {
			res.Status, res.Reason = StatusSkipped, "no phone on file"
			return res, nil
		}
		out, err := h.snsClient.Publish(ctx, aws.SMSInput(contractor.Phone, h.config.SenderID, body))
		if err != nil {
			res.Status, res.Reason = StatusFailed, err.Error()
			return res, err
		}
		res.Status = StatusSent
		if out != nil && out.MessageId != nil {
			res.MessageID = *out.MessageId
		}
		return res, nil
	}

	res.Status, res.Reason = StatusSkipped, "unknown channel"
	return res, nil
}

func overallStatus(results []ChannelResult) string {
	var sent, failed int
	for _, r := range results {
		switch r.Status {
		case StatusSent:
			sent++
		case StatusFailed:
			failed++
		}
	}
	switch {
	case sent > 0 && failed > 0:
		return StatusPartial
	case sent > 0:
		return StatusSent
	case failed > 0:
		return StatusFailed
	default:
		return StatusSkipped
	}
}

var blockLabels = map[models.TimeBlock]string{
	models.TimeBlockAM:      "morning",
	models.TimeBlockPM:      "afternoon",
	models.TimeBlockEvening: "evening",
}

func composeOffer(contractor *models.Contractor, input *Input, jobDate time.Time) (subject, body string) {
	when := fmt.Sprintf("%s %s", jobDate.Format("Monday, January 2"), blockLabels[input.TimeBlock])
	subject = fmt.Sprintf("New job offer for %s", when)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, you have a new job offer (job %s) for %s.", contractor.BusinessName, input.JobID, when)
	if input.JobAddress != "" {
		fmt.Fprintf(&b, " Location: %s.", input.JobAddress)
	}
	if input.Score != nil {
		fmt.Fprintf(&b, " Match score: %d/100.", *input.Score)
	}
	b.WriteString(" Reply in the contractor portal to accept.")
	return subject, b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
