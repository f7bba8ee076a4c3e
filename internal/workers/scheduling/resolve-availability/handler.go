// internal/workers/scheduling/resolve-availability/handler.go
package resolveavailability

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/metrics"
	"renovation-workers/internal/common/validation"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "resolve-availability"
)

type Handler struct {
	config       *Config
	availability store.AvailabilitySource
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, availability store.AvailabilitySource, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		availability: availability,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
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
	if input.ContractorID == "" {
		return nil, errors.NewInputValidationFailedError("contractorId is required")
	}
	if !input.TimeBlock.IsValid() {
		return nil, errors.NewInputValidationFailedError("unknown time block " + string(input.TimeBlock))
	}
	date, err := availability.ParseDateKeyIn(input.Date, h.config.Location)
	if err != nil {
		return nil, errors.NewInvalidSchedulingRequestError(err)
	}
	dateKey := availability.FormatDateKeyIn(date, h.config.Location)

	start := time.Now()
	record, err := h.availability.RecordForDate(ctx, input.ContractorID, dateKey)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewQueryTimeoutError("availability record", err)
		}
		return nil, errors.NewAvailabilityFetchFailedError(dateKey, err)
	}

	res := availability.Resolution{Status: models.StatusAvailable, DateKey: dateKey, Source: availability.SourceDefault}
	output := &Output{
		ContractorID: input.ContractorID,
		Date:         dateKey,
		TimeBlock:    input.TimeBlock,
	}
	if record != nil {
		res = availability.ResolveRecord(*record, input.TimeBlock, dateKey)
		output.Notes = record.Notes
	}
	output.Status = res.Status
	output.Source = res.Source
	output.IsAvailable = res.Status == models.StatusAvailable

	h.logger.Debug("availability resolved", map[string]interface{}{
		"contractorId": input.ContractorID,
		"dateKey":      dateKey,
		"timeBlock":    input.TimeBlock,
		"status":       res.Status,
		"source":       res.Source,
		"lookupMs":     time.Since(start).Milliseconds(),
	})
	return output, nil
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
