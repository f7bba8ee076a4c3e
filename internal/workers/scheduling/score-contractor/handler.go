// internal/workers/scheduling/score-contractor/handler.go
package scorecontractor

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/metrics"
	"renovation-workers/internal/common/validation"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/scheduling/scoring"
	"renovation-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-contractor"
)

type Handler struct {
	config       *Config
	contractors  store.ContractorSource
	availability store.AvailabilitySource
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, contractors store.ContractorSource, availability store.AvailabilitySource, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		contractors:  contractors,
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
	jobDate, err := availability.ParseDateKeyIn(input.JobDate, h.config.Location)
	if err != nil {
		return nil, errors.NewInvalidSchedulingRequestError(err)
	}
	req := models.SchedulingRequest{
		JobID:          input.JobID,
		JobDate:        jobDate,
		TimeBlock:      input.TimeBlock,
		JobLocation:    input.JobLocation,
		RequiredTrades: input.RequiredTrades,
	}
	if err := req.Validate(); err != nil {
		return nil, errors.NewInvalidSchedulingRequestError(err)
	}

	contractor, err := h.loadContractor(ctx, input)
	if err != nil {
		return nil, err
	}

	dateKey := availability.FormatDateKeyIn(jobDate, h.config.Location)
	snapshot := availability.NewSnapshot()
	record, err := h.availability.RecordForDate(ctx, contractor.ID, dateKey)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewQueryTimeoutError("availability record", err)
		}
		return nil, errors.NewAvailabilityFetchFailedError(dateKey, err)
	}
	if record != nil {
		snapshot.Add(*record)
	}

	engine, err := scoring.NewEngine(
		availability.NewResolver(snapshot, availability.WithLocation(h.config.Location)),
		scoring.WithWeights(h.config.Weights),
		scoring.WithDefaultServiceRadius(h.config.DefaultServiceRadius),
	)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	output := &Output{Recommendation: engine.Score(*contractor, req), Eligible: true}
	if !contractor.IsActive() {
		output.Eligible = false
		output.Ineligibility = append(output.Ineligibility, ReasonNotActive)
	}
	if len(req.RequiredTrades) > 0 && !contractor.HasAnyTrade(req.RequiredTrades) {
		output.Eligible = false
		output.Ineligibility = append(output.Ineligibility, ReasonTradeMismatch)
	}

	h.logger.Info("contractor scored", map[string]interface{}{
		"contractorId": contractor.ID,
		"score":        output.Recommendation.Score,
		"eligible":     output.Eligible,
	})
	return output, nil
}

func (h *Handler) loadContractor(ctx context.Context, input *Input) (*models.Contractor, error) {
	if input.Contractor != nil {
		return input.Contractor, nil
	}
	if input.ContractorID == "" {
		return nil, errors.NewInputValidationFailedError("contractorId or contractor is required")
	}

	contractor, err := h.contractors.GetContractor(ctx, input.ContractorID)
	switch {
	case err == nil:
		return contractor, nil
	case stderrors.Is(err, store.ErrContractorNotFound):
		return nil, errors.NewContractorNotFoundError(input.ContractorID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("get contractor", err)
	default:
		return nil, errors.NewContractorFetchFailedError(h.config.ContractorSource, err)
	}
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
