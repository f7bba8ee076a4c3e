// internal/workers/scheduling/recommend-contractors/handler.go
package recommendcontractors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"renovation-workers/internal/common/errors"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/metrics"
	"renovation-workers/internal/common/observability"
	"renovation-workers/internal/common/validation"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/scheduling/ranking"
	"renovation-workers/internal/scheduling/scoring"
	"renovation-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "recommend-contractors"
)

type Handler struct {
	config       *Config
	contractors  store.ContractorSource
	availability store.AvailabilitySource
	tracer       *observability.Tracer
	otelMetrics  *observability.Metrics
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(
	config *Config,
	contractors store.ContractorSource,
	availability store.AvailabilitySource,
	tracer *observability.Tracer,
	otelMetrics *observability.Metrics,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		contractors:  contractors,
		availability: availability,
		tracer:       tracer,
		otelMetrics:  otelMetrics,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	log := logger.ForJob(h.logger, job)
	log.Info("processing job", nil)

	start := time.Now()
	done := metrics.TrackJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		outcome := h.errorHandler.HandleJobError(context.Background(), client, job, err)
		done(outcome.Error.Code)
		h.otelMetrics.RecordJob(ctx, TaskType, "failed", time.Since(start))
		return
	}

	h.completeJob(client, job, output)
	done("")
	h.otelMetrics.RecordJob(ctx, TaskType, "completed", time.Since(start))
	log.Info("job completed", map[string]interface{}{
		"runId":    output.Summary.RunID,
		"returned": output.Summary.Returned,
		"duration": time.Since(start).Milliseconds(),
	})
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

func (h *Handler) execute(ctx context.Context, input *Input) (out *Output, err error) {
	ctx, span := h.tracer.StartSpan(ctx, TaskType,
		attribute.String("job.id", input.JobID),
		attribute.String("job.date", input.JobDate),
		attribute.String("job.time_block", string(input.TimeBlock)),
	)
	defer func() { observability.EndSpan(span, err) }()

	req, err := h.buildRequest(input)
	if err != nil {
		return nil, err
	}

	contractors, err := h.contractors.ListContractors(ctx, store.ContractorFilter{
		Status: models.ContractorStatusActive,
		Trades: effectiveTrades(req, input.Filters),
	})
	if err != nil {
		return nil, h.storeError(ctx, "list contractors", err, func(err error) *errors.StandardError {
			return errors.NewContractorFetchFailedError(h.config.ContractorSource, err)
		})
	}

	dateKey := availability.FormatDateKeyIn(req.JobDate, h.config.Location)

	ids := make([]string, 0, len(contractors))
	for _, c := range contractors {
		ids = append(ids, c.ID)
	}
	snapshot, err := h.availability.SnapshotForDate(ctx, dateKey, ids)
	if err != nil {
		return nil, h.storeError(ctx, "snapshot availability", err, func(err error) *errors.StandardError {
			return errors.NewAvailabilityFetchFailedError(dateKey, err)
		})
	}

	engine, err := scoring.NewEngine(
		availability.NewResolver(snapshot, availability.WithLocation(h.config.Location)),
		scoring.WithWeights(h.config.Weights),
		scoring.WithDefaultServiceRadius(h.config.DefaultServiceRadius),
	)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	recs, stats, err := ranking.NewRanker(engine).RankWithStats(contractors, req, input.Filters)
	if err != nil {
		return nil, errors.NewInvalidSchedulingRequestError(err)
	}

	maxItems := h.config.MaxItems
	if input.MaxItems > 0 {
		maxItems = input.MaxItems
	}
	recs = ranking.Limit(recs, maxItems)

	summary := Summary{
		RunID:            uuid.New().String(),
		JobID:            input.JobID,
		DateKey:          dateKey,
		TimeBlock:        req.TimeBlock,
		Candidates:       stats.Candidates,
		Eligible:         stats.Eligible,
		Ranked:           stats.Ranked,
		Returned:         len(recs),
		DegradedDistance: stats.DegradedDistance,
		HasCandidates:    len(recs) > 0,
	}
	if len(recs) > 0 {
		summary.TopContractorID = recs[0].ContractorID
		summary.TopScore = recs[0].Score
	}

	h.recordRun(ctx, summary, recs)
	span.SetAttributes(
		attribute.String("run.id", summary.RunID),
		attribute.Int("run.candidates", summary.Candidates),
		attribute.Int("run.returned", summary.Returned),
	)

	return &Output{Recommendations: recs, Summary: summary}, nil
}

func (h *Handler) buildRequest(input *Input) (models.SchedulingRequest, error) {
	jobDate, err := availability.ParseDateKeyIn(input.JobDate, h.config.Location)
	if err != nil {
		return models.SchedulingRequest{}, errors.NewInvalidSchedulingRequestError(err)
	}
	req := models.SchedulingRequest{
		JobID:          input.JobID,
		JobDate:        jobDate,
		TimeBlock:      input.TimeBlock,
		JobLocation:    input.JobLocation,
		RequiredTrades: input.RequiredTrades,
	}
	if err := req.Validate(); err != nil {
		return req, errors.NewInvalidSchedulingRequestError(err)
	}
	return req, nil
}

// effectiveTrades mirrors the ranker: a non-empty trade filter replaces the
// request's required trades.
func effectiveTrades(req models.SchedulingRequest, filters *models.RecommendationFilters) []models.Trade {
	if filters != nil && len(filters.TradeFilter) > 0 {
		return filters.TradeFilter
	}
	return req.RequiredTrades
}

func (h *Handler) storeError(ctx context.Context, op string, err error, wrap func(error) *errors.StandardError) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(op, err)
	}
	return wrap(err)
}

func (h *Handler) recordRun(ctx context.Context, summary Summary, recs []models.ContractorRecommendation) {
	metrics.RecommendationCandidates.Observe(float64(summary.Candidates))
	metrics.RecommendationsReturned.Observe(float64(summary.Returned))
	metrics.DegradedDistanceTotal.Add(float64(summary.DegradedDistance))
	if len(recs) > 0 {
		metrics.RecommendationTopScore.Observe(float64(summary.TopScore))
	}
	for _, rec := range recs {
		h.otelMetrics.RecordScore(ctx, rec.Score, string(rec.Tier))
	}

	h.logger.Info("contractors ranked", map[string]interface{}{
		"runId":            summary.RunID,
		"jobId":            summary.JobID,
		"dateKey":          summary.DateKey,
		"candidates":       summary.Candidates,
		"eligible":         summary.Eligible,
		"returned":         summary.Returned,
		"degradedDistance": summary.DegradedDistance,
		"topContractorId":  summary.TopContractorID,
	})
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
