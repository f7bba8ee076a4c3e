// cmd/worker-manager/workers.go
package main

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"renovation-workers/internal/common/aws"
	"renovation-workers/internal/common/camunda"
	"renovation-workers/internal/common/config"
	"renovation-workers/internal/common/database"
	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/observability"
	"renovation-workers/internal/store"

	rc "renovation-workers/internal/workers/scheduling/recommend-contractors"
	ra "renovation-workers/internal/workers/scheduling/resolve-availability"
	sc "renovation-workers/internal/workers/scheduling/score-contractor"
	sso "renovation-workers/internal/workers/scheduling/send-schedule-offer"
)

// dependencies are shared by every scheduling worker.
type dependencies struct {
	contractors  store.ContractorSource
	availability store.AvailabilitySource
	tracer       *observability.Tracer
	otelMetrics  *observability.Metrics
	ses          sso.SESService
	sns          sso.SNSService
}

func buildDependencies(
	ctx context.Context,
	cfg *config.Config,
	clients *database.Clients,
	tracer *observability.Tracer,
	otelMetrics *observability.Metrics,
	log logger.Logger,
) (*dependencies, error) {
	contractors, err := contractorSource(cfg, clients)
	if err != nil {
		return nil, err
	}

	deps := &dependencies{
		contractors:  contractors,
		availability: availabilitySource(cfg, clients, log),
		tracer:       tracer,
		otelMetrics:  otelMetrics,
	}

	n := cfg.Notifications
	if config.IsWorkerEnabled(cfg, sso.TaskType) && (n.Email.Enabled || n.SMS.Enabled) {
		awsClients, err := aws.NewClients(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		// Leave the interfaces nil for disabled channels.
		if n.Email.Enabled {
			deps.ses = awsClients.SES
		}
		if n.SMS.Enabled {
			deps.sns = awsClients.SNS
		}
	}
	return deps, nil
}

func contractorSource(cfg *config.Config, clients *database.Clients) (store.ContractorSource, error) {
	switch cfg.Scheduling.ContractorSource {
	case config.ContractorSourcePostgres:
		return store.NewPostgresContractorStore(clients.Postgres.DB), nil
	case config.ContractorSourceElasticsearch:
		if clients.Elasticsearch == nil {
			return nil, fmt.Errorf("contractor source %q needs an elasticsearch client", cfg.Scheduling.ContractorSource)
		}
		return store.NewElasticsearchContractorStore(clients.Elasticsearch.Client, cfg.Database.Elasticsearch.ContractorIndex), nil
	default:
		return nil, fmt.Errorf("unknown contractor source %q", cfg.Scheduling.ContractorSource)
	}
}

func availabilitySource(cfg *config.Config, clients *database.Clients, log logger.Logger) store.AvailabilitySource {
	var source store.AvailabilitySource = store.NewPostgresAvailabilityStore(
		clients.Postgres.DB,
		store.WithFetchConcurrency(cfg.Scheduling.AvailabilityFetchConcurrency),
	)
	if clients.Redis != nil && cfg.Scheduling.AvailabilityCacheTTL > 0 {
		source = store.NewCachedAvailabilityStore(
			source,
			clients.Redis.Client,
			config.GetDuration(cfg.Scheduling.AvailabilityCacheTTL),
			log,
		)
	}
	return source
}

// registerWorkers opens a job worker for every enabled task type.
func registerWorkers(client zbc.Client, cfg *config.Config, deps *dependencies, log logger.Logger) ([]*camunda.Worker, error) {
	handlers, err := buildHandlers(cfg, deps, log)
	if err != nil {
		return nil, err
	}

	workers := make([]*camunda.Worker, 0, len(handlers))
	for _, taskType := range []string{rc.TaskType, ra.TaskType, sc.TaskType, sso.TaskType} {
		handler, ok := handlers[taskType]
		if !ok {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		workers = append(workers, camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handler, log))
	}
	return workers, nil
}

// buildHandlers returns the handlers of enabled workers keyed by task type.
func buildHandlers(cfg *config.Config, deps *dependencies, log logger.Logger) (map[string]camunda.JobHandler, error) {
	handlers := make(map[string]camunda.JobHandler)

	if config.IsWorkerEnabled(cfg, rc.TaskType) {
		wcfg, err := rc.LoadConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rc.TaskType, err)
		}
		handlers[rc.TaskType] = rc.NewHandler(wcfg, deps.contractors, deps.availability, deps.tracer, deps.otelMetrics, log)
	}

	if config.IsWorkerEnabled(cfg, ra.TaskType) {
		wcfg, err := ra.LoadConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ra.TaskType, err)
		}
		handlers[ra.TaskType] = ra.NewHandler(wcfg, deps.availability, log)
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		wcfg, err := sc.LoadConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.TaskType, err)
		}
		handlers[sc.TaskType] = sc.NewHandler(wcfg, deps.contractors, deps.availability, log)
	}

	if config.IsWorkerEnabled(cfg, sso.TaskType) {
		wcfg, err := sso.LoadConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sso.TaskType, err)
		}
		handlers[sso.TaskType] = sso.NewHandler(wcfg, deps.contractors, deps.ses, deps.sns, log)
	}

	return handlers, nil
}
