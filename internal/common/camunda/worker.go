// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"renovation-workers/internal/common/config"
	"renovation-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// HandlerFunc adapts a plain function to JobHandler.
type HandlerFunc func(client worker.JobClient, job entities.Job)

func (f HandlerFunc) Handle(client worker.JobClient, job entities.Job) {
	f(client, job)
}

// Worker is an open Zeebe job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType using the per-worker settings.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Name(taskType).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeout":       timeout.String(),
	})

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
