// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws Zeebe jobs according to the error code policy.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Outcome is what HandleJobError will do with a job.
type Outcome struct {
	Error   *BPMNError
	Retry   bool
	Retries int
}

// Decide picks between failing the job with retries and throwing a BPMN
// error. Retries never exceed what the job has left.
func Decide(err error, jobRetries int32) Outcome {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	if bpmnErr.Retries == 0 || jobRetries <= 0 {
		return Outcome{Error: bpmnErr}
	}

	remaining := bpmnErr.Retries
	if int(jobRetries)-1 < remaining {
		remaining = int(jobRetries) - 1
	}
	return Outcome{Error: bpmnErr, Retry: true, Retries: remaining}
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Outcome {
	outcome := Decide(err, job.Retries)
	h.logError(job, AsStandardError(err), outcome)

	if outcome.Retry {
		h.failJob(ctx, client, job, outcome)
	} else {
		h.throwBPMNError(ctx, client, job, outcome.Error)
	}
	return outcome
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, outcome Outcome) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(outcome.Retries)).
		ErrorMessage(outcome.Error.Message)

	if vars, err := json.Marshal(outcome.Error.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure(job, err)
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure(job, err)
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure(job, err)
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, outcome Outcome) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    outcome.Error.Code,
		"message":          outcome.Error.Message,
		"details":          stdErr.Details,
		"retry":            outcome.Retry,
		"retries":          outcome.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}

func (h *ErrorHandler) logSendFailure(job entities.Job, err error) {
	h.logger.Error("failed to report job error", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}
