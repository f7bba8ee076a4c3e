// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidSchedulingRequest ErrorCode = "INVALID_SCHEDULING_REQUEST"
	ErrCodeInputValidationFailed    ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeCoordinatesUnavailable ErrorCode = "COORDINATES_UNAVAILABLE"
	ErrCodeInvalidCoordinate      ErrorCode = "INVALID_COORDINATE"

	ErrCodeContractorFetchFailed   ErrorCode = "CONTRACTOR_FETCH_FAILED"
	ErrCodeContractorNotFound      ErrorCode = "CONTRACTOR_NOT_FOUND"
	ErrCodeAvailabilityFetchFailed ErrorCode = "AVAILABILITY_FETCH_FAILED"
	ErrCodeQueryTimeout            ErrorCode = "QUERY_TIMEOUT"

	ErrCodeOfferSendFailed ErrorCode = "OFFER_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after attaching key/value.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidSchedulingRequestError rejects a request that cannot be ranked at all.
func NewInvalidSchedulingRequestError(err error) *StandardError {
	return newError(ErrCodeInvalidSchedulingRequest, "Scheduling request is structurally invalid", err.Error(), false, err)
}

// NewInputValidationFailedError reports job variables that failed schema validation.
func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job input failed validation", details, false, nil)
}

func NewCoordinatesUnavailableError(subject string) *StandardError {
	return newError(ErrCodeCoordinatesUnavailable, "Location is not geocoded", subject, false, nil)
}

func NewInvalidCoordinateError(err error) *StandardError {
	return newError(ErrCodeInvalidCoordinate, "Coordinate out of range", err.Error(), false, err)
}

// NewContractorFetchFailedError creates a retryable contractor store error.
func NewContractorFetchFailedError(source string, err error) *StandardError {
	return newError(ErrCodeContractorFetchFailed, "Failed to load contractors",
		fmt.Sprintf("source: %s, error: %s", source, err.Error()), true, err)
}

func NewContractorNotFoundError(contractorID string) *StandardError {
	return newError(ErrCodeContractorNotFound, "Contractor not found",
		fmt.Sprintf("contractorId: %s", contractorID), false, nil)
}

// NewAvailabilityFetchFailedError creates a retryable availability store error.
func NewAvailabilityFetchFailedError(dateKey string, err error) *StandardError {
	return newError(ErrCodeAvailabilityFetchFailed, "Failed to load contractor availability",
		fmt.Sprintf("date: %s, error: %s", dateKey, err.Error()), true, err)
}

func NewQueryTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryTimeout, "Data source timeout",
		fmt.Sprintf("operation: %s", operation), true, err)
}

// NewOfferSendFailedError creates a retryable notification error.
func NewOfferSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeOfferSendFailed, "Failed to send schedule offer",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the scheduling process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSchedulingRequest: "INVALID_SCHEDULING_REQUEST",
	ErrCodeInputValidationFailed:    "INVALID_SCHEDULING_REQUEST",
	ErrCodeCoordinatesUnavailable:   "COORDINATES_UNAVAILABLE",
	ErrCodeInvalidCoordinate:        "COORDINATES_UNAVAILABLE",
	ErrCodeContractorFetchFailed:    "CONTRACTOR_FETCH_FAILED",
	ErrCodeContractorNotFound:       "CONTRACTOR_NOT_FOUND",
	ErrCodeAvailabilityFetchFailed:  "AVAILABILITY_FETCH_FAILED",
	ErrCodeQueryTimeout:             "DATA_SOURCE_TIMEOUT",
	ErrCodeOfferSendFailed:          "OFFER_SEND_FAILED",
}

// GetRetryCount returns the retry budget for a code. Zero means the error is
// thrown to the process instead of retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContractorFetchFailed,
		ErrCodeAvailabilityFetchFailed,
		ErrCodeOfferSendFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain, or wraps err as an
// internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "COORDINATE"):
		return "GEO"
	case strings.Contains(codeStr, "CONTRACTOR"):
		return "CONTRACTOR"
	case strings.Contains(codeStr, "AVAILABILITY"):
		return "AVAILABILITY"
	case strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "OFFER"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
