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
	ErrCodeInvalidJobInput ErrorCode = "INVALID_JOB_INPUT"

	ErrCodeInteractionFetchFailed ErrorCode = "INTERACTION_FETCH_FAILED"
	ErrCodeMentionSearchFailed    ErrorCode = "MENTION_SEARCH_FAILED"
	ErrCodeAuthorLookupFailed     ErrorCode = "AUTHOR_LOOKUP_FAILED"
	ErrCodeSnapshotLookupFailed   ErrorCode = "SNAPSHOT_LOOKUP_FAILED"

	ErrCodeDimensionFailed        ErrorCode = "DIMENSION_FAILED"
	ErrCodeSentimentServiceFailed ErrorCode = "SENTIMENT_SERVICE_FAILED"
	ErrCodeEntityServiceFailed    ErrorCode = "ENTITY_SERVICE_FAILED"
	ErrCodeRunTimeout             ErrorCode = "RUN_TIMEOUT"

	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeReportIndexFailed ErrorCode = "REPORT_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// Codes lists every code a worker can report to the engine.
func Codes() []ErrorCode {
	return []ErrorCode{
		ErrCodeInvalidJobInput,
		ErrCodeInteractionFetchFailed,
		ErrCodeMentionSearchFailed,
		ErrCodeAuthorLookupFailed,
		ErrCodeSnapshotLookupFailed,
		ErrCodeDimensionFailed,
		ErrCodeSentimentServiceFailed,
		ErrCodeEntityServiceFailed,
		ErrCodeRunTimeout,
		ErrCodePersistenceFailed,
		ErrCodeReportIndexFailed,
		ErrCodeNotificationSendFailed,
	}
}

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

// Unwrap exposes the underlying cause so callers can use errors.Is.
func (e *StandardError) Unwrap() error {
	return e.cause
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

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidJobInputError creates a non-retryable input validation error.
func NewInvalidJobInputError(details string) *StandardError {
	return newError(ErrCodeInvalidJobInput, "Job input validation failed", details, false, nil)
}

// NewInteractionFetchFailedError creates a retryable error for a failed interaction fetch.
func NewInteractionFetchFailedError(company string, err error) *StandardError {
	e := newError(ErrCodeInteractionFetchFailed, "Interaction fetch failed", errDetails(err), true, err)
	e.Metadata = map[string]interface{}{"company": company}
	return e
}

// NewMentionSearchFailedError creates a retryable Elasticsearch mention search error.
func NewMentionSearchFailedError(company string, err error) *StandardError {
	e := newError(ErrCodeMentionSearchFailed, "Mention search failed", errDetails(err), true, err)
	e.Metadata = map[string]interface{}{"company": company}
	return e
}

// NewAuthorLookupFailedError creates a retryable author directory error.
func NewAuthorLookupFailedError(err error) *StandardError {
	return newError(ErrCodeAuthorLookupFailed, "Author profile lookup failed", errDetails(err), true, err)
}

// NewSnapshotLookupFailedError creates a retryable follower snapshot error.
func NewSnapshotLookupFailedError(handle string, err error) *StandardError {
	return newError(ErrCodeSnapshotLookupFailed, "Follower snapshot lookup failed",
		fmt.Sprintf("handle: %s, error: %s", handle, errDetails(err)), true, err)
}

// NewDimensionFailedError creates a non-retryable error for a single analysis dimension.
func NewDimensionFailedError(dimension string, err error) *StandardError {
	return newError(ErrCodeDimensionFailed, fmt.Sprintf("Dimension '%s' failed", dimension), errDetails(err), false, err)
}

// NewSentimentServiceFailedError creates a retryable sentiment classifier error.
func NewSentimentServiceFailedError(err error) *StandardError {
	return newError(ErrCodeSentimentServiceFailed, "Sentiment classifier error", errDetails(err), true, err)
}

// NewEntityServiceFailedError creates a retryable entity extractor error.
func NewEntityServiceFailedError(err error) *StandardError {
	return newError(ErrCodeEntityServiceFailed, "Entity extractor error", errDetails(err), true, err)
}

// NewRunTimeoutError creates a retryable error for an analysis run that exceeded its deadline.
func NewRunTimeoutError(company string, timeout time.Duration) *StandardError {
	return newError(ErrCodeRunTimeout, "Analysis run timeout",
		fmt.Sprintf("company: %s, timeout: %s", company, timeout), true, nil)
}

// NewPersistenceFailedError creates a retryable result store error.
func NewPersistenceFailedError(runID string, err error) *StandardError {
	e := newError(ErrCodePersistenceFailed, "Analysis result persistence failed", errDetails(err), true, err)
	e.Metadata = map[string]interface{}{"runId": runID}
	return e
}

// NewReportIndexFailedError creates a non-retryable report indexing error. Indexing is best-effort.
func NewReportIndexFailedError(runID string, err error) *StandardError {
	e := newError(ErrCodeReportIndexFailed, "Report indexing failed", errDetails(err), false, err)
	e.Metadata = map[string]interface{}{"runId": runID}
	return e
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, errDetails(err)), true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeInteractionFetchFailed,
		ErrCodeMentionSearchFailed,
		ErrCodeAuthorLookupFailed,
		ErrCodePersistenceFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSnapshotLookupFailed,
		ErrCodeSentimentServiceFailed,
		ErrCodeEntityServiceFailed:
		return 2

	case ErrCodeRunTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "LOOKUP"):
		return "INGEST"
	case strings.Contains(codeStr, "SENTIMENT") || strings.Contains(codeStr, "ENTITY") || strings.Contains(codeStr, "DIMENSION"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "INDEX"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "OTHER"
	}
}
