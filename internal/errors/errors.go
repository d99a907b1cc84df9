// Package errors provides structured error types for the Aquatel job.
// All errors include a category, code, message, and retryable flag so the
// orchestrator can decide whether the next scheduled run is an adequate
// retry.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryWallet   ErrorCategory = "WALLET"
	ErrCategoryDatabase ErrorCategory = "DATABASE"
	ErrCategoryJob      ErrorCategory = "JOB"
)

// Error codes for each category.
const (
	// Config codes
	CodeInvalidConfig = "INVALID_CONFIG"

	// Storage codes
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Wallet codes
	CodeFetchFailed     = "FETCH_FAILED"
	CodeStageFailed     = "STAGE_FAILED"
	CodeArtifactMissing = "ARTIFACT_MISSING"

	// Database codes
	CodeConnectFailed = "CONNECT_FAILED"
	CodeInsertFailed  = "INSERT_FAILED"
	CodeCommitFailed  = "COMMIT_FAILED"
	CodeSchemaFailed  = "SCHEMA_FAILED"

	// Job codes
	CodeUnexpected = "UNEXPECTED"
)

// AquatelError is the structured error type used throughout the system.
type AquatelError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *AquatelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *AquatelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *AquatelError) Is(target error) bool {
	var t *AquatelError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new AquatelError.
func New(category ErrorCategory, code, message string) *AquatelError {
	return &AquatelError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new AquatelError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *AquatelError {
	return &AquatelError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *AquatelError) WithDetails(details map[string]interface{}) *AquatelError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
// Retryable means the next scheduled invocation may succeed without
// operator intervention.
func IsRetryable(err error) bool {
	var ae *AquatelError
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an AquatelError.
func GetCategory(err error) ErrorCategory {
	var ae *AquatelError
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an AquatelError.
func GetCode(err error) string {
	var ae *AquatelError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// isRetryable determines if an error code is transient from the job's
// point of view: provisioning is idempotent and the connection is opened
// fresh each run, so storage and database failures clear themselves on
// the next tick.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	case category == ErrCategoryWallet && code == CodeFetchFailed:
		return true
	case category == ErrCategoryDatabase && code == CodeConnectFailed:
		return true
	case category == ErrCategoryDatabase && code == CodeInsertFailed:
		return true
	case category == ErrCategoryDatabase && code == CodeCommitFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

// NewFetchError reports a provisioning failure for a named credential
// artifact. The artifact name is recorded in Details.
func NewFetchError(artifact string, cause error) *AquatelError {
	return Wrap(ErrCategoryWallet, CodeFetchFailed,
		fmt.Sprintf("fetching credential artifact %s", artifact), cause).
		WithDetails(map[string]interface{}{"artifact": artifact})
}

// FailedArtifact returns the artifact name recorded on a fetch error, or
// empty string when the error carries none.
func FailedArtifact(err error) string {
	var ae *AquatelError
	if !errors.As(err, &ae) {
		return ""
	}
	if name, ok := ae.Details["artifact"].(string); ok {
		return name
	}
	return ""
}

func NewConnectError(message string, cause error) *AquatelError {
	return Wrap(ErrCategoryDatabase, CodeConnectFailed, message, cause)
}

func NewInsertError(message string, cause error) *AquatelError {
	return Wrap(ErrCategoryDatabase, CodeInsertFailed, message, cause)
}

func NewConfigError(message string) *AquatelError {
	return New(ErrCategoryConfig, CodeInvalidConfig, message)
}

func NewInternalError(message string, cause error) *AquatelError {
	return Wrap(ErrCategoryJob, CodeUnexpected, message, cause)
}
