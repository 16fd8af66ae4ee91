// Package errors provides the standardized error type shared by the gateway,
// the membership flow and the image optimizer.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Local, terminal, never retried.
	ErrCodeInvalidMemberID ErrorCode = "INVALID_MEMBER_ID"

	// Remote, terminal for the submission.
	ErrCodeMembershipNotFound ErrorCode = "MEMBERSHIP_NOT_FOUND"

	// Remote, retryable by the user.
	ErrCodeMembershipCheckFailed     ErrorCode = "MEMBERSHIP_CHECK_FAILED"
	ErrCodeMembershipUnexpectedShape ErrorCode = "MEMBERSHIP_UNEXPECTED_SHAPE"
	ErrCodeQRGenerationFailed        ErrorCode = "QR_GENERATION_FAILED"

	ErrCodeFormBusy ErrorCode = "FORM_BUSY"

	// Per-file, isolated.
	ErrCodeImageTaskFailed ErrorCode = "IMAGE_TASK_FAILED"
	ErrCodeManifestInvalid ErrorCode = "MANIFEST_INVALID"

	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidMemberIDError creates a non-retryable format error. message is
// shown to the user as is.
func NewInvalidMemberIDError(message, raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidMemberID,
		Message:   message,
		Details:   fmt.Sprintf("input length: %d", len(raw)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMembershipNotFoundError creates a non-retryable negative membership result.
func NewMembershipNotFoundError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMembershipNotFound,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMembershipCheckFailedError creates a retryable transport error.
func NewMembershipCheckFailedError(message string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMembershipCheckFailed,
		Message:   message,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMembershipUnexpectedShapeError flags a response body that parsed but
// matched none of the known shapes.
func NewMembershipUnexpectedShapeError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMembershipUnexpectedShape,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQRGenerationFailedError creates a retryable error talking to the QR endpoint.
func NewQRGenerationFailedError(message string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQRGenerationFailed,
		Message:   message,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFormBusyError is returned when a form already has a submission in flight.
func NewFormBusyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeFormBusy,
		Message:   "Ya hay una verificación en curso",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewImageTaskFailedError wraps a failure of a single image task.
func NewImageTaskFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageTaskFailed,
		Message:   "Image optimization failed",
		Details:   errDetails(err),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
	}
}

// NewManifestInvalidError reports a manifest that does not match its schema.
func NewManifestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeManifestInvalid,
		Message:   "Image manifest is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestValidationFailedError reports a request body rejected by its schema.
func NewRequestValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Retry and HTTP mapping
// ==========================

// GetRetryCount returns how many times a caller may retry the operation.
// Automatic retries are never issued by the flows themselves; the count only
// tells the caller whether a manual retry makes sense.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeMembershipCheckFailed,
		ErrCodeMembershipUnexpectedShape,
		ErrCodeQRGenerationFailed:
		return 3

	case ErrCodeFormBusy:
		return 1

	default:
		return 0
	}
}

// HTTPStatus maps an error code to the status the gateway answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidMemberID, ErrCodeRequestValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeMembershipNotFound:
		return http.StatusNotFound
	case ErrCodeMembershipCheckFailed,
		ErrCodeMembershipUnexpectedShape,
		ErrCodeQRGenerationFailed:
		return http.StatusBadGateway
	case ErrCodeFormBusy:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "MEMBERSHIP"), strings.Contains(codeStr, "MEMBER_ID"):
		return "MEMBERSHIP"
	case strings.HasPrefix(codeStr, "QR"):
		return "QR"
	case strings.HasPrefix(codeStr, "IMAGE"), strings.HasPrefix(codeStr, "MANIFEST"):
		return "IMAGE"
	case strings.Contains(codeStr, "VALIDATION"), strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// Normalize ensures err is a *StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HasCode reports whether err is a *StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return As(err, &stdErr) && stdErr.Code == code
}
