// internal/common/errors/handler.go
package errors

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors for HTTP callers with standardized logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Response is the JSON error envelope returned by the gateway.
type Response struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Retries   int                    `json:"retries"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToResponse converts a StandardError to its HTTP envelope.
func ToResponse(stdErr *StandardError) *Response {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	return &Response{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	}
}

// HandleRequestError logs err and writes the matching status and envelope.
// extra is merged into the envelope, e.g. notifications collected so far.
func (h *ErrorHandler) HandleRequestError(c *gin.Context, err error, extra map[string]interface{}) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(c, stdErr, status)

	resp := ToResponse(stdErr)
	if len(extra) > 0 {
		resp.Extra = extra
	}
	c.AbortWithStatusJSON(status, resp)
}

func (h *ErrorHandler) logError(c *gin.Context, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"path":          c.FullPath(),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if requestID, ok := c.Get("requestId"); ok {
		fields["requestId"] = requestID
	}
	if status >= 500 {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
