package response

import (
	"net/http"

	"smartpos/internal/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string `json:"status"`      // "success" or "error"
	StatusCode int    `json:"status_code"` // HTTP status code
	Data       any    `json:"data,omitempty"`
	Meta       *Meta  `json:"meta,omitempty"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// Meta describes one page of a paginated list.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data any) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Paginated wraps one page of results with its position in the full list.
func Paginated(data any, page, limit int, total int64) Response {
	r := Success(http.StatusOK, data)
	r.Meta = &Meta{Page: page, Limit: limit, Total: total}
	return r
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidInput, apperror.KindInsufficientStock, apperror.KindInsufficientPoints,
		apperror.KindInvalidState:
		return http.StatusBadRequest
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindContention:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// FromError renders err as an error response. Unclassified errors are not
// echoed to the client.
func FromError(err error) Response {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	msg := err.Error()
	if kind == apperror.KindInternal {
		msg = http.StatusText(status)
	}
	r := Error(status, msg)
	r.Kind = string(kind)
	return r
}
