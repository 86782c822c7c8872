package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// statusFor maps a service error onto an HTTP status code
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidFileName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case domain.IsCacheError(err):
		return http.StatusServiceUnavailable
	case domain.IsDecodingError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the mapped status. Server-side failures are
// logged at error level and answered with the bare status text, since their
// detail can carry storage paths. Client errors are logged at debug and echoed.
func writeError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Int("status", status), zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}
