package pipeline

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput rejects empty or malformed message text before analysis.
	ErrInvalidInput = errors.New("pipeline: invalid input")
	// ErrUpstreamUnavailable reports a failed voice or EHR call. It is only
	// returned when the failed call was the sole source of message text.
	ErrUpstreamUnavailable = errors.New("pipeline: upstream service unavailable")
	// ErrConfigurationDisabled rejects requests for a feature that is toggled off.
	ErrConfigurationDisabled = errors.New("pipeline: feature disabled")
)

// StatusCode maps a pipeline error onto an HTTP status. Anything outside
// the taxonomy, including an unready classifier, is a 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConfigurationDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
