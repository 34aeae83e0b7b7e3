package planner

import (
	"context"
	"errors"
	"net/http"
)

// Failure categories of plan ingestion. Returned errors wrap exactly one of them.
var (
	ErrValidation      = errors.New("validation failed")
	ErrExternalService = errors.New("text generation failed")
	ErrAIResponseParse = errors.New("ai response could not be parsed")
	ErrPersistence     = errors.New("persistence failed")
)

// Messages shown to API clients; internal detail stays in the server log
const (
	MsgExternalService = "The AI service is unavailable right now. Please try again later."
	MsgAIResponseParse = "The AI returned a plan we could not understand. Please try again."
	MsgInternal        = "An internal server error occurred."
)

// ValidationError carries a message safe to show to the caller
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// StatusFor maps an ingestion error to an HTTP status and a client-facing message
func StatusFor(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, ErrExternalService):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, MsgExternalService
		}
		return http.StatusBadGateway, MsgExternalService
	case errors.Is(err, ErrAIResponseParse):
		return http.StatusBadGateway, MsgAIResponseParse
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// Outcome names the failure category of err for metrics
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrExternalService):
		return "external_error"
	case errors.Is(err, ErrAIResponseParse):
		return "parse_error"
	default:
		return "persistence_error"
	}
}
