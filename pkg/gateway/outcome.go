package gateway

import (
	"context"
	"errors"
	"net/http"

	"estech/inference-gateway/pkg/admission"
	"estech/inference-gateway/pkg/dispatch"
	"estech/inference-gateway/pkg/forward"
	"estech/inference-gateway/pkg/resilience"
	"estech/inference-gateway/pkg/routing"
	"estech/inference-gateway/pkg/security/auth"
)

// Outcome is the terminal classification of a request. It labels metrics,
// spans and logs, and determines the response status.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeUnauthorized      Outcome = "unauthorized"
	OutcomeAdmissionRejected Outcome = "admission_rejected"
	OutcomeInvalidRequest    Outcome = "invalid_request"
	OutcomeUnknownService    Outcome = "unknown_service"
	OutcomeDownstreamClient  Outcome = "downstream_client_error"
	OutcomeDownstreamServer  Outcome = "downstream_server_error"
	OutcomeTimeout           Outcome = "timeout"
	OutcomeCircuitOpen       Outcome = "circuit_open"
	OutcomeCanceled          Outcome = "canceled"
	OutcomeInternal          Outcome = "internal_error"
)

// Classify maps a pipeline error to its Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, auth.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, admission.ErrRejected):
		return OutcomeAdmissionRejected
	case errors.Is(err, dispatch.ErrInvalidRequest), errors.Is(err, forward.ErrBodyNotAllowed):
		return OutcomeInvalidRequest
	case errors.Is(err, routing.ErrUnknownService):
		return OutcomeUnknownService
	case errors.Is(err, resilience.ErrCircuitOpen):
		return OutcomeCircuitOpen
	case errors.Is(err, forward.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, forward.ErrDownstreamClient):
		return OutcomeDownstreamClient
	case errors.Is(err, forward.ErrDownstreamServer):
		return OutcomeDownstreamServer
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeInternal
	}
}

// StatusCode returns the HTTP status for o. Only authentication and
// admission have dedicated statuses; every other failure is a 500 carrying
// the failure message.
func (o Outcome) StatusCode() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeUnauthorized:
		return http.StatusUnauthorized
	case OutcomeAdmissionRejected:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
