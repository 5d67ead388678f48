package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"estech/inference-gateway/pkg/admission"
	"estech/inference-gateway/pkg/dispatch"
	"estech/inference-gateway/pkg/forward"
	"estech/inference-gateway/pkg/resilience"
	"estech/inference-gateway/pkg/routing"
	"estech/inference-gateway/pkg/security/auth"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       Outcome
		wantStatus int
	}{
		{"nil", nil, OutcomeSuccess, http.StatusOK},
		{"unauthorized", &auth.UnauthorizedError{Reason: "missing bearer token"}, OutcomeUnauthorized, http.StatusUnauthorized},
		{"admission", &admission.RejectedError{Limit: 1}, OutcomeAdmissionRejected, http.StatusTooManyRequests},
		{"invalid", &dispatch.InvalidRequestError{Reason: "missing impl"}, OutcomeInvalidRequest, http.StatusInternalServerError},
		{"body not allowed", forward.ErrBodyNotAllowed, OutcomeInvalidRequest, http.StatusInternalServerError},
		{"unknown service", &routing.UnknownServiceError{Service: "x"}, OutcomeUnknownService, http.StatusInternalServerError},
		{"circuit open", &resilience.CircuitOpenError{State: resilience.StateOpen}, OutcomeCircuitOpen, http.StatusInternalServerError},
		{"timeout", &forward.TimeoutError{}, OutcomeTimeout, http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, OutcomeTimeout, http.StatusInternalServerError},
		{"4xx", &forward.DownstreamClientError{StatusCode: 404}, OutcomeDownstreamClient, http.StatusInternalServerError},
		{"5xx", &forward.DownstreamServerError{StatusCode: 502}, OutcomeDownstreamServer, http.StatusInternalServerError},
		{"canceled", context.Canceled, OutcomeCanceled, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("dispatch: %w", &routing.UnknownServiceError{Service: "x"}), OutcomeUnknownService, http.StatusInternalServerError},
		{"other", errors.New("boom"), OutcomeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
			if status := got.StatusCode(); status != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}
