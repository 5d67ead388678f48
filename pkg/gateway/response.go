package gateway

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"estech/inference-gateway/pkg/forward"
	"estech/inference-gateway/pkg/resilience"
)

// writeBody writes a successful backend body unchanged with the backend's
// Content-Type. The type is only sniffed when the backend sent none.
func writeBody(w http.ResponseWriter, resp *forward.Response) {
	ct := resp.ContentType
	if ct == "" {
		ct = sniffContentType(resp.Body)
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

func sniffContentType(body []byte) string {
	switch {
	case len(body) == 0:
		return "text/plain; charset=utf-8"
	case gjson.ValidBytes(body):
		return "application/json"
	default:
		return http.DetectContentType(body)
	}
}

// writeError writes the failure message with the outcome's status.
func writeError(w http.ResponseWriter, outcome Outcome, err error) {
	var open *resilience.CircuitOpenError
	if errors.As(err, &open) && open.RetryAfter > 0 {
		secs := int(math.Ceil(open.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	http.Error(w, err.Error(), outcome.StatusCode())
}

// logOutcome logs a failed request at a level matching who is at fault.
func (g *Gateway) logOutcome(ctx context.Context, outcome Outcome, err error) {
	switch outcome {
	case OutcomeSuccess:
		return
	case OutcomeUnauthorized, OutcomeAdmissionRejected, OutcomeInvalidRequest, OutcomeCanceled:
		g.logger.WarnContext(ctx, "request rejected", "outcome", outcome, "error", err)
	case OutcomeCircuitOpen:
		g.logger.ErrorContext(ctx, "circuit breaker open, request blocked", "outcome", outcome, "error", err)
	default:
		g.logger.ErrorContext(ctx, "forwarding failed", "outcome", outcome, "error", err)
	}
}

// computeEnvelope wraps a backend body in the legacy compute response.
func (g *Gateway) computeEnvelope(trace Trace, impl string, body []byte) (*forward.Response, error) {
	var (
		out []byte
		err error
	)
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("requestId", trace.ID)
	set("output.summary", string(body))
	set("metrics.latencyMs", trace.elapsed().Milliseconds())
	set("metrics.provider", impl)
	set("metrics.costPer1k", 0.0)
	set("traceUrl", g.traceURLBase+trace.ID)
	if err != nil {
		return nil, err
	}
	return &forward.Response{StatusCode: http.StatusOK, ContentType: "application/json", Body: out}, nil
}

// outboundHeader carries the backend-facing trace id.
func outboundHeader(traceID string) http.Header {
	h := http.Header{}
	h.Set(forward.TraceHeader, traceID)
	return h
}
