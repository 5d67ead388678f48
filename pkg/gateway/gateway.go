package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"estech/inference-gateway/pkg/admission"
	"estech/inference-gateway/pkg/config"
	"estech/inference-gateway/pkg/dispatch"
	"estech/inference-gateway/pkg/forward"
	"estech/inference-gateway/pkg/resilience"
	"estech/inference-gateway/pkg/routing"
	"estech/inference-gateway/pkg/security/auth"
	"estech/inference-gateway/pkg/telemetry/logging"
	"estech/inference-gateway/pkg/telemetry/metrics"
	"estech/inference-gateway/pkg/telemetry/tracing"
)

// Forwarder performs one outbound call.
type Forwarder interface {
	Forward(ctx context.Context, call forward.Call) (*forward.Response, error)
}

// Deps holds the collaborators of a Gateway. Auth, Admission, Router,
// Client and Resilience are required; the telemetry fields may be nil.
type Deps struct {
	Config       config.GatewayConfig
	MaxBodyBytes int64

	Auth       *auth.Gate
	Admission  *admission.Gate
	Router     *routing.Router
	Client     Forwarder
	Resilience *resilience.Decorator

	Metrics *metrics.Recorder
	Tracer  *tracing.Tracer
	Logger  *slog.Logger

	// NewTraceID generates trace identifiers. Defaults to logging.NewTraceID.
	NewTraceID func() string
}

// Gateway is the single dispatch endpoint. It authenticates the caller,
// applies admission control, normalizes the request, resolves the target
// and forwards through the resilience decorator.
//
// All shared state (in-flight counter, circuit breaker, route table) is
// owned by the collaborators passed in Deps, so independent Gateway
// instances can coexist in one process.
type Gateway struct {
	auth       *auth.Gate
	admission  *admission.Gate
	router     *routing.Router
	client     Forwarder
	resilience *resilience.Decorator
	metrics    *metrics.Recorder
	tracer     *tracing.Tracer
	logger     *slog.Logger

	maxBody        int64
	requestTimeout time.Duration
	traceURLBase   string
	newTraceID     func() string
}

// New creates a Gateway and hooks the admission gate and the decorator into
// the metrics recorder and the tracer.
func New(d Deps) *Gateway {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newID := d.NewTraceID
	if newID == nil {
		newID = logging.NewTraceID
	}
	traceURLBase := d.Config.TraceURLBase
	if traceURLBase == "" {
		traceURLBase = config.DefaultTraceURLBase
	}

	g := &Gateway{
		auth:           d.Auth,
		admission:      d.Admission,
		router:         d.Router,
		client:         d.Client,
		resilience:     d.Resilience,
		metrics:        d.Metrics,
		tracer:         d.Tracer,
		logger:         logger.With("component", "gateway"),
		maxBody:        d.MaxBodyBytes,
		requestTimeout: d.Config.RequestTimeout,
		traceURLBase:   traceURLBase,
		newTraceID:     newID,
	}

	if g.admission.OnChange == nil {
		g.admission.OnChange = g.metrics.SetInFlight
	}
	if g.resilience.OnAttempt == nil {
		g.resilience.OnAttempt = g.observeAttempt
	}
	return g
}

func (g *Gateway) observeAttempt(ctx context.Context, attempt int, outcome resilience.Outcome, err error) {
	g.metrics.RecordAttempt(outcome.String())
	tracing.AddAttemptEvent(trace.SpanFromContext(ctx), attempt, outcome.String())
	if err != nil {
		g.logger.DebugContext(ctx, "forward attempt failed",
			"attempt", attempt,
			"outcome", outcome.String(),
			"error", err,
		)
	}
}

// Breaker returns the circuit breaker guarding the backends.
func (g *Gateway) Breaker() *resilience.Breaker {
	return g.resilience.Breaker()
}

// ServeHTTP handles the unified dispatch endpoint. GET requests carry the
// dispatch fields in the query string; POST requests carry them in a JSON
// or multipart body.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g.serve(w, r, func(ctx context.Context, tr Trace) (*forward.Response, error) {
		req, err := dispatch.Normalize(r, g.maxBody)
		if err != nil {
			return nil, err
		}
		return g.Dispatch(ctx, req)
	})
}

type handleFunc func(ctx context.Context, tr Trace) (*forward.Response, error)

// serve runs the shared request lifecycle around handle: trace context,
// authentication, admission, the pipeline deadline and outcome recording.
func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, handle handleFunc) {
	tr := Trace{Start: time.Now(), ID: logging.GetTraceID(r.Context())}
	ctx := r.Context()
	if tr.ID == "" {
		tr.ID = g.newTraceID()
		ctx = logging.WithTraceID(ctx, tr.ID)
		w.Header().Set(forward.TraceHeader, tr.ID)
	}

	ctx, span := g.tracer.Start(ctx, "gateway.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String(tracing.AttrTraceID, tr.ID)),
	)
	defer span.End()

	resp, err := g.run(ctx, r, tr, handle)

	outcome := Classify(err)
	g.metrics.RecordOutcome(string(outcome), tr.elapsed())
	tracing.SetOutcome(span, string(outcome))
	tracing.SetStatus(span, err)

	if err != nil {
		g.logOutcome(ctx, outcome, err)
		writeError(w, outcome, err)
		return
	}
	writeBody(w, resp)
}

func (g *Gateway) run(ctx context.Context, r *http.Request, tr Trace, handle handleFunc) (*forward.Response, error) {
	principal, err := g.auth.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	ctx = auth.WithPrincipal(ctx, principal)
	ctx = logging.WithUser(ctx, principal.Subject)

	release, err := g.admission.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	return handle(ctx, tr)
}

// Dispatch validates req, resolves its target and forwards it under the
// resilience policy. It performs no network call when the service is
// unknown.
func (g *Gateway) Dispatch(ctx context.Context, req *dispatch.Request) (*forward.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := g.router.Target(req.Impl, req.Path)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithService(ctx, req.Impl)
	tracing.SetDispatchAttributes(trace.SpanFromContext(ctx), req.Impl, req.Method, req.Path)

	traceID := logging.GetTraceID(ctx)
	header := outboundHeader(traceID)
	tracing.Inject(ctx, header)

	call := forward.Call{
		Method:  req.Method,
		URL:     target,
		TraceID: traceID,
		Header:  header,
		Input:   req.Input,
	}

	g.logger.DebugContext(ctx, "dispatching request",
		"method", req.Method,
		"path", req.Path,
	)

	return g.resilience.Execute(ctx, func(ctx context.Context) (*forward.Response, error) {
		return g.client.Forward(ctx, call)
	})
}
