// Package gateway implements the unified dispatch endpoint.
//
// A request flows through a fixed pipeline:
//
//	authenticate -> admit -> normalize -> validate -> route -> forward (breaker + retry)
//
// Every stage ends in exactly one Outcome. Outcomes label the request
// metrics and the request span, and select the response status: 200 with
// the backend body unchanged, 401 for authentication failures, 429 when the
// admission limit is reached and 500 with the failure message otherwise.
// Each response carries the request trace identifier in X-Trace-Id; the
// same identifier is sent to the backend and attached to every log line.
//
// # Usage
//
//	gw := gateway.New(gateway.Deps{
//	    Config:       cfg.Gateway,
//	    MaxBodyBytes: cfg.Server.MaxBodyBytes,
//	    Auth:         auth.NewGate(validator),
//	    Admission:    admission.NewGate(cfg.Gateway.MaxConcurrent),
//	    Router:       routing.NewRouter(store),
//	    Client:       forward.NewClient(forward.Config{Timeout: cfg.Gateway.Timeout}),
//	    Resilience:   resilience.NewDecorator(breaker, retry),
//	    Metrics:      recorder,
//	    Tracer:       tracer,
//	})
//	mux.Handle("/v1/run", gw)
//	mux.HandleFunc("/api/v1/compute", gw.Compute)
package gateway
