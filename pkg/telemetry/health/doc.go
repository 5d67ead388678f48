// Package health provides the gateway's liveness and readiness probes.
//
// Liveness (/health by default) answers 200 whenever the process can serve
// HTTP. Readiness (/ready) runs the registered checks concurrently, each
// bounded by a timeout, and answers 503 unless all pass:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("routes", health.RoutesCheck(func() int { return store.Load().Len() }))
//	mux.Handle("/health", checker.LivenessHandler())
//	mux.Handle("/ready", checker.ReadinessHandler())
//
// During shutdown the server calls SetDraining(true) so readiness fails
// before the listener closes.
package health
