// Package server hosts the gateway's HTTP listener: the dispatch routes,
// operator endpoints, probes and metrics behind one middleware chain.
//
// Routes mounted by the server:
//
//	/v1/run                  dispatch (GET query or POST JSON/multipart)
//	/api/v1/compute          legacy compute envelope
//	/admin/circuit           breaker snapshot (auth)
//	/admin/circuit/reset     force the breaker closed (auth)
//	/admin/routes            route table in effect (auth)
//	/admin/routes/reload     reload the route table (auth)
//	/health, /ready          probes (paths configurable)
//	/version                 build information
//	/metrics                 Prometheus exposition (when enabled)
//
// Every route runs behind recovery, trace id, trace context extraction and
// request logging middleware, outermost first.
package server
