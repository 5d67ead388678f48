// Package handlers provides the operator HTTP endpoints of the gateway.
//
// The dispatch endpoints themselves live in package gateway; this package
// exposes the state the gateway shares between requests:
//
//	GET  /admin/circuit         circuit breaker snapshot
//	POST /admin/circuit/reset   force the breaker closed
//	GET  /admin/routes          route table in effect
//	POST /admin/routes/reload   reload the route table from its source
//
// The server mounts these behind the bearer authentication middleware.
// Responses are JSON and never cached.
package handlers
