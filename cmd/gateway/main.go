// Command gateway is a reverse-proxy dispatch gateway for inference
// backends.
//
// Callers address a backend by service name; the gateway authenticates the
// caller, applies admission control, resolves the service against its route
// table and forwards the call under a circuit breaker with bounded retries.
//
// Usage:
//
//	# Start the gateway
//	gateway run --config config.yaml
//
//	# Check a configuration file
//	gateway validate --config config.yaml
//
//	# Print the route table the gateway would load
//	gateway routes --output json
//
//	# Show version information
//	gateway version
package main

func main() {
	Execute()
}
