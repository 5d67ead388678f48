// Package resilience guards calls to a backend with a count-based circuit
// breaker and a bounded fixed-delay retry.
//
// A Breaker tracks the outcomes of recent calls and opens once the failure
// rate over at least MinimumCalls reaches the configured threshold. While
// open, calls are rejected with a *CircuitOpenError without reaching the
// backend. After WaitDurationInOpen the next call is let through as a probe;
// its outcome decides whether the circuit closes or opens again.
//
// A Decorator combines the breaker with retries:
//
//	breaker := resilience.NewBreaker(resilience.BreakerConfig{
//	    FailureRateThreshold: 50,
//	    MinimumCalls:         3,
//	    WaitDurationInOpen:   10 * time.Second,
//	    HalfOpenMaxCalls:     1,
//	})
//	dec := resilience.NewDecorator(breaker, resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    Delay:       time.Second,
//	})
//	resp, err := dec.Execute(ctx, func(ctx context.Context) (*forward.Response, error) {
//	    return client.Forward(ctx, call)
//	})
//
// Only downstream server errors (5xx and transport failures) are retried.
// Timeouts, downstream 4xx responses and circuit rejections end the sequence
// immediately. Each attempt, including retries, is recorded by the breaker.
//
// # Thread Safety
//
// Breaker and Decorator are safe for concurrent use. Breaker state is guarded
// by a single mutex and state change callbacks run outside it.
package resilience
