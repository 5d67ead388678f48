package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"estech/inference-gateway/pkg/forward"
)

// RetryConfig configures the retry loop.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// AttemptFunc performs one forwarding attempt.
type AttemptFunc func(ctx context.Context) (*forward.Response, error)

// Decorator wraps forwarding attempts with the circuit breaker and a bounded
// fixed-delay retry. Every attempt asks the breaker for permission and
// reports its outcome, so retries count towards the failure rate.
type Decorator struct {
	breaker *Breaker
	retry   RetryConfig
	logger  *slog.Logger

	// Classify maps an attempt error to a breaker outcome.
	Classify func(error) Outcome

	// Retryable reports whether a failed attempt may be retried.
	Retryable func(error) bool

	// OnAttempt, if set, observes every attempt that reached the backend.
	OnAttempt func(ctx context.Context, attempt int, outcome Outcome, err error)
}

// NewDecorator creates a Decorator with the default classification.
func NewDecorator(breaker *Breaker, retry RetryConfig) *Decorator {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Decorator{
		breaker:   breaker,
		retry:     retry,
		logger:    slog.Default().With("component", "resilience.decorator"),
		Classify:  ClassifyOutcome,
		Retryable: IsRetryable,
	}
}

// Breaker returns the decorator's circuit breaker.
func (d *Decorator) Breaker() *Breaker {
	return d.breaker
}

// ClassifyOutcome is the default breaker classification. A downstream 4xx
// proves the backend is reachable and counts as a success; 5xx, transport
// failures and timeouts are failures; cancellations and local errors are
// not recorded.
func ClassifyOutcome(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, forward.ErrDownstreamClient):
		return OutcomeSuccess
	case errors.Is(err, forward.ErrDownstreamServer), errors.Is(err, forward.ErrTimeout):
		return OutcomeFailure
	default:
		return OutcomeIgnored
	}
}

// IsRetryable reports whether err is a downstream 5xx or transport failure.
// An oversized response is not retried since the backend would repeat it.
func IsRetryable(err error) bool {
	return errors.Is(err, forward.ErrDownstreamServer) && !errors.Is(err, forward.ErrResponseTooLarge)
}

// Execute runs attempt under the breaker and retry policy. On failure it
// returns the error of the last attempt made; if the circuit opens during
// the sequence the remaining attempts are skipped and a *CircuitOpenError is
// returned. A deadline on ctx surfaces as a *forward.TimeoutError.
func (d *Decorator) Execute(ctx context.Context, attempt AttemptFunc) (*forward.Response, error) {
	var (
		lastErr error
		n       int
	)

	op := func() (*forward.Response, error) {
		n++
		done, err := d.breaker.Allow()
		if err != nil {
			lastErr = err
			return nil, backoff.Permanent(err)
		}

		resp, err := attempt(ctx)
		outcome := d.Classify(err)
		done(outcome)
		if d.OnAttempt != nil {
			d.OnAttempt(ctx, n, outcome, err)
		}
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !d.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		d.logger.DebugContext(ctx, "attempt failed",
			"attempt", n,
			"max_attempts", d.retry.MaxAttempts,
			"error", err,
		)
		return nil, err
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(d.retry.Delay)),
		backoff.WithMaxTries(uint(d.retry.MaxAttempts)),
	)
	if err == nil {
		return resp, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}

	// The retry loop gives up with the context error when ctx ends during a
	// delay; report the deadline as a timeout.
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &forward.TimeoutError{Cause: ctxErr}
		}
		return nil, ctxErr
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, err
}
