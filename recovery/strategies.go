package recovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Operation is a caller-supplied asynchronous operation, typically a
// persistence call owned by an external collaborator.
type Operation[T any] func(context.Context) (T, error)

// Safe runs op and returns the static fallback value when it fails. The
// failure is reported to log and never propagates.
func Safe[T any](ctx context.Context, log zerolog.Logger, op Operation[T], fallback T) T {
	value, err := op(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("operation failed; using fallback value")
		return fallback
	}
	return value
}

// SafeWith runs op and invokes fallback when it fails. When the fallback
// itself fails, that second failure is reported too and the zero value is
// returned; nothing propagates.
func SafeWith[T any](ctx context.Context, log zerolog.Logger, op, fallback Operation[T]) T {
	value, err := op(ctx)
	if err == nil {
		return value
	}
	log.Warn().Err(err).Msg("operation failed; invoking fallback")

	value, err = fallback(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fallback operation failed; returning zero value")
		var zero T
		return zero
	}
	return value
}

// RetryOptions configures Retry.
type RetryOptions struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// RetryIf, when set, can veto a retry for a particular failure.
	RetryIf func(error) bool
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 100 * time.Millisecond
	}
	return o
}

// Retry runs op with exponential backoff, strictly one attempt at a time. A
// typed *Error whose Recoverable is false stops immediately, as does a
// RetryIf veto. Exhausting all attempts returns the last failure.
func Retry[T any](ctx context.Context, op Operation[T], opts RetryOptions) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !shouldRetry(err, opts.RetryIf) || attempt == opts.MaxAttempts {
			break
		}

		delay := opts.BaseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}

func shouldRetry(err error, custom func(error) bool) bool {
	if custom != nil && !custom(err) {
		return false
	}
	var typed *Error
	if errors.As(err, &typed) && !typed.Recoverable {
		return false
	}
	return true
}

// ErrCircuitOpen is returned when a call fails fast because the circuit for
// its key is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerOptions configures a Breaker.
type BreakerOptions struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}

func (o BreakerOptions) withDefaults() BreakerOptions {
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 5
	}
	if o.ResetTimeout <= 0 {
		o.ResetTimeout = 30 * time.Second
	}
	return o
}

// Breaker tracks consecutive failures per operation key. Once failures reach
// the threshold the circuit opens and calls fail fast without invoking the
// operation; after the reset timeout a single trial call is allowed through.
// The per-key state is mutex-guarded and safe for concurrent use.
type Breaker struct {
	mu     sync.Mutex
	opts   BreakerOptions
	states map[string]*breakerState
	now    func() time.Time
}

type breakerState struct {
	failures    int
	lastFailure time.Time
	open        bool
	halfOpen    bool
}

// NewBreaker returns a Breaker with the given options.
func NewBreaker(opts BreakerOptions) *Breaker {
	return &Breaker{
		opts:   opts.withDefaults(),
		states: make(map[string]*breakerState),
		now:    time.Now,
	}
}

// Execute runs op through the breaker registered under key.
func Execute[T any](ctx context.Context, breaker *Breaker, key string, op Operation[T]) (T, error) {
	var zero T
	if err := breaker.allow(key); err != nil {
		return zero, err
	}

	value, err := op(ctx)
	breaker.record(key, err)
	if err != nil {
		return zero, err
	}
	return value, nil
}

func (b *Breaker) allow(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.states[key]
	if !ok || !state.open {
		return nil
	}
	if state.halfOpen || b.now().Sub(state.lastFailure) < b.opts.ResetTimeout {
		return fmt.Errorf("%w for %q", ErrCircuitOpen, key)
	}
	// Cooldown elapsed: allow exactly one half-open trial call. Further
	// calls fail fast until the trial reports its result.
	state.halfOpen = true
	return nil
}

func (b *Breaker) record(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		delete(b.states, key)
		return
	}

	state, ok := b.states[key]
	if !ok {
		state = &breakerState{}
		b.states[key] = state
	}
	state.failures++
	state.lastFailure = b.now()
	state.halfOpen = false
	if state.failures >= b.opts.FailureThreshold {
		state.open = true
	}
}

// Degraded tries primary and falls back to degraded on failure, reporting the
// primary failure. Unlike SafeWith, a degraded-path failure is reported and
// then propagated to the caller.
func Degraded[T any](ctx context.Context, log zerolog.Logger, primary, degraded Operation[T]) (T, error) {
	value, err := primary(ctx)
	if err == nil {
		return value, nil
	}
	log.Warn().Err(err).Msg("primary operation failed; running degraded path")

	value, degradedErr := degraded(ctx)
	if degradedErr != nil {
		log.Error().Err(degradedErr).Msg("degraded operation failed")
		var zero T
		return zero, degradedErr
	}
	return value, nil
}
