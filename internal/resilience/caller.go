package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"zipduck-backend/internal/shared/telemetry"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = time.Minute
	retryBaseDelay        = 300 * time.Millisecond
)

// ErrUnavailable reports that the dependency's breaker is open and the call
// was never attempted.
var ErrUnavailable = errors.New("dependency unavailable")

// sleep is swapped out in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Caller wraps calls to one external dependency with bounded retries and a
// circuit breaker. Build one Caller per dependency; they carry no global
// state.
type Caller[T any] struct {
	name           string
	maxAttempts    int
	attemptTimeout time.Duration
	breaker        *gobreaker.CircuitBreaker[T]
}

// New builds a Caller for the named dependency.
func New[T any](name string) *Caller[T] {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Caller[T]{
		name:           name,
		maxAttempts:    defaultMaxAttempts,
		attemptTimeout: defaultAttemptTimeout,
		breaker:        gobreaker.NewCircuitBreaker[T](settings),
	}
}

// WithTimeout overrides the per-attempt deadline budget.
func (c *Caller[T]) WithTimeout(d time.Duration) *Caller[T] {
	if d > 0 {
		c.attemptTimeout = d
	}
	return c
}

// Call runs fn through the breaker, retrying transient failures with a fixed
// backoff. Each attempt gets its own deadline so a hung dependency surfaces
// as context.DeadlineExceeded instead of stalling a worker. An open breaker
// fails fast with ErrUnavailable.
func (c *Caller[T]) Call(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, err := c.breaker.Execute(func() (T, error) {
		var lastErr error
		for attempt := 1; attempt <= c.maxAttempts; attempt++ {
			out, err := c.attempt(ctx, fn)
			if err == nil {
				return out, nil
			}
			lastErr = err
			if !Retryable(err) || attempt == c.maxAttempts {
				break
			}
			telemetry.Info("resilience.retry", map[string]any{
				"dependency": c.name,
				"attempt":    attempt,
				"error":      err.Error(),
			})
			if err := sleep(ctx, retryBaseDelay); err != nil {
				return zero, err
			}
		}
		return zero, lastErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			telemetry.Error("resilience.breaker_open", map[string]any{"dependency": c.name})
			return zero, ErrUnavailable
		}
		return zero, err
	}
	return result, nil
}

func (c *Caller[T]) attempt(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return fn(attemptCtx)
}

// Retryable classifies an error as a transient external failure worth
// another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
