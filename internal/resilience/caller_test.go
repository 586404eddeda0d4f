package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"
)

func noSleep(t *testing.T) {
	t.Helper()
	original := sleep
	sleep = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { sleep = original })
}

func TestCallRetriesTransientErrors(t *testing.T) {
	noSleep(t)
	caller := New[string]("test")

	calls := 0
	out, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != "ok" {
		t.Fatalf("unexpected output: %q", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestCallDoesNotRetryPermanentErrors(t *testing.T) {
	noSleep(t)
	caller := New[string]("test")

	permanent := errors.New("invalid request payload")
	calls := 0
	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestCallGivesUpAfterMaxAttempts(t *testing.T) {
	noSleep(t)
	caller := New[string]("test")

	transient := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	calls := 0
	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", transient
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != defaultMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultMaxAttempts, calls)
	}
}

func TestCallBoundsEachAttemptWithADeadline(t *testing.T) {
	noSleep(t)
	caller := New[string]("test").WithTimeout(10 * time.Millisecond)

	calls := 0
	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Fatal("attempt context must carry a deadline")
		}
		// Simulate a hung dependency that only honors cancellation.
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if calls != defaultMaxAttempts {
		t.Fatalf("stalls are transient and must be retried: got %d attempts", calls)
	}
}

func TestOpenBreakerFailsFastWithErrUnavailable(t *testing.T) {
	noSleep(t)
	caller := New[string]("test")

	boom := errors.New("hard failure")
	for i := 0; i < 5; i++ {
		_, _ = caller.Call(context.Background(), func(ctx context.Context) (string, error) {
			return "", boom
		})
	}

	calls := 0
	_, err := caller.Call(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 0 {
		t.Fatal("open breaker must not invoke the function")
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"genai 500", genai.APIError{Code: 500, Status: "INTERNAL"}, true},
		{"genai 429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true},
		{"genai 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
		{"http status text", errors.New("http status 503"), true},
		{"timeout text", errors.New("Client.Timeout exceeded"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"validation", errors.New("unusable extraction output"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Retryable(tc.err); got != tc.want {
				t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
