package gateway

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestPollerReturnsOnTerminalOutcome(t *testing.T) {
	p := newPoller(time.Millisecond, 10)
	attempts := 0
	res := p.await(context.Background(), "REPLICATE", "stability-ai/sdxl", func(context.Context) pollOutcome {
		attempts++
		if attempts < 3 {
			return pollOutcome{}
		}
		return pollOutcome{terminal: true, result: ImageOf("REPLICATE", "stability-ai/sdxl", ImageResult{URL: "https://replicate.delivery/out.png"})}
	})
	if !res.Ok() {
		t.Fatalf("result failed: %+v", res.Failure)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestPollerCeilingYieldsTransientFailure(t *testing.T) {
	p := newPoller(time.Millisecond, 4)
	res := p.await(context.Background(), "REPLICATE", "stability-ai/sdxl", func(context.Context) pollOutcome {
		return pollOutcome{}
	})
	if res.Ok() {
		t.Fatal("expected failure after ceiling")
	}
	if res.Failure.Kind != FailureTransient {
		t.Fatalf("kind = %s, want transient_error", res.Failure.Kind)
	}
	if !strings.Contains(res.Failure.Message, "4 status checks") {
		t.Fatalf("message = %q", res.Failure.Message)
	}
}

func TestPollerHonorsContextCancellation(t *testing.T) {
	p := newPoller(time.Minute, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan Result, 1)
	go func() {
		done <- p.await(ctx, "REPLICATE", "stability-ai/sdxl", func(context.Context) pollOutcome {
			return pollOutcome{}
		})
	}()

	select {
	case res := <-done:
		if res.Ok() || res.Failure.Kind != FailureTransient {
			t.Fatalf("unexpected result %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not observe cancellation")
	}
}

func TestNewPollerAppliesDefaults(t *testing.T) {
	p := newPoller(0, 0)
	if p.interval != 2*time.Second {
		t.Fatalf("interval = %v", p.interval)
	}
	if p.maxAttempts != 60 {
		t.Fatalf("maxAttempts = %d", p.maxAttempts)
	}
}
