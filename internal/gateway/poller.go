package gateway

import (
	"context"
	"time"
)

// pollOutcome is one status fetch of an asynchronous job. terminal marks
// success or failure; a non-terminal outcome schedules another fetch.
type pollOutcome struct {
	terminal bool
	result   Result
}

// poller re-fetches job status at a fixed interval until a terminal state or
// the attempt ceiling. No backoff, no jitter: the gateway polls one job per
// dispatch, not thousands. The wait honors ctx so an abandoned request does
// not pin the loop.
type poller struct {
	interval    time.Duration
	maxAttempts int
}

func newPoller(interval time.Duration, maxAttempts int) poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return poller{interval: interval, maxAttempts: maxAttempts}
}

// await runs fetch until it reports a terminal outcome. Exhausting the
// attempt ceiling yields a bounded, deterministic failure instead of looping
// forever on a stuck job.
func (p poller) await(ctx context.Context, provider, model string, fetch func(context.Context) pollOutcome) Result {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		outcome := fetch(ctx)
		if outcome.terminal {
			return outcome.result
		}
		select {
		case <-ctx.Done():
			return Fail(FailureTransient, provider, model, "job polling canceled: %v", ctx.Err())
		case <-time.After(p.interval):
		}
	}
	return Fail(FailureTransient, provider, model,
		"job still in progress after %d status checks", p.maxAttempts)
}
