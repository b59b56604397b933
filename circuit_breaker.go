package redq

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/redq-io/redq/resp"
)

// BreakerExecutor wraps an Executor with a circuit breaker. Only transport
// and framing failures reach the breaker: a server-reported command error
// travels inside the reply value and does not count as a failure.
type BreakerExecutor struct {
	inner Executor
	cb    *gobreaker.CircuitBreaker[resp.Value]
}

// NewBreakerExecutor wraps inner with a breaker named name (typically the
// server address). The breaker opens when at least three requests in the
// rolling interval have run and 60% of them failed.
func NewBreakerExecutor(name string, inner Executor) *BreakerExecutor {
	settings := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return &BreakerExecutor{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[resp.Value](settings),
	}
}

var _ Executor = (*BreakerExecutor)(nil)

// Do executes the command through the breaker.
func (b *BreakerExecutor) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	return b.cb.Execute(func() (resp.Value, error) {
		return b.inner.Do(ctx, cmd)
	})
}

// State returns the breaker state (closed, half-open, open).
func (b *BreakerExecutor) State() gobreaker.State {
	return b.cb.State()
}
