package redq

import (
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"github.com/redq-io/redq/resp"
)

func TestBreakerPassesSuccessThrough(t *testing.T) {
	inner := &replyExecutor{reply: resp.IntegerValue(3)}
	breaker := NewBreakerExecutor("test", inner)

	reply, err := breaker.Do(testContext(t), resp.NewCommand("XLEN").AddString("events"))
	require.NoError(t, err)

	n, err := reply.AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, gobreaker.StateClosed, breaker.State())
}

func TestBreakerOpensOnRepeatedTransportFailures(t *testing.T) {
	inner := &failingExecutor{err: ErrConnectionClosed}
	breaker := NewBreakerExecutor("test", inner)

	for i := 0; i < 3; i++ {
		_, err := breaker.Do(testContext(t), resp.NewCommand("PING"))
		require.ErrorIs(t, err, ErrConnectionClosed)
	}

	require.Equal(t, gobreaker.StateOpen, breaker.State())

	// Once open, calls are rejected before reaching the executor.
	before := inner.calls
	_, err := breaker.Do(testContext(t), resp.NewCommand("PING"))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, before, inner.calls)
}

func TestBreakerIgnoresServerErrorReplies(t *testing.T) {
	// An error value is a successful round trip as far as the transport is
	// concerned; it must not count toward tripping.
	inner := &replyExecutor{reply: resp.ErrorValue("ERR bad argument")}
	breaker := NewBreakerExecutor("test", inner)

	for i := 0; i < 10; i++ {
		reply, err := breaker.Do(testContext(t), resp.NewCommand("XLEN").AddString("events"))
		require.NoError(t, err)
		_, narrowErr := reply.AsInt()
		require.Error(t, narrowErr)
	}

	require.Equal(t, gobreaker.StateClosed, breaker.State())
	require.Equal(t, 10, inner.calls)
}

func TestBreakerWithStreams(t *testing.T) {
	inner := &failingExecutor{err: ErrConnectionClosed}
	streams := NewStreams(NewBreakerExecutor("test", inner))

	for i := 0; i < 3; i++ {
		_, err := streams.Len(testContext(t), "events")
		require.ErrorIs(t, err, ErrConnectionClosed)
	}

	_, err := streams.Len(testContext(t), "events")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)

	stats := streams.Stats()
	require.Equal(t, uint64(4), stats.Errors)
}
