package redq

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redq-io/redq/internal/testserver"
	"github.com/redq-io/redq/resp"
)

func testContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func startServer(t testing.TB, password string) *testserver.Server {
	t.Helper()
	srv, err := testserver.Start(password)
	require.NoError(t, err, "test server should start")
	t.Cleanup(srv.Close)
	return srv
}

func startDriver(t testing.TB, loops int) *Driver {
	t.Helper()
	driver := NewDriver(loops)
	t.Cleanup(func() { driver.Terminate() })
	return driver
}

// connectStreams stands up a server, a driver and an authenticated-or-not
// connection, and returns the stream surface plus the server for counter
// assertions.
func connectStreams(t testing.TB) (*Streams, *testserver.Server) {
	t.Helper()
	srv := startServer(t, "")
	driver := startDriver(t, 2)

	conn, err := driver.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err, "connect should succeed")
	t.Cleanup(func() { conn.Close() })

	return NewStreams(conn), srv
}

// createListener starts a raw TCP listener driven by handler, for tests that
// need a misbehaving peer. It returns the listen address.
func createListener(t testing.TB, handler func(conn net.Conn)) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "listener should start")
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go handler(conn)
		}
	}()

	return listener.Addr().String()
}

// failingExecutor fails every command with the given error.
type failingExecutor struct {
	err   error
	calls int
}

func (f *failingExecutor) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	f.calls++
	return resp.Value{}, f.err
}

// replyExecutor answers every command with a fixed value.
type replyExecutor struct {
	reply resp.Value
	calls int
	last  *resp.Command
}

func (r *replyExecutor) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	r.calls++
	r.last = cmd
	return r.reply, nil
}
