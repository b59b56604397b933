package redq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverConnectAndTerminate(t *testing.T) {
	srv := startServer(t, "")
	driver := NewDriver(2)

	require.True(t, driver.Running())

	conn, err := driver.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, driver.Terminate())
	require.False(t, driver.Running())
}

func TestTerminateIsIdempotent(t *testing.T) {
	driver := NewDriver(1)

	require.NoError(t, driver.Terminate())
	require.NoError(t, driver.Terminate())
	require.NoError(t, driver.Terminate())
}

func TestConnectAfterTerminate(t *testing.T) {
	srv := startServer(t, "")
	driver := NewDriver(1)
	require.NoError(t, driver.Terminate())

	_, err := driver.Connect(testContext(t), srv.Addr(), "")
	require.ErrorIs(t, err, ErrDriverStopped)
}

func TestConnectDialFailure(t *testing.T) {
	driver := startDriver(t, 1)

	// Reserved port on localhost with nothing listening.
	_, err := driver.Connect(testContext(t), "127.0.0.1:1", "")
	require.Error(t, err)
}

func TestBorrowedGroupSurvivesTerminate(t *testing.T) {
	group := NewLoopGroup(2)
	t.Cleanup(func() { group.Shutdown() })

	driver := NewDriverWithGroup(group)
	require.NoError(t, driver.Terminate())

	// The group still accepts work after the borrowing driver is gone.
	done := make(chan struct{})
	err := group.submit(group.pick(), func() { close(done) })
	require.NoError(t, err)
	<-done
}

func TestSharedGroupAcrossDrivers(t *testing.T) {
	srv := startServer(t, "")
	group := NewLoopGroup(2)
	t.Cleanup(func() { group.Shutdown() })

	first := NewDriverWithGroup(group)
	second := NewDriverWithGroup(group)
	t.Cleanup(func() {
		first.Terminate()
		second.Terminate()
	})

	connA, err := first.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { connA.Close() })

	connB, err := second.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { connB.Close() })

	// Terminating one borrower leaves the other's connection working.
	require.NoError(t, first.Terminate())

	streams := NewStreams(connB)
	_, err = streams.Add(testContext(t), "events", map[string]string{"k": "v"})
	require.NoError(t, err)
}

func TestConnectWithPassword(t *testing.T) {
	srv := startServer(t, "sesame")
	driver := startDriver(t, 1)

	conn, err := driver.Connect(testContext(t), srv.Addr(), "sesame")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	streams := NewStreams(conn)
	id, err := streams.Add(testContext(t), "events", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, "1-0", id)
}

func TestConnectWithWrongPassword(t *testing.T) {
	srv := startServer(t, "sesame")
	driver := startDriver(t, 1)

	conn, err := driver.Connect(testContext(t), srv.Addr(), "wrong")
	require.Nil(t, conn)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Error(t, authErr.Unwrap())
}

func TestConnectWithoutPasswordSkipsHandshake(t *testing.T) {
	srv := startServer(t, "")
	driver := startDriver(t, 1)

	conn, err := driver.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Equal(t, int64(0), srv.CommandCount(), "no AUTH round trip without a password")
}

func TestUnauthenticatedCommandsRejected(t *testing.T) {
	srv := startServer(t, "sesame")
	driver := startDriver(t, 1)

	// Skipping the password dodges the handshake but not the server.
	conn, err := driver.Connect(testContext(t), srv.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	streams := NewStreams(conn)
	_, err = streams.Len(testContext(t), "events")
	require.Error(t, err)
}

func TestLeakDetection(t *testing.T) {
	driver := NewDriver(1)

	leaked := false
	driver.onLeak = func() { leaked = true }

	// Simulate what the finalizer does at collection time.
	if driver.running.Load() {
		driver.onLeak()
	}
	require.True(t, leaked, "a running driver reaching the finalizer reports a leak")

	require.NoError(t, driver.Terminate())
	leaked = false
	if driver.running.Load() {
		driver.onLeak()
	}
	require.False(t, leaked, "a terminated driver is not a leak")
}
