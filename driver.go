package redq

import (
	"context"
	"net"
	"runtime"
	"sync/atomic"

	"github.com/redq-io/redq/resp"
)

// Driver establishes connections and owns (or borrows) the loop group that
// drives them.
//
// A Driver built with NewDriver owns its group and must retire it: call
// Terminate when done, or the worker goroutines leak. A Driver built with
// NewDriverWithGroup borrows a group whose lifecycle belongs to the caller;
// Terminate then only marks the driver stopped.
type Driver struct {
	group  *LoopGroup
	owned  bool
	dialer net.Dialer

	running atomic.Bool
	onLeak  func()
}

// NewDriver creates a driver with its own loop group of the given size.
func NewDriver(loops int) *Driver {
	return newDriver(NewLoopGroup(loops), true)
}

// NewDriverWithGroup creates a driver on a borrowed loop group. Terminate
// never shuts the group down; that remains the caller's responsibility.
func NewDriverWithGroup(group *LoopGroup) *Driver {
	return newDriver(group, false)
}

func newDriver(group *LoopGroup, owned bool) *Driver {
	d := &Driver{group: group, owned: owned}
	d.running.Store(true)
	d.onLeak = func() {
		panic("redq: Driver garbage collected while running; call Terminate")
	}
	runtime.SetFinalizer(d, func(d *Driver) {
		if d.running.Load() {
			d.onLeak()
		}
	})
	return d
}

// Running reports whether the driver has not yet been terminated.
func (d *Driver) Running() bool { return d.running.Load() }

// Connect dials addr ("host:port") and binds the new connection to one of
// the group's loops. When password is non-empty an AUTH round trip runs
// before the connection is handed back; the connection only reaches the
// caller once authentication succeeded. On authentication failure the
// socket is closed by the driver and an *AuthError returned.
func (d *Driver) Connect(ctx context.Context, addr, password string) (*Connection, error) {
	if !d.running.Load() {
		return nil, ErrDriverStopped
	}

	netConn, err := d.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	conn := newConnection(netConn, d.group, d.group.pick())

	if password != "" {
		reply, err := conn.Do(ctx, resp.NewCommand("AUTH").AddString(password))
		if err != nil {
			conn.Close()
			return nil, err
		}
		if _, err := reply.AsStatus(); err != nil {
			conn.Close()
			return nil, &AuthError{Err: err}
		}
	}

	return conn, nil
}

// Terminate stops the driver. It is idempotent: the running flag flips
// exactly once no matter how many callers race here. When the driver owns
// its loop group the shutdown blocks until queued work has drained and all
// loop goroutines exited; a borrowed group is left untouched.
func (d *Driver) Terminate() error {
	if !d.running.CompareAndSwap(true, false) {
		return nil
	}
	if d.owned {
		return d.group.Shutdown()
	}
	return nil
}
