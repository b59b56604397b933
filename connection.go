package redq

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/redq-io/redq/resp"
)

// Connection is a single duplex channel to the server. Commands issued on it
// complete in the order they were sent; the server guarantees in-order
// replies, and the connection's loop affinity guarantees in-order writes.
//
// A Connection is built for single-owner use. Issuing commands from several
// goroutines at once is safe but serializes on the connection's loop.
type Connection struct {
	conn   net.Conn
	group  *LoopGroup
	loop   *loop
	reader *resp.Reader
	writer *resp.Writer

	mu       sync.Mutex
	closed   bool
	inFlight int
	lastUsed time.Time
}

func newConnection(conn net.Conn, group *LoopGroup, l *loop) *Connection {
	return &Connection{
		conn:     conn,
		group:    group,
		loop:     l,
		reader:   resp.NewReader(conn),
		writer:   resp.NewWriter(conn),
		lastUsed: time.Now(),
	}
}

// Do issues one command and waits for its reply.
func (c *Connection) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	replies, err := c.DoBatch(ctx, []*resp.Command{cmd})
	if err != nil {
		return resp.Value{}, err
	}
	return replies[0], nil
}

// DoBatch pipelines several commands: all requests are written before any
// reply is read, and replies come back in request order. The round trip runs
// on the connection's loop; DoBatch blocks until it finishes or ctx is done.
func (c *Connection) DoBatch(ctx context.Context, cmds []*resp.Command) ([]resp.Value, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		replies []resp.Value
		err     error
	}
	done := make(chan outcome, 1)

	err := c.group.submit(c.loop, func() {
		replies, err := c.roundTrip(ctx, cmds)
		done <- outcome{replies, err}
	})
	if err != nil {
		return nil, err
	}

	select {
	case out := <-done:
		return out.replies, out.err
	case <-ctx.Done():
		// The round trip keeps running on the loop; later submissions
		// queue behind it, so ordering is preserved either way.
		return nil, ctx.Err()
	}
}

// roundTrip runs on the connection's loop goroutine.
func (c *Connection) roundTrip(ctx context.Context, cmds []*resp.Command) ([]resp.Value, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	c.inFlight += len(cmds)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight -= len(cmds)
		c.lastUsed = time.Now()
		c.mu.Unlock()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	for _, cmd := range cmds {
		if err := c.writer.WriteCommand(cmd); err != nil {
			c.failConnection()
			return nil, err
		}
	}
	if err := c.writer.Flush(); err != nil {
		c.failConnection()
		return nil, err
	}

	replies := make([]resp.Value, 0, len(cmds))
	for range cmds {
		reply, err := c.reader.ReadValue()
		if err != nil {
			c.failConnection()
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

// failConnection marks the connection broken and closes the socket, which
// unblocks any pending transport reads.
func (c *Connection) failConnection() {
	c.mu.Lock()
	alreadyClosed := c.closed
	c.closed = true
	c.mu.Unlock()
	if !alreadyClosed {
		c.conn.Close()
	}
}

// InFlight returns the number of commands currently awaiting replies.
func (c *Connection) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastUsed returns when the connection last finished a round trip.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// IsClosed reports whether the connection was closed or failed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// RemoteAddr returns the address of the peer.
func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close shuts the connection down. Operations already queued on the loop
// fail with ErrConnectionClosed instead of hanging. Close is idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}
