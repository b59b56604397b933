package redq

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const loopQueueDepth = 128

// LoopGroup is a fixed-size set of single-goroutine executors. Work submitted
// to a loop runs to completion, in submission order, on that loop's goroutine;
// it never migrates. A Connection is pinned to one loop for its whole life,
// which is what gives it in-order replies without per-command locking.
//
// A LoopGroup can be owned by a Driver or shared between several (see
// NewDriverWithGroup).
type LoopGroup struct {
	loops []*loop
	next  atomic.Uint32

	mu     sync.RWMutex
	closed bool
	eg     errgroup.Group
}

type loop struct {
	tasks chan func()
}

// NewLoopGroup starts size worker goroutines. Sizes below one are clamped
// to one.
func NewLoopGroup(size int) *LoopGroup {
	if size < 1 {
		size = 1
	}

	g := &LoopGroup{loops: make([]*loop, size)}
	for i := range g.loops {
		l := &loop{tasks: make(chan func(), loopQueueDepth)}
		g.loops[i] = l
		g.eg.Go(func() error {
			for fn := range l.tasks {
				fn()
			}
			return nil
		})
	}
	return g
}

// Size is the number of loops in the group.
func (g *LoopGroup) Size() int { return len(g.loops) }

// pick assigns the next loop round-robin. Callers keep the returned loop for
// the lifetime of whatever they bind to it.
func (g *LoopGroup) pick() *loop {
	n := g.next.Add(1) - 1
	return g.loops[int(n)%len(g.loops)]
}

// submit schedules fn on l. It reports ErrGroupClosed after Shutdown.
func (g *LoopGroup) submit(l *loop, fn func()) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return ErrGroupClosed
	}
	l.tasks <- fn
	return nil
}

// Shutdown stops accepting work, lets every loop drain what was already
// queued, and blocks until all loop goroutines have exited. It is safe to
// call more than once.
func (g *LoopGroup) Shutdown() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	for _, l := range g.loops {
		close(l.tasks)
	}
	g.mu.Unlock()

	return g.eg.Wait()
}
