// Package aio provides the asynchronous write path. An Engine queues
// positional writes, submits them to background workers, and surfaces
// completions tagged with caller-chosen user data, in whatever order the
// writes finish. A synchronous mode completes writes at submission time
// for platforms or runs where background I/O is not wanted.
package aio

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"tpchgen/internal/errs"
)

// Completion reports one finished write. Res is the byte count on success
// or the negated errno on failure.
type Completion struct {
	UserData uint64
	Res      int32
}

type sqe struct {
	fd       int
	buf      []byte
	n        int
	off      int64
	userData uint64
	fixed    bool
	bufIndex int
}

// Engine is the submission/completion ring. Queued entries move through
// prepared, submitted, and completed states; there is no retry and no
// cancellation.
type Engine struct {
	syncMode bool
	depth    int

	mu         sync.Mutex
	queued     []sqe
	registered [][]byte

	inflight    atomic.Int64
	completed   atomic.Int64
	completions chan Completion
	workers     chan struct{}
}

// NewEngine creates an asynchronous engine with the given queue depth.
func NewEngine(depth int) (*Engine, error) {
	return newEngine(depth, false)
}

// NewSyncEngine creates an engine whose writes complete inline during
// SubmitQueued. The rest of the interface behaves identically.
func NewSyncEngine(depth int) (*Engine, error) {
	return newEngine(depth, true)
}

func newEngine(depth int, syncMode bool) (*Engine, error) {
	if depth <= 0 {
		return nil, errs.Config("queue depth must be positive, got %d", depth)
	}
	return &Engine{
		syncMode:    syncMode,
		depth:       depth,
		completions: make(chan Completion, depth*8),
		workers:     make(chan struct{}, depth),
	}, nil
}

// Pending returns the number of submitted writes without a consumed
// completion.
func (e *Engine) Pending() int64 {
	return e.inflight.Load()
}

// Completed returns the number of completions consumed so far.
func (e *Engine) Completed() int64 {
	return e.completed.Load()
}

// QueueWrite prepares a positional write of buf[:n] at off. When the
// submission queue is full the queued entries are submitted first.
func (e *Engine) QueueWrite(fd int, buf []byte, n int, off int64, userData uint64) error {
	if n < 0 || n > len(buf) {
		return errs.Config("write length %d out of range for buffer of %d bytes", n, len(buf))
	}
	return e.enqueue(sqe{fd: fd, buf: buf, n: n, off: off, userData: userData})
}

// QueueWriteFixed prepares a write out of a registered buffer.
func (e *Engine) QueueWriteFixed(fd, n int, off int64, userData uint64, bufIndex int) error {
	e.mu.Lock()
	registered := e.registered
	e.mu.Unlock()
	if bufIndex < 0 || bufIndex >= len(registered) {
		return errs.Resource("fixed buffer index %d not registered", bufIndex)
	}
	if n < 0 || n > len(registered[bufIndex]) {
		return errs.Config("write length %d out of range for fixed buffer of %d bytes",
			n, len(registered[bufIndex]))
	}
	return e.enqueue(sqe{fd: fd, n: n, off: off, userData: userData, fixed: true, bufIndex: bufIndex})
}

func (e *Engine) enqueue(q sqe) error {
	e.mu.Lock()
	full := len(e.queued) >= e.depth
	e.mu.Unlock()
	if full {
		if _, err := e.SubmitQueued(); err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.queued = append(e.queued, q)
	e.mu.Unlock()
	return nil
}

// RegisterBuffers pins a set of buffers for QueueWriteFixed.
func (e *Engine) RegisterBuffers(bufs [][]byte) error {
	for i, b := range bufs {
		if len(b) == 0 {
			return errs.Resource("cannot register empty buffer at index %d", i)
		}
	}
	e.mu.Lock()
	e.registered = bufs
	e.mu.Unlock()
	return nil
}

// SubmitQueued moves every queued entry in flight and returns how many
// were submitted.
func (e *Engine) SubmitQueued() (int, error) {
	e.mu.Lock()
	batch := e.queued
	e.queued = nil
	registered := e.registered
	e.mu.Unlock()

	for _, q := range batch {
		e.inflight.Add(1)
		if e.syncMode {
			e.completions <- e.perform(q, registered)
			continue
		}
		e.workers <- struct{}{}
		go func(q sqe) {
			defer func() { <-e.workers }()
			e.completions <- e.perform(q, registered)
		}(q)
	}
	return len(batch), nil
}

func (e *Engine) perform(q sqe, registered [][]byte) Completion {
	buf := q.buf
	if q.fixed {
		buf = registered[q.bufIndex]
	}
	n, err := unix.Pwrite(q.fd, buf[:q.n], q.off)
	if err != nil {
		res := int32(-int(unix.EIO))
		if errno, ok := err.(unix.Errno); ok {
			res = -int32(errno)
		}
		return Completion{UserData: q.userData, Res: res}
	}
	return Completion{UserData: q.userData, Res: int32(n)}
}

// WaitCompletions blocks until at least minN completions arrived, drains
// everything ready, and returns the user data tags. A negative completion
// result turns into an I/O error.
func (e *Engine) WaitCompletions(minN int) ([]uint64, error) {
	var (
		out  []uint64
		cerr error
	)
	take := func(c Completion) {
		e.inflight.Add(-1)
		e.completed.Add(1)
		if c.Res < 0 && cerr == nil {
			cerr = errs.IO("async write failed: %s (user_data %d)",
				unix.Errno(-c.Res).Error(), c.UserData)
			return
		}
		out = append(out, c.UserData)
	}

	for len(out) < minN && cerr == nil {
		if e.inflight.Load() == 0 {
			break
		}
		take(<-e.completions)
	}
	for {
		select {
		case c := <-e.completions:
			take(c)
		default:
			return out, cerr
		}
	}
}

// ProcessCompletions drains every ready completion through fn without
// blocking and returns how many were processed.
func (e *Engine) ProcessCompletions(fn func(userData uint64, res int32)) (int, error) {
	count := 0
	for {
		select {
		case c := <-e.completions:
			e.inflight.Add(-1)
			e.completed.Add(1)
			if c.Res < 0 {
				return count, errs.IO("async write failed: %s (user_data %d)",
					unix.Errno(-c.Res).Error(), c.UserData)
			}
			fn(c.UserData, c.Res)
			count++
		default:
			return count, nil
		}
	}
}

// Flush submits anything still queued and consumes completions until no
// write remains in flight.
func (e *Engine) Flush() error {
	if _, err := e.SubmitQueued(); err != nil {
		return err
	}
	var cerr error
	for e.inflight.Load() > 0 {
		c := <-e.completions
		e.inflight.Add(-1)
		e.completed.Add(1)
		if c.Res < 0 && cerr == nil {
			cerr = errs.IO("async write failed: %s (user_data %d)",
				unix.Errno(-c.Res).Error(), c.UserData)
		}
	}
	return cerr
}
