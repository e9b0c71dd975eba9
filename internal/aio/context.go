package aio

import (
	"sync"

	"golang.org/x/sys/unix"

	"tpchgen/internal/errs"
)

// Handle identifies a file registered with a SharedContext. Handles are
// assigned monotonically and never reused within a context.
type Handle uint32

// SharedContext couples an Engine with file bookkeeping. Writers queue
// sequential writes against a handle; the context turns them into
// positional writes and keeps the invariant that a file's tracked offset
// equals the cumulative bytes queued against it.
type SharedContext struct {
	engine *Engine

	mu          sync.Mutex
	files       map[Handle]*trackedFile
	next        Handle
	callbacks   map[Handle]func(tag uint32)
	queuedBytes int64
}

type trackedFile struct {
	fd     int
	path   string
	offset int64
}

// NewSharedContext wraps an engine. The context owns the files it opens,
// not the engine.
func NewSharedContext(engine *Engine) *SharedContext {
	return &SharedContext{
		engine:    engine,
		files:     make(map[Handle]*trackedFile),
		next:      1,
		callbacks: make(map[Handle]func(tag uint32)),
	}
}

// OnComplete installs a completion callback for one handle. Dispatch
// happens on the goroutine draining completions, so a single-goroutine
// writer sees its own callbacks synchronously.
func (c *SharedContext) OnComplete(h Handle, fn func(tag uint32)) {
	c.mu.Lock()
	c.callbacks[h] = fn
	c.mu.Unlock()
}

func (c *SharedContext) dispatch(ud uint64) {
	h, tag := DecodeUserData(ud)
	c.mu.Lock()
	fn := c.callbacks[h]
	c.mu.Unlock()
	if fn != nil {
		fn(tag)
	}
}

// ProcessCompletions drains ready completions and routes them to the
// registered per-handle callbacks.
func (c *SharedContext) ProcessCompletions() (int, error) {
	return c.engine.ProcessCompletions(func(ud uint64, _ int32) {
		c.dispatch(ud)
	})
}

// WaitCompletions submits anything queued, blocks for at least minN
// completions, and routes them to the registered callbacks.
func (c *SharedContext) WaitCompletions(minN int) (int, error) {
	if _, err := c.engine.SubmitQueued(); err != nil {
		return 0, err
	}
	tags, err := c.engine.WaitCompletions(minN)
	for _, ud := range tags {
		c.dispatch(ud)
	}
	return len(tags), err
}

// Engine exposes the underlying engine for completion processing.
func (c *SharedContext) Engine() *Engine {
	return c.engine
}

// RegisterFile opens path for writing (create, truncate) and returns its
// handle.
func (c *SharedContext) RegisterFile(path string) (Handle, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
	if err != nil {
		return 0, errs.IO("open %s: %v", path, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.next
	c.next++
	c.files[h] = &trackedFile{fd: fd, path: path}
	return h, nil
}

// QueueWrite queues buf[:n] at the file's current offset and advances the
// offset by n. The completion's user data carries the handle.
func (c *SharedContext) QueueWrite(h Handle, buf []byte, n int) error {
	return c.QueueWriteTagged(h, buf, n, 0)
}

// QueueWriteTagged is QueueWrite with a caller tag in the low 32 bits of
// the user data, so a writer can tell its own submissions apart.
func (c *SharedContext) QueueWriteTagged(h Handle, buf []byte, n int, tag uint32) error {
	c.mu.Lock()
	f, ok := c.files[h]
	if !ok {
		c.mu.Unlock()
		return errs.Resource("file handle %d not registered", h)
	}
	off := f.offset
	f.offset += int64(n)
	c.queuedBytes += int64(n)
	c.mu.Unlock()
	return c.engine.QueueWrite(f.fd, buf, n, off, EncodeUserData(h, tag))
}

// BytesQueued returns the cumulative bytes queued across every handle,
// including handles already closed.
func (c *SharedContext) BytesQueued() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queuedBytes
}

// Offset returns the cumulative bytes queued against a handle.
func (c *SharedContext) Offset(h Handle) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[h]
	if !ok {
		return 0, errs.Resource("file handle %d not registered", h)
	}
	return f.offset, nil
}

// Path returns the path a handle was registered with.
func (c *SharedContext) Path(h Handle) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[h]
	if !ok {
		return "", errs.Resource("file handle %d not registered", h)
	}
	return f.path, nil
}

// CloseFile flushes outstanding writes and closes one file.
func (c *SharedContext) CloseFile(h Handle) error {
	if err := c.engine.Flush(); err != nil {
		return err
	}
	c.mu.Lock()
	f, ok := c.files[h]
	delete(c.files, h)
	c.mu.Unlock()
	if !ok {
		return errs.Resource("file handle %d not registered", h)
	}
	if err := unix.Close(f.fd); err != nil {
		return errs.IO("close %s: %v", f.path, err)
	}
	return nil
}

// CloseAll flushes outstanding writes and closes every registered file.
func (c *SharedContext) CloseAll() error {
	if err := c.engine.Flush(); err != nil {
		return err
	}
	c.mu.Lock()
	files := c.files
	c.files = make(map[Handle]*trackedFile)
	c.mu.Unlock()

	var first error
	for _, f := range files {
		if err := unix.Close(f.fd); err != nil && first == nil {
			first = errs.IO("close %s: %v", f.path, err)
		}
	}
	return first
}

// EncodeUserData packs a handle and a caller tag into a user data word.
func EncodeUserData(h Handle, tag uint32) uint64 {
	return uint64(h)<<32 | uint64(tag)
}

// DecodeUserData splits a user data word back into handle and tag.
func DecodeUserData(ud uint64) (Handle, uint32) {
	return Handle(ud >> 32), uint32(ud)
}
