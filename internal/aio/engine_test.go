package aio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"tpchgen/internal/errs"
)

func openTemp(t *testing.T) (int, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.bin")
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Close(fd) })
	return fd, path
}

func TestEngineRejectsBadDepth(t *testing.T) {
	_, err := NewEngine(0)
	assert.True(t, errs.Is(err, errs.ErrConfig))
	_, err = NewSyncEngine(-3)
	assert.True(t, errs.Is(err, errs.ErrConfig))
}

func testWriteReadBack(t *testing.T, e *Engine) {
	fd, path := openTemp(t)

	payload := []byte("hello async world")
	require.NoError(t, e.QueueWrite(fd, payload, len(payload), 0, 7))
	n, err := e.SubmitQueued()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tags, err := e.WaitCompletions(1)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, uint64(7), tags[0])
	assert.Zero(t, e.Pending())
	assert.Equal(t, int64(1), e.Completed())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSyncEngineWriteReadBack(t *testing.T) {
	e, err := NewSyncEngine(4)
	require.NoError(t, err)
	testWriteReadBack(t, e)
}

func TestAsyncEngineWriteReadBack(t *testing.T) {
	e, err := NewEngine(4)
	require.NoError(t, err)
	testWriteReadBack(t, e)
}

func TestPositionalWrites(t *testing.T) {
	e, err := NewEngine(8)
	require.NoError(t, err)
	fd, path := openTemp(t)

	// Queue out of order; positional writes land where told.
	require.NoError(t, e.QueueWrite(fd, []byte("world"), 5, 5, 2))
	require.NoError(t, e.QueueWrite(fd, []byte("hello"), 5, 0, 1))
	require.NoError(t, e.Flush())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "helloworld", string(got))
}

func TestQueueWriteValidatesLength(t *testing.T) {
	e, err := NewSyncEngine(2)
	require.NoError(t, err)
	err = e.QueueWrite(3, []byte("ab"), 5, 0, 0)
	assert.True(t, errs.Is(err, errs.ErrConfig))
}

func TestFixedBuffers(t *testing.T) {
	e, err := NewSyncEngine(4)
	require.NoError(t, err)
	fd, path := openTemp(t)

	bufs := [][]byte{[]byte("first"), []byte("second")}
	require.NoError(t, e.RegisterBuffers(bufs))

	err = e.QueueWriteFixed(fd, 5, 0, 9, 3)
	assert.True(t, errs.Is(err, errs.ErrResource))

	require.NoError(t, e.QueueWriteFixed(fd, 6, 0, 9, 1))
	require.NoError(t, e.Flush())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriteErrorSurfacesAsIO(t *testing.T) {
	e, err := NewSyncEngine(2)
	require.NoError(t, err)

	// Writing to a read-only fd must fail with EBADF.
	path := filepath.Join(t.TempDir(), "ro.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	require.NoError(t, e.QueueWrite(fd, []byte("y"), 1, 0, 1))
	_, err = e.SubmitQueued()
	require.NoError(t, err)
	_, err = e.WaitCompletions(1)
	assert.True(t, errs.Is(err, errs.ErrIO))
	assert.Zero(t, e.Pending())
}

func TestSubmitOnFullQueue(t *testing.T) {
	e, err := NewEngine(2)
	require.NoError(t, err)
	fd, path := openTemp(t)

	line := []byte("x\n")
	var off int64
	for i := 0; i < 10; i++ {
		require.NoError(t, e.QueueWrite(fd, line, len(line), off, uint64(i)))
		off += int64(len(line))
	}
	require.NoError(t, e.Flush())
	assert.Zero(t, e.Pending())
	assert.Equal(t, int64(10), e.Completed())

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), st.Size())
}

func TestCompletedCountsEveryDrainPath(t *testing.T) {
	e, err := NewSyncEngine(4)
	require.NoError(t, err)
	fd, _ := openTemp(t)

	require.NoError(t, e.QueueWrite(fd, []byte("a"), 1, 0, 1))
	require.NoError(t, e.QueueWrite(fd, []byte("b"), 1, 1, 2))
	_, err = e.SubmitQueued()
	require.NoError(t, err)
	n, err := e.ProcessCompletions(func(uint64, int32) {})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), e.Completed())

	require.NoError(t, e.QueueWrite(fd, []byte("c"), 1, 2, 3))
	require.NoError(t, e.Flush())
	assert.Equal(t, int64(3), e.Completed())
}

func TestProcessCompletionsNonBlocking(t *testing.T) {
	e, err := NewSyncEngine(4)
	require.NoError(t, err)

	n, err := e.ProcessCompletions(func(uint64, int32) {
		t.Fatal("nothing was submitted")
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}
