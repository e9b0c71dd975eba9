package writer

import (
	"context"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tpchgen/internal/errs"
)

// IPCWriter streams batches into an Arrow IPC file. The file writer is
// created lazily on the first batch; Close finalizes the footer and also
// handles the empty-table case by emitting a schema-only file.
type IPCWriter struct {
	path   string
	schema *arrow.Schema
	file   *os.File
	w      *ipc.FileWriter
	closed bool
}

func NewIPCWriter(path string, schema *arrow.Schema) (*IPCWriter, error) {
	return &IPCWriter{path: path, schema: schema}, nil
}

func (w *IPCWriter) open() error {
	f, err := os.Create(w.path)
	if err != nil {
		return errs.WrapIO(err, "create arrow file")
	}
	fw, err := ipc.NewFileWriter(f,
		ipc.WithSchema(w.schema),
		ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		_ = f.Close()
		return errs.WrapIO(err, "create arrow writer")
	}
	w.file = f
	w.w = fw
	return nil
}

func (w *IPCWriter) WriteBatch(ctx context.Context, rec arrow.Record) error {
	if w.closed {
		return errs.Config("write to closed arrow writer")
	}
	if err := ctx.Err(); err != nil {
		return errs.WrapIO(err, "arrow write canceled")
	}
	if !fieldNamesMatch(w.schema, rec.Schema()) {
		return errs.Schema("record schema does not match arrow writer schema")
	}
	if w.w == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	if err := w.w.Write(rec); err != nil {
		return errs.WrapIO(err, "write arrow record")
	}
	return nil
}

func (w *IPCWriter) Close(_ context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.w == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	if err := w.w.Close(); err != nil {
		return errs.WrapIO(err, "close arrow writer")
	}
	if err := w.file.Close(); err != nil {
		return errs.WrapIO(err, "close arrow file")
	}
	return nil
}
