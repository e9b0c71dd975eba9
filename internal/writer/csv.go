package writer

import (
	"context"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"tpchgen/internal/aio"
	"tpchgen/internal/errs"
)

const (
	csvBufCount = 8
	csvBufSize  = 1 << 20

	csvDelimiter = ','
	csvQuote     = '"'
)

// CSVWriter encodes batches as delimited text and pushes filled buffers
// through the shared async context. Completions are tagged with the pool
// index so a buffer is only reused after its write finished.
type CSVWriter struct {
	actx   *aio.SharedContext
	handle aio.Handle
	schema *arrow.Schema

	bufs      [csvBufCount][]byte
	free      []int
	active    int
	activeLen int

	rowScratch  []byte
	wroteHeader bool
	closed      bool
}

// NewCSVWriter registers path with the async context and prepares the
// buffer pool.
func NewCSVWriter(actx *aio.SharedContext, path string, schema *arrow.Schema) (*CSVWriter, error) {
	handle, err := actx.RegisterFile(path)
	if err != nil {
		return nil, err
	}
	w := &CSVWriter{
		actx:   actx,
		handle: handle,
		schema: schema,
	}
	for i := range w.bufs {
		w.bufs[i] = make([]byte, csvBufSize)
		if i > 0 {
			w.free = append(w.free, i)
		}
	}
	actx.OnComplete(handle, func(tag uint32) {
		w.free = append(w.free, int(tag))
	})
	return w, nil
}

// WriteBatch encodes every row of rec into the buffer pool.
func (w *CSVWriter) WriteBatch(ctx context.Context, rec arrow.Record) error {
	if w.closed {
		return errs.Config("write to closed csv writer")
	}
	if !fieldNamesMatch(w.schema, rec.Schema()) {
		return errs.Schema("record schema does not match csv writer schema")
	}
	if !w.wroteHeader {
		if err := w.appendRow(w.headerRow()); err != nil {
			return err
		}
		w.wroteHeader = true
	}

	nRows := int(rec.NumRows())
	cols := rec.Columns()
	for row := 0; row < nRows; row++ {
		if err := ctx.Err(); err != nil {
			return errs.WrapIO(err, "csv write canceled")
		}
		line := w.rowScratch[:0]
		for i, col := range cols {
			if i > 0 {
				line = append(line, csvDelimiter)
			}
			line = appendCSVField(line, col, row)
		}
		line = append(line, '\n')
		w.rowScratch = line[:0]
		if err := w.appendRow(line); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the partial buffer and waits for every outstanding write.
func (w *CSVWriter) Close(_ context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.activeLen > 0 {
		if err := w.submitActive(); err != nil {
			return err
		}
	}
	if _, err := w.actx.Engine().SubmitQueued(); err != nil {
		return err
	}
	return w.actx.Engine().Flush()
}

func (w *CSVWriter) headerRow() []byte {
	var line []byte
	for i := 0; i < w.schema.NumFields(); i++ {
		if i > 0 {
			line = append(line, csvDelimiter)
		}
		line = append(line, w.schema.Field(i).Name...)
	}
	return append(line, '\n')
}

// appendRow copies the encoded row into the active buffer, rotating
// buffers through the async context when the active one fills up.
func (w *CSVWriter) appendRow(line []byte) error {
	if len(line) > csvBufSize {
		return errs.Resource("csv row of %d bytes exceeds buffer size %d", len(line), csvBufSize)
	}
	if w.activeLen+len(line) > csvBufSize {
		if err := w.submitActive(); err != nil {
			return err
		}
		if err := w.acquireBuffer(); err != nil {
			return err
		}
	}
	copy(w.bufs[w.active][w.activeLen:], line)
	w.activeLen += len(line)
	return nil
}

func (w *CSVWriter) submitActive() error {
	err := w.actx.QueueWriteTagged(w.handle, w.bufs[w.active], w.activeLen, uint32(w.active))
	w.activeLen = 0
	return err
}

func (w *CSVWriter) acquireBuffer() error {
	for {
		if _, err := w.actx.ProcessCompletions(); err != nil {
			return err
		}
		if n := len(w.free); n > 0 {
			w.active = w.free[n-1]
			w.free = w.free[:n-1]
			w.activeLen = 0
			return nil
		}
		if _, err := w.actx.WaitCompletions(1); err != nil {
			return err
		}
	}
}

// appendCSVField encodes one cell. Values are quoted only when they
// contain the delimiter, a quote, or a line break; embedded quotes are
// doubled. Nulls encode as the empty string.
func appendCSVField(dst []byte, col arrow.Array, row int) []byte {
	if col.IsNull(row) {
		return dst
	}
	switch c := col.(type) {
	case *array.Int64:
		return strconv.AppendInt(dst, c.Value(row), 10)
	case *array.Float64:
		// Shortest round-trip form, the same text %v would print.
		return strconv.AppendFloat(dst, c.Value(row), 'g', -1, 64)
	case *array.String:
		return appendEscaped(dst, c.Value(row))
	default:
		return appendEscaped(dst, col.ValueStr(row))
	}
}

func appendEscaped(dst []byte, s string) []byte {
	if !needsQuoting(s) {
		return append(dst, s...)
	}
	dst = append(dst, csvQuote)
	for i := 0; i < len(s); i++ {
		if s[i] == csvQuote {
			dst = append(dst, csvQuote)
		}
		dst = append(dst, s[i])
	}
	return append(dst, csvQuote)
}

func needsQuoting(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case csvDelimiter, csvQuote, '\n', '\r':
			return true
		}
	}
	return false
}
