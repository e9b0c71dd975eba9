package writer

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"tpchgen/internal/aio"
	"tpchgen/internal/errs"
)

func parquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, errs.Config("unknown parquet compression %q", name)
	}
}

func parquetWriterProps(codec compress.Compression) *parquet.WriterProperties {
	return parquet.NewWriterProperties(parquet.WithCompression(codec))
}

// defaultLakehouseCodec is the codec for lakehouse data files.
func defaultLakehouseCodec() compress.Compression {
	return compress.Codecs.Snappy
}

// ParquetWriter buffers batches and writes them as one table at close. In
// streaming mode batches go straight to the file writer instead; in async
// mode the close-time encoding goes through the shared context as a single
// submitted write.
type ParquetWriter struct {
	path   string
	schema *arrow.Schema
	codec  compress.Compression
	opts   Options
	actx   *aio.SharedContext

	recs []arrow.Record

	stream *pqarrow.FileWriter

	closed bool
}

func NewParquetWriter(path string, schema *arrow.Schema, actx *aio.SharedContext, opts Options) (*ParquetWriter, error) {
	codec, err := parquetCompression(opts.Compression)
	if err != nil {
		return nil, err
	}
	if opts.AsyncParquet && actx == nil {
		return nil, errs.Config("async parquet mode needs a shared async context")
	}
	return &ParquetWriter{
		path:   path,
		schema: schema,
		codec:  codec,
		opts:   opts,
		actx:   actx,
	}, nil
}

func (w *ParquetWriter) WriteBatch(ctx context.Context, rec arrow.Record) error {
	if w.closed {
		return errs.Config("write to closed parquet writer")
	}
	if err := ctx.Err(); err != nil {
		return errs.WrapIO(err, "parquet write canceled")
	}
	if !fieldNamesMatch(w.schema, rec.Schema()) {
		return errs.Schema("record schema does not match parquet writer schema")
	}
	if w.opts.Streaming {
		return w.writeStreaming(rec)
	}
	rec.Retain()
	w.recs = append(w.recs, rec)
	return nil
}

func (w *ParquetWriter) writeStreaming(rec arrow.Record) error {
	if w.stream == nil {
		f, err := os.Create(w.path)
		if err != nil {
			return errs.WrapIO(err, "create parquet file")
		}
		fw, err := pqarrow.NewFileWriter(w.schema, f,
			parquetWriterProps(w.codec),
			pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator())))
		if err != nil {
			_ = f.Close()
			return errs.WrapIO(err, "create parquet writer")
		}
		w.stream = fw
	}
	if err := w.stream.Write(rec); err != nil {
		return errs.WrapIO(err, "write parquet row group")
	}
	return nil
}

// Close materializes the file. Closing without batches still produces a
// valid empty parquet file carrying the schema.
func (w *ParquetWriter) Close(_ context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.opts.Streaming {
		return w.closeStreaming()
	}

	table := array.NewTableFromRecords(w.schema, w.recs)
	defer table.Release()
	for _, rec := range w.recs {
		rec.Release()
	}
	w.recs = nil

	if w.opts.AsyncParquet {
		var buf bytes.Buffer
		if err := pqarrow.WriteTable(table, &buf, w.opts.rowGroupRows(),
			parquetWriterProps(w.codec), pqarrow.DefaultWriterProps()); err != nil {
			return errs.WrapIO(err, "encode parquet table")
		}
		return w.submitEncoded(buf.Bytes())
	}

	f, err := os.Create(w.path)
	if err != nil {
		return errs.WrapIO(err, "create parquet file")
	}
	// WriteTable closes the sink along with the file writer.
	if err := pqarrow.WriteTable(table, f, w.opts.rowGroupRows(),
		parquetWriterProps(w.codec), pqarrow.DefaultWriterProps()); err != nil {
		_ = f.Close()
		return errs.WrapIO(err, "write parquet table")
	}
	return nil
}

func (w *ParquetWriter) closeStreaming() error {
	if w.stream == nil {
		// No batches arrived; emit an empty file with the schema.
		if err := w.writeStreamingEmpty(); err != nil {
			return err
		}
	}
	// The file writer owns the sink and closes it.
	if err := w.stream.Close(); err != nil {
		return errs.WrapIO(err, "close parquet writer")
	}
	return nil
}

func (w *ParquetWriter) writeStreamingEmpty() error {
	f, err := os.Create(w.path)
	if err != nil {
		return errs.WrapIO(err, "create parquet file")
	}
	fw, err := pqarrow.NewFileWriter(w.schema, f,
		parquetWriterProps(w.codec),
		pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator())))
	if err != nil {
		_ = f.Close()
		return errs.WrapIO(err, "create parquet writer")
	}
	w.stream = fw
	return nil
}

// submitEncoded pushes the whole encoded file through the async engine as
// one write, then flushes and closes the registered file.
func (w *ParquetWriter) submitEncoded(encoded []byte) error {
	handle, err := w.actx.RegisterFile(w.path)
	if err != nil {
		return err
	}
	if err := w.actx.QueueWrite(handle, encoded, len(encoded)); err != nil {
		return err
	}
	if _, err := w.actx.Engine().SubmitQueued(); err != nil {
		return err
	}
	return w.actx.CloseFile(handle)
}
