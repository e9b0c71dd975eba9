// Package writer contains the per-format table writers and the
// multi-table coordinator that drives them over the shared async context.
package writer

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"tpchgen/internal/aio"
	"tpchgen/internal/errs"
)

// TableWriter consumes record batches for one table. Close is idempotent
// and finalizes whatever the format needs (footers, metadata, manifests).
type TableWriter interface {
	WriteBatch(ctx context.Context, rec arrow.Record) error
	Close(ctx context.Context) error
}

// Format selects the on-disk representation.
type Format int

const (
	FormatCSV Format = iota
	FormatParquet
	FormatArrow
	FormatIceberg
	FormatPaimon
)

var formatNames = [...]string{
	FormatCSV:     "csv",
	FormatParquet: "parquet",
	FormatArrow:   "arrow",
	FormatIceberg: "iceberg",
	FormatPaimon:  "paimon",
}

func (f Format) String() string {
	if int(f) < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Extension returns the file suffix for file-based formats. Lakehouse
// formats produce a directory named after the table instead.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatParquet:
		return ".parquet"
	case FormatArrow:
		return ".arrow"
	default:
		return ""
	}
}

// IsDirectory reports whether the format writes a directory tree.
func (f Format) IsDirectory() bool {
	return f == FormatIceberg || f == FormatPaimon
}

// ParseFormat resolves a format by name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if n == lowered {
			return Format(i), nil
		}
	}
	return 0, errs.Config("unknown format %q (want csv, parquet, arrow, iceberg, or paimon)", name)
}

// Options carries the per-format tuning knobs writers need.
type Options struct {
	// Compression names the parquet codec: snappy, zstd, gzip, or none.
	Compression string
	// RowGroupRows is the parquet row group size in rows.
	RowGroupRows int64
	// Streaming makes the parquet writer emit row groups per batch
	// instead of accumulating a table.
	Streaming bool
	// AsyncParquet routes the encoded parquet bytes through the shared
	// async context as a single write.
	AsyncParquet bool
	// FlushRows is the lakehouse data file flush threshold.
	FlushRows int64
}

// DefaultFlushRows is the lakehouse buffered-row threshold per data file.
const DefaultFlushRows = 10_000_000

func (o Options) flushRows() int64 {
	if o.FlushRows > 0 {
		return o.FlushRows
	}
	return DefaultFlushRows
}

func (o Options) rowGroupRows() int64 {
	if o.RowGroupRows > 0 {
		return o.RowGroupRows
	}
	return 1 << 20
}

// New builds the writer for a format. path is the target file for
// file-based formats and the table directory for lakehouse formats.
func New(f Format, path string, schema *arrow.Schema, actx *aio.SharedContext, opts Options) (TableWriter, error) {
	switch f {
	case FormatCSV:
		return NewCSVWriter(actx, path, schema)
	case FormatParquet:
		return NewParquetWriter(path, schema, actx, opts)
	case FormatArrow:
		return NewIPCWriter(path, schema)
	case FormatIceberg:
		return NewIcebergWriter(path, schema, opts)
	case FormatPaimon:
		return NewPaimonWriter(path, schema, opts)
	default:
		return nil, errs.Config("unknown format %d", f)
	}
}

// fieldNamesMatch compares two schemas by field name in order.
func fieldNamesMatch(a, b *arrow.Schema) bool {
	if a.NumFields() != b.NumFields() {
		return false
	}
	for i := 0; i < a.NumFields(); i++ {
		if a.Field(i).Name != b.Field(i).Name {
			return false
		}
	}
	return true
}
