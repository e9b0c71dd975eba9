package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"

	"tpchgen/internal/errs"
)

func icebergType(dt arrow.DataType) (string, error) {
	switch dt.ID() {
	case arrow.INT64:
		return "long", nil
	case arrow.INT32:
		return "int", nil
	case arrow.FLOAT64:
		return "double", nil
	case arrow.FLOAT32:
		return "float", nil
	case arrow.STRING:
		return "string", nil
	case arrow.BOOL:
		return "boolean", nil
	case arrow.DATE32:
		return "date", nil
	case arrow.TIMESTAMP:
		return "timestamp", nil
	default:
		return "", errs.Schema("unsupported type %s for iceberg", dt)
	}
}

type dataFileInfo struct {
	name  string
	rows  int64
	bytes int64
}

// flushParquetFile writes the buffered records as one parquet file and
// releases them, reporting the row and byte counts.
func flushParquetFile(path string, schema *arrow.Schema, recs []arrow.Record) (dataFileInfo, error) {
	table := array.NewTableFromRecords(schema, recs)
	defer table.Release()
	for _, rec := range recs {
		rec.Release()
	}

	f, err := os.Create(path)
	if err != nil {
		return dataFileInfo{}, errs.WrapIO(err, "create data file")
	}
	// WriteTable closes the sink along with the file writer.
	if err := pqarrow.WriteTable(table, f, 1<<20,
		parquetWriterProps(defaultLakehouseCodec()), pqarrow.DefaultWriterProps()); err != nil {
		_ = f.Close()
		return dataFileInfo{}, errs.WrapIO(err, "write data file")
	}
	st, err := os.Stat(path)
	if err != nil {
		return dataFileInfo{}, errs.WrapIO(err, "stat data file")
	}
	return dataFileInfo{name: filepath.Base(path), rows: table.NumRows(), bytes: st.Size()}, nil
}

func writeDoc(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.WrapIO(err, "write "+filepath.Base(path))
	}
	return nil
}

// IcebergWriter lays out an Iceberg v1 table: parquet data files under
// data/ plus a manifest, manifest list, table metadata, and version hint
// under metadata/, all written at close in that order.
type IcebergWriter struct {
	dir        string
	schema     *arrow.Schema
	flushRows  int64
	snapshotID int64

	recs     []arrow.Record
	buffered int64
	files    []dataFileInfo

	initialized bool
	closed      bool
}

func NewIcebergWriter(dir string, schema *arrow.Schema, opts Options) (*IcebergWriter, error) {
	return &IcebergWriter{
		dir:        dir,
		schema:     schema,
		flushRows:  opts.flushRows(),
		snapshotID: time.Now().UnixMilli(),
	}, nil
}

func (w *IcebergWriter) init() error {
	for _, sub := range []string{"data", "metadata"} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return errs.WrapIO(err, "create iceberg directory")
		}
	}
	// Fail on unsupported column types before any data is written.
	for i := 0; i < w.schema.NumFields(); i++ {
		if _, err := icebergType(w.schema.Field(i).Type); err != nil {
			return err
		}
	}
	w.initialized = true
	return nil
}

func (w *IcebergWriter) WriteBatch(ctx context.Context, rec arrow.Record) error {
	if w.closed {
		return errs.Config("write to closed iceberg writer")
	}
	if rec == nil || rec.NumRows() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errs.WrapIO(err, "iceberg write canceled")
	}
	if !w.initialized {
		if err := w.init(); err != nil {
			return err
		}
	}
	if !fieldNamesMatch(w.schema, rec.Schema()) {
		return errs.Schema("record schema does not match iceberg writer schema")
	}
	rec.Retain()
	w.recs = append(w.recs, rec)
	w.buffered += rec.NumRows()
	if w.buffered >= w.flushRows {
		return w.flush()
	}
	return nil
}

func (w *IcebergWriter) flush() error {
	if len(w.recs) == 0 {
		return nil
	}
	name := fmt.Sprintf("data_%05d.parquet", len(w.files))
	info, err := flushParquetFile(filepath.Join(w.dir, "data", name), w.schema, w.recs)
	w.recs = nil
	w.buffered = 0
	if err != nil {
		return err
	}
	w.files = append(w.files, info)
	return nil
}

func (w *IcebergWriter) Close(_ context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true
	if !w.initialized {
		if err := w.init(); err != nil {
			return err
		}
	}
	if err := w.flush(); err != nil {
		return err
	}

	meta := filepath.Join(w.dir, "metadata")
	if len(w.files) > 0 {
		if err := writeDoc(filepath.Join(meta, "manifest-1.json"), w.manifestJSON()); err != nil {
			return err
		}
	}
	listName := fmt.Sprintf("snap-%d.manifest-list.json", w.snapshotID)
	if err := writeDoc(filepath.Join(meta, listName), w.manifestListJSON()); err != nil {
		return err
	}
	if err := writeDoc(filepath.Join(meta, "v1.metadata.json"), w.metadataJSON()); err != nil {
		return err
	}
	return writeDoc(filepath.Join(meta, "version-hint.text"), []byte("1\n"))
}

type icebergDataFile struct {
	FilePath         string         `json:"file-path"`
	FileFormat       string         `json:"file-format"`
	SpecID           int            `json:"spec-id"`
	Partition        map[string]any `json:"partition"`
	RecordCount      int64          `json:"record-count"`
	FileSizeInBytes  int64          `json:"file-size-in-bytes"`
	BlockSizeInBytes int64          `json:"block-size-in-bytes"`
	SortOrderID      int            `json:"sort-order-id"`
}

type icebergManifestEntry struct {
	Status     string          `json:"status"`
	SnapshotID int64           `json:"snapshot-id"`
	DataFile   icebergDataFile `json:"data-file"`
}

func (w *IcebergWriter) manifestJSON() []byte {
	entries := make([]icebergManifestEntry, 0, len(w.files))
	for _, f := range w.files {
		entries = append(entries, icebergManifestEntry{
			Status:     "ADDED",
			SnapshotID: w.snapshotID,
			DataFile: icebergDataFile{
				FilePath:         "data/" + f.name,
				FileFormat:       "PARQUET",
				Partition:        map[string]any{},
				RecordCount:      f.rows,
				FileSizeInBytes:  f.bytes,
				BlockSizeInBytes: 64 << 20,
			},
		})
	}
	doc := map[string]any{
		"version":         1,
		"manifest-path":   "metadata/manifest-1.json",
		"manifest-length": 0,
		"content":         "data",
		"files":           entries,
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return out
}

func (w *IcebergWriter) manifestListJSON() []byte {
	// The list references exactly the manifests that exist; an empty table
	// has none.
	manifests := []map[string]any{}
	if len(w.files) > 0 {
		manifests = append(manifests, map[string]any{
			"manifest-path":        "metadata/manifest-1.json",
			"manifest-length":      0,
			"partition-spec-id":    0,
			"content":              "data",
			"sequence-number":      0,
			"min-sequence-number":  0,
			"added-snapshot-id":    w.snapshotID,
			"added-files-count":    len(w.files),
			"existing-files-count": 0,
			"deleted-files-count":  0,
		})
	}
	doc := map[string]any{
		"version":     1,
		"snapshot-id": w.snapshotID,
		"manifests":   manifests,
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return out
}

type icebergField struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

func (w *IcebergWriter) metadataJSON() []byte {
	now := time.Now().UnixMilli()
	fields := make([]icebergField, 0, w.schema.NumFields())
	for i := 0; i < w.schema.NumFields(); i++ {
		f := w.schema.Field(i)
		t, _ := icebergType(f.Type)
		fields = append(fields, icebergField{
			ID:       i,
			Name:     f.Name,
			Required: !f.Nullable,
			Type:     t,
		})
	}
	listName := fmt.Sprintf("metadata/snap-%d.manifest-list.json", w.snapshotID)
	doc := map[string]any{
		"format-version":  1,
		"table-uuid":      uuid.NewString(),
		"location":        w.dir,
		"last-updated-ms": now,
		"last-column-id":  w.schema.NumFields() - 1,
		"schema": map[string]any{
			"type":      "struct",
			"schema-id": 0,
			"fields":    fields,
		},
		"current-snapshot-id": w.snapshotID,
		"snapshots": []map[string]any{{
			"snapshot-id":  w.snapshotID,
			"timestamp-ms": now,
			"summary": map[string]any{
				"operation": "append",
			},
			"manifest-list": listName,
		}},
		"snapshot-log": []map[string]any{{
			"snapshot-id":  w.snapshotID,
			"timestamp-ms": now,
		}},
		"metadata-log": []any{},
		"sort-orders":  []any{},
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return out
}
