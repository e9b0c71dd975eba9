package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"
	"github.com/hamba/avro/v2/ocf"

	"tpchgen/internal/errs"
)

func paimonType(dt arrow.DataType) (string, error) {
	switch dt.ID() {
	case arrow.INT64:
		return "bigint", nil
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
	case arrow.DECIMAL128:
		return "decimal", nil
	default:
		return "", errs.Schema("unsupported type %s for paimon", dt)
	}
}

const paimonManifestEntrySchema = `{
  "type": "record",
  "name": "ManifestEntry",
  "fields": [
    {"name": "_KIND", "type": "int"},
    {"name": "_PARTITION", "type": "bytes"},
    {"name": "_BUCKET", "type": "int"},
    {"name": "_TOTAL_BUCKETS", "type": "int"},
    {
      "name": "_FILE",
      "type": {
        "type": "record",
        "name": "DataFileMetadata",
        "fields": [
          {"name": "fileName", "type": "string"},
          {"name": "fileSize", "type": "long"},
          {"name": "level", "type": "int"},
          {"name": "minKey", "type": ["null", "bytes"]},
          {"name": "maxKey", "type": ["null", "bytes"]},
          {"name": "minColumnStats", "type": ["null", {"type": "array", "items": "bytes"}]},
          {"name": "maxColumnStats", "type": ["null", {"type": "array", "items": "bytes"}]},
          {"name": "nullCounts", "type": ["null", {"type": "array", "items": "long"}]},
          {"name": "rowCount", "type": "long"},
          {"name": "sequenceNumber", "type": "long"},
          {"name": "fileSource", "type": "string"},
          {"name": "schemaId", "type": "long"}
        ]
      }
    }
  ]
}`

const paimonManifestListSchema = `{
  "type": "record",
  "name": "ManifestListEntry",
  "fields": [
    {"name": "_FILE_NAME", "type": "string"},
    {"name": "_FILE_SIZE", "type": "long"},
    {"name": "_NUM_ADDED_FILES", "type": "long"},
    {"name": "_NUM_DELETED_FILES", "type": "long"},
    {
      "name": "_PARTITION_STATS",
      "type": ["null", {
        "type": "array",
        "items": {
          "type": "record",
          "name": "PartitionStats",
          "fields": [
            {"name": "min", "type": ["null", "bytes"]},
            {"name": "max", "type": ["null", "bytes"]}
          ]
        }
      }]
    },
    {"name": "_SCHEMA_ID", "type": "long"}
  ]
}`

type paimonDataFileMeta struct {
	FileName       string    `avro:"fileName"`
	FileSize       int64     `avro:"fileSize"`
	Level          int       `avro:"level"`
	MinKey         *[]byte   `avro:"minKey"`
	MaxKey         *[]byte   `avro:"maxKey"`
	MinColumnStats *[][]byte `avro:"minColumnStats"`
	MaxColumnStats *[][]byte `avro:"maxColumnStats"`
	NullCounts     *[]int64  `avro:"nullCounts"`
	RowCount       int64     `avro:"rowCount"`
	SequenceNumber int64     `avro:"sequenceNumber"`
	FileSource     string    `avro:"fileSource"`
	SchemaID       int64     `avro:"schemaId"`
}

type paimonManifestEntry struct {
	Kind         int                `avro:"_KIND"`
	Partition    []byte             `avro:"_PARTITION"`
	Bucket       int                `avro:"_BUCKET"`
	TotalBuckets int                `avro:"_TOTAL_BUCKETS"`
	File         paimonDataFileMeta `avro:"_FILE"`
}

type paimonPartitionStats struct {
	Min *[]byte `avro:"min"`
	Max *[]byte `avro:"max"`
}

type paimonManifestListEntry struct {
	FileName        string                  `avro:"_FILE_NAME"`
	FileSize        int64                   `avro:"_FILE_SIZE"`
	NumAddedFiles   int64                   `avro:"_NUM_ADDED_FILES"`
	NumDeletedFiles int64                   `avro:"_NUM_DELETED_FILES"`
	PartitionStats  *[]paimonPartitionStats `avro:"_PARTITION_STATS"`
	SchemaID        int64                   `avro:"_SCHEMA_ID"`
}

// emptyBinaryRow is the serialized zero-column partition key.
var emptyBinaryRow = []byte{0x04, 0x00, 0x00, 0x00}

// PaimonWriter lays out an append-only Paimon table: parquet data files in
// bucket-0/, Avro container manifests in manifest/, the table schema under
// schema/, and the snapshot document plus hints under snapshot/.
type PaimonWriter struct {
	dir       string
	schema    *arrow.Schema
	flushRows int64

	recs     []arrow.Record
	buffered int64
	files    []dataFileInfo
	rowTotal int64

	initialized bool
	closed      bool
}

func NewPaimonWriter(dir string, schema *arrow.Schema, opts Options) (*PaimonWriter, error) {
	return &PaimonWriter{
		dir:       dir,
		schema:    schema,
		flushRows: opts.flushRows(),
	}, nil
}

func paimonUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (w *PaimonWriter) init() error {
	for _, sub := range []string{"snapshot", "manifest", "bucket-0", "schema"} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return errs.WrapIO(err, "create paimon directory")
		}
	}
	options := "table.type=APPEND_ONLY\ndata-files.format=parquet\nbucket=-1\n"
	if err := writeDoc(filepath.Join(w.dir, "OPTIONS"), []byte(options)); err != nil {
		return err
	}
	if err := w.writeSchemaFile(); err != nil {
		return err
	}
	w.initialized = true
	return nil
}

func (w *PaimonWriter) writeSchemaFile() error {
	type field struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	fields := make([]field, 0, w.schema.NumFields())
	for i := 0; i < w.schema.NumFields(); i++ {
		f := w.schema.Field(i)
		t, err := paimonType(f.Type)
		if err != nil {
			return err
		}
		fields = append(fields, field{ID: i, Name: f.Name, Type: t})
	}
	doc := map[string]any{
		"fields":        fields,
		"primaryKeys":   []any{},
		"partitionKeys": []any{},
		"options":       map[string]any{},
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return writeDoc(filepath.Join(w.dir, "schema", "schema-0"), out)
}

func (w *PaimonWriter) WriteBatch(ctx context.Context, rec arrow.Record) error {
	if w.closed {
		return errs.Config("write to closed paimon writer")
	}
	if rec == nil || rec.NumRows() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errs.WrapIO(err, "paimon write canceled")
	}
	if !w.initialized {
		if err := w.init(); err != nil {
			return err
		}
	}
	if !fieldNamesMatch(w.schema, rec.Schema()) {
		return errs.Schema("record schema does not match paimon writer schema")
	}
	rec.Retain()
	w.recs = append(w.recs, rec)
	w.buffered += rec.NumRows()
	if w.buffered >= w.flushRows {
		return w.flush()
	}
	return nil
}

func (w *PaimonWriter) flush() error {
	if len(w.recs) == 0 {
		return nil
	}
	name := fmt.Sprintf("data-%s-%d.parquet", paimonUUID(), len(w.files))
	info, err := flushParquetFile(filepath.Join(w.dir, "bucket-0", name), w.schema, w.recs)
	w.recs = nil
	w.buffered = 0
	if err != nil {
		return err
	}
	w.files = append(w.files, info)
	w.rowTotal += info.rows
	return nil
}

func (w *PaimonWriter) Close(_ context.Context) error {
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

	if len(w.files) > 0 {
		manifestName, err := w.writeManifest()
		if err != nil {
			return err
		}
		st, err := os.Stat(filepath.Join(w.dir, "manifest", manifestName))
		if err != nil {
			return errs.WrapIO(err, "stat manifest")
		}
		listName, err := w.writeManifestList(manifestName, st.Size())
		if err != nil {
			return err
		}
		if err := w.writeSnapshot(listName); err != nil {
			return err
		}
	}
	if err := writeDoc(filepath.Join(w.dir, "snapshot", "EARLIEST"), []byte("1")); err != nil {
		return err
	}
	return writeDoc(filepath.Join(w.dir, "snapshot", "LATEST"), []byte("1"))
}

func (w *PaimonWriter) writeManifest() (string, error) {
	name := fmt.Sprintf("manifest-%s-0", paimonUUID())
	f, err := os.Create(filepath.Join(w.dir, "manifest", name))
	if err != nil {
		return "", errs.WrapIO(err, "create manifest")
	}
	enc, err := ocf.NewEncoder(paimonManifestEntrySchema, f)
	if err != nil {
		_ = f.Close()
		return "", errs.WrapIO(err, "create manifest encoder")
	}
	for _, df := range w.files {
		entry := paimonManifestEntry{
			Kind:         0,
			Partition:    emptyBinaryRow,
			Bucket:       0,
			TotalBuckets: -1,
			File: paimonDataFileMeta{
				FileName:   df.name,
				FileSize:   df.bytes,
				RowCount:   df.rows,
				FileSource: "APPEND",
			},
		}
		if err := enc.Encode(entry); err != nil {
			_ = f.Close()
			return "", errs.WrapIO(err, "encode manifest entry")
		}
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", errs.WrapIO(err, "close manifest encoder")
	}
	if err := f.Close(); err != nil {
		return "", errs.WrapIO(err, "close manifest")
	}
	return name, nil
}

func (w *PaimonWriter) writeManifestList(manifestName string, manifestSize int64) (string, error) {
	name := fmt.Sprintf("manifest-list-%s-0", paimonUUID())
	f, err := os.Create(filepath.Join(w.dir, "manifest", name))
	if err != nil {
		return "", errs.WrapIO(err, "create manifest list")
	}
	enc, err := ocf.NewEncoder(paimonManifestListSchema, f)
	if err != nil {
		_ = f.Close()
		return "", errs.WrapIO(err, "create manifest list encoder")
	}
	entry := paimonManifestListEntry{
		FileName:      manifestName,
		FileSize:      manifestSize,
		NumAddedFiles: int64(len(w.files)),
	}
	if err := enc.Encode(entry); err != nil {
		_ = f.Close()
		return "", errs.WrapIO(err, "encode manifest list entry")
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", errs.WrapIO(err, "close manifest list encoder")
	}
	if err := f.Close(); err != nil {
		return "", errs.WrapIO(err, "close manifest list")
	}
	return name, nil
}

func (w *PaimonWriter) writeSnapshot(listName string) error {
	doc := map[string]any{
		"version":               3,
		"id":                    1,
		"schemaId":              0,
		"baseManifestList":      nil,
		"deltaManifestList":     listName,
		"changelogManifestList": nil,
		"indexManifest":         nil,
		"commitUser":            paimonUUID(),
		"commitIdentifier":      int64(math.MaxInt64),
		"commitKind":            "APPEND",
		"timeMillis":            time.Now().UnixMilli(),
		"logOffsets":            map[string]any{},
		"totalRecordCount":      w.rowTotal,
		"deltaRecordCount":      w.rowTotal,
		"changelogRecordCount":  0,
		"watermark":             int64(math.MinInt64),
		"statistics":            nil,
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return writeDoc(filepath.Join(w.dir, "snapshot", "snapshot-1"), out)
}
