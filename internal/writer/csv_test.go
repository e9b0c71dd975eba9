package writer

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tpchgen/internal/aio"
	"tpchgen/internal/convert"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
	"tpchgen/internal/gen"
)

func newCSVContext(t *testing.T) *aio.SharedContext {
	t.Helper()
	e, err := aio.NewSyncEngine(16)
	require.NoError(t, err)
	return aio.NewSharedContext(e)
}

func writeCustomerCSV(t *testing.T, path string, rows int64) {
	t.Helper()
	require.NoError(t, dbgen.Init(0.001))

	actx := newCSVContext(t)
	w, err := NewCSVWriter(actx, path, dbgen.Schema(dbgen.TableCustomer))
	require.NoError(t, err)

	it, err := gen.NewIterator(dbgen.TableCustomer, 50, rows)
	require.NoError(t, err)
	ctx := context.Background()
	for {
		batch, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, w.WriteBatch(ctx, batch.Record))
		batch.Release()
	}
	require.NoError(t, w.Close(ctx))
	require.NoError(t, actx.CloseAll())
}

func TestCSVHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customer.csv")
	writeCustomerCSV(t, path, 120)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 121)

	schema := dbgen.Schema(dbgen.TableCustomer)
	for i := 0; i < schema.NumFields(); i++ {
		assert.Equal(t, schema.Field(i).Name, records[0][i])
	}
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Customer#000000001", records[1][1])
	for _, rec := range records[1:] {
		assert.Len(t, rec, schema.NumFields())
	}
}

func TestCSVDeterministicBytes(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	writeCustomerCSV(t, first, 80)
	writeCustomerCSV(t, second, 80)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCSVSchemaMismatch(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	actx := newCSVContext(t)
	w, err := NewCSVWriter(actx, filepath.Join(t.TempDir(), "x.csv"), dbgen.Schema(dbgen.TableCustomer))
	require.NoError(t, err)

	batch, err := convert.Regions(nil)
	require.NoError(t, err)
	defer batch.Release()
	err = w.WriteBatch(context.Background(), batch.Record)
	assert.True(t, errs.Is(err, errs.ErrSchema))
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, actx.CloseAll())
}

func TestCSVWriteAfterClose(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	actx := newCSVContext(t)
	w, err := NewCSVWriter(actx, filepath.Join(t.TempDir(), "x.csv"), dbgen.Schema(dbgen.TableRegion))
	require.NoError(t, err)
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	batch, err := convert.Regions(nil)
	require.NoError(t, err)
	defer batch.Release()
	err = w.WriteBatch(context.Background(), batch.Record)
	assert.True(t, errs.Is(err, errs.ErrConfig))
	require.NoError(t, actx.CloseAll())
}

func TestAppendEscapedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// A lone empty field encodes as a blank line, which the reader
		// skips, so keep at least two fields.
		fields := rapid.SliceOfN(rapid.StringMatching(`[ -~]*`), 2, 6).Draw(t, "fields")

		var line []byte
		for i, f := range fields {
			if i > 0 {
				line = append(line, csvDelimiter)
			}
			line = appendEscaped(line, f)
		}
		line = append(line, '\n')

		r := csv.NewReader(strings.NewReader(string(line)))
		got, err := r.Read()
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if len(got) != len(fields) {
			t.Fatalf("got %d fields, want %d", len(got), len(fields))
		}
		for i := range fields {
			if got[i] != fields[i] {
				t.Fatalf("field %d: got %q, want %q", i, got[i], fields[i])
			}
		}
	})
}

func TestFloatFieldsUseShortestForm(t *testing.T) {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues([]float64{3.5, 0.07, 121, 904.18}, nil)
	col := b.NewFloat64Array()
	defer col.Release()

	want := []string{"3.5", "0.07", "121", "904.18"}
	for i, w := range want {
		got := appendCSVField(nil, col, i)
		assert.Equal(t, w, string(got))
	}
}

func TestNeedsQuoting(t *testing.T) {
	assert.False(t, needsQuoting("plain text"))
	assert.True(t, needsQuoting("a,b"))
	assert.True(t, needsQuoting(`say "hi"`))
	assert.True(t, needsQuoting("line\nbreak"))
	assert.True(t, needsQuoting("cr\rhere"))
}
