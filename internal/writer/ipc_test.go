package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpchgen/internal/convert"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
	"tpchgen/internal/gen"
)

func TestIPCRoundTrip(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	path := filepath.Join(t.TempDir(), "nation.arrow")

	w, err := NewIPCWriter(path, dbgen.Schema(dbgen.TableNation))
	require.NoError(t, err)

	it, err := gen.NewIterator(dbgen.TableNation, 10, 0)
	require.NoError(t, err)
	ctx := context.Background()
	batches := 0
	for {
		batch, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, w.WriteBatch(ctx, batch.Record))
		batch.Release()
		batches++
	}
	require.NoError(t, w.Close(ctx))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, batches, r.NumRecords())
	var rows int64
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		require.NoError(t, err)
		rows += rec.NumRows()
	}
	assert.Equal(t, int64(25), rows)
	assert.True(t, dbgen.Schema(dbgen.TableNation).Equal(r.Schema()))
}

func TestIPCEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.arrow")
	w, err := NewIPCWriter(path, dbgen.Schema(dbgen.TableRegion))
	require.NoError(t, err)
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := ipc.NewFileReader(f)
	require.NoError(t, err)
	defer r.Close()
	assert.Zero(t, r.NumRecords())
	assert.True(t, dbgen.Schema(dbgen.TableRegion).Equal(r.Schema()))
}

func TestIPCSchemaMismatch(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	w, err := NewIPCWriter(filepath.Join(t.TempDir(), "x.arrow"), dbgen.Schema(dbgen.TableCustomer))
	require.NoError(t, err)

	batch, err := convert.Regions(nil)
	require.NoError(t, err)
	defer batch.Release()
	err = w.WriteBatch(context.Background(), batch.Record)
	assert.True(t, errs.Is(err, errs.ErrSchema))
	require.NoError(t, w.Close(context.Background()))
}
