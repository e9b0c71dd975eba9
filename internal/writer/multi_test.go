package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tpchgen/internal/aio"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
	"tpchgen/internal/gen"
)

func TestMultiTablePath(t *testing.T) {
	m := NewMulti("/out", FormatCSV, nil, Options{}, zap.NewNop())
	assert.Equal(t, filepath.Join("/out", "customer.csv"), m.TablePath(dbgen.TableCustomer))

	m = NewMulti("/out", FormatIceberg, nil, Options{}, zap.NewNop())
	assert.Equal(t, filepath.Join("/out", "orders"), m.TablePath(dbgen.TableOrders))
}

func TestMultiEndToEnd(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	dir := t.TempDir()

	e, err := aio.NewSyncEngine(16)
	require.NoError(t, err)
	actx := aio.NewSharedContext(e)
	m := NewMulti(dir, FormatCSV, actx, Options{}, zap.NewNop())

	tables := []dbgen.Table{dbgen.TableNation, dbgen.TableRegion}
	require.NoError(t, m.StartTables(tables))
	require.NoError(t, m.StartTables(tables), "second start is a no-op")

	ctx := context.Background()
	for _, table := range tables {
		it, err := gen.NewIterator(table, 10, 0)
		require.NoError(t, err)
		for {
			batch, ok, err := it.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			require.NoError(t, m.WriteBatch(ctx, table, batch.Record))
			batch.Release()
		}
	}
	require.NoError(t, m.FinishAll(ctx))
	require.NoError(t, m.FinishAll(ctx), "second finish is a no-op")

	for _, table := range tables {
		st, err := os.Stat(m.TablePath(table))
		require.NoError(t, err)
		assert.Positive(t, st.Size(), "table %s", table)
	}
	assert.Zero(t, e.Pending())
}

func TestMultiRejectsUnstartedTable(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	dir := t.TempDir()

	e, err := aio.NewSyncEngine(4)
	require.NoError(t, err)
	actx := aio.NewSharedContext(e)
	m := NewMulti(dir, FormatCSV, actx, Options{}, zap.NewNop())
	require.NoError(t, m.StartTables([]dbgen.Table{dbgen.TableRegion}))

	it, err := gen.NewIterator(dbgen.TableNation, 25, 25)
	require.NoError(t, err)
	batch, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	defer batch.Release()

	err = m.WriteBatch(context.Background(), dbgen.TableNation, batch.Record)
	assert.True(t, errs.Is(err, errs.ErrConfig))
	require.NoError(t, m.FinishAll(context.Background()))
}
