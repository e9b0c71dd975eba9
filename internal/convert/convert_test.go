package convert

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpchgen/internal/dbgen"
)

func makeCustomers(t *testing.T, n int) []dbgen.Customer {
	t.Helper()
	require.NoError(t, dbgen.Init(0.001))
	dbgen.ResetSeeds(dbgen.TableCustomer)
	rows := make([]dbgen.Customer, n)
	for i := range rows {
		dbgen.MakeCustomer(int64(i+1), &rows[i])
	}
	return rows
}

func TestCustomersBatchShape(t *testing.T) {
	rows := makeCustomers(t, 17)
	batch, err := Customers(rows)
	require.NoError(t, err)
	defer batch.Release()

	rec := batch.Record
	schema := dbgen.Schema(dbgen.TableCustomer)
	assert.Equal(t, int64(17), rec.NumRows())
	require.Equal(t, schema.NumFields(), int(rec.NumCols()))
	for i := 0; i < schema.NumFields(); i++ {
		assert.Equal(t, schema.Field(i).Name, rec.Schema().Field(i).Name)
	}
}

func TestStringOffsetsInvariants(t *testing.T) {
	rows := makeCustomers(t, 9)
	batch, err := Customers(rows)
	require.NoError(t, err)
	defer batch.Release()

	name := batch.Record.Column(1).(*array.String)
	assert.Equal(t, 0, name.ValueOffset(0))
	prev := 0
	for i := 0; i < name.Len(); i++ {
		off := name.ValueOffset(i)
		assert.GreaterOrEqual(t, off, prev)
		prev = off
	}
	for i, row := range rows {
		assert.Equal(t, string(dbgen.CStr(row.Name[:])), name.Value(i))
	}
}

func TestCentsDivision(t *testing.T) {
	rows := makeCustomers(t, 5)
	batch, err := Customers(rows)
	require.NoError(t, err)
	defer batch.Release()

	acctbal := batch.Record.Column(5).(*array.Float64)
	for i, row := range rows {
		assert.InDelta(t, float64(row.Acctbal)/100.0, acctbal.Value(i), 1e-9)
	}
}

func TestLinesConversion(t *testing.T) {
	require.NoError(t, dbgen.Init(0.001))
	dbgen.ResetSeeds(dbgen.TableOrders)

	var lines []dbgen.Line
	for i := int64(1); i <= 20; i++ {
		var o dbgen.Order
		dbgen.MakeOrder(i, &o)
		lines = append(lines, o.Lines[:o.LineCount]...)
	}
	batch, err := Lines(lines)
	require.NoError(t, err)
	defer batch.Release()

	rec := batch.Record
	assert.Equal(t, int64(len(lines)), rec.NumRows())
	qty := rec.Column(4).(*array.Float64)
	for i, l := range lines {
		v := qty.Value(i)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 50.0)
		assert.Equal(t, float64(l.Quantity)/100.0, v)
	}
	// Commit date precedes ship date in the emitted columns.
	assert.Equal(t, "l_commitdate", rec.Schema().Field(10).Name)
	assert.Equal(t, "l_shipdate", rec.Schema().Field(11).Name)
	cdate := rec.Column(10).(*array.String)
	sdate := rec.Column(11).(*array.String)
	assert.Len(t, cdate.Value(0), 10)
	assert.Len(t, sdate.Value(0), 10)
	for i, l := range lines {
		assert.Equal(t, string(dbgen.DateStr(l.CommitDate[:])), cdate.Value(i))
		assert.Equal(t, string(dbgen.DateStr(l.ShipDate[:])), sdate.Value(i))
	}
}

func TestLifetimeManagerAccounting(t *testing.T) {
	m := NewLifetimeManager()
	i64 := m.NewInt64Buffer(8)
	*i64 = append(*i64, 1, 2, 3)
	f64 := m.NewFloat64Buffer(4)
	*f64 = append(*f64, 1.5)
	bytesBuf := m.NewByteBuffer(16)
	*bytesBuf = append(*bytesBuf, "abc"...)
	offs := m.NewOffsetsBuffer(4)
	*offs = append(*offs, 0)

	assert.Equal(t, 4, m.BufferCount())
	assert.Equal(t, int64(8*8+4*8+16+4*4), m.MemoryUsage())
}

func TestReleaseIsIdempotent(t *testing.T) {
	rows := makeCustomers(t, 3)
	batch, err := Customers(rows)
	require.NoError(t, err)
	batch.Release()
	batch.Release()
	assert.Equal(t, int64(0), batch.NumRows())
}

func TestEmptyBatch(t *testing.T) {
	batch, err := Regions(nil)
	require.NoError(t, err)
	defer batch.Release()
	assert.Equal(t, int64(0), batch.NumRows())
	assert.Equal(t, int64(3), batch.Record.NumCols())
}
