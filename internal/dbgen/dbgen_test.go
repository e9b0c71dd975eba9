package dbgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpchgen/internal/errs"
)

func TestInitRejectsBadScale(t *testing.T) {
	require.Error(t, Init(0))
	require.Error(t, Init(-1))
	assert.True(t, errs.Is(Init(0), errs.ErrConfig))
	require.NoError(t, Init(0.001))
}

func TestRowCounts(t *testing.T) {
	assert.Equal(t, int64(200_000), RowCount(TablePart, 1))
	assert.Equal(t, int64(10_000), RowCount(TableSupplier, 1))
	assert.Equal(t, int64(800_000), RowCount(TablePartSupp, 1))
	assert.Equal(t, int64(150_000), RowCount(TableCustomer, 1))
	assert.Equal(t, int64(1_500_000), RowCount(TableOrders, 1))
	assert.Equal(t, int64(6_000_000), RowCount(TableLineitem, 1))

	// Fixed tables ignore the scale factor.
	assert.Equal(t, int64(25), RowCount(TableNation, 0.01))
	assert.Equal(t, int64(5), RowCount(TableRegion, 100))

	// Fractional scale factors shrink proportionally.
	assert.Equal(t, int64(2_000), RowCount(TablePart, 0.01))
	assert.Equal(t, int64(15_000), RowCount(TableOrders, 0.01))
}

func TestOrderKeysAreSparse(t *testing.T) {
	assert.Equal(t, int64(1), OrderKey(1))
	assert.Equal(t, int64(8), OrderKey(8))
	// The ninth order jumps to the next 32-key bucket.
	assert.Equal(t, int64(33), OrderKey(9))
	assert.Equal(t, int64(40), OrderKey(16))
	assert.Equal(t, int64(65), OrderKey(17))

	prev := int64(0)
	for i := int64(1); i <= 1000; i++ {
		k := OrderKey(i)
		assert.Greater(t, k, prev)
		prev = k
	}
}

func TestCustomerDeterminism(t *testing.T) {
	require.NoError(t, Init(0.001))

	var first [10]Customer
	ResetSeeds(TableCustomer)
	for i := range first {
		MakeCustomer(int64(i+1), &first[i])
	}

	// Interleave unrelated generation, then reset and regenerate.
	var o Order
	MakeOrder(1, &o)
	ResetSeeds(TableCustomer)
	for i := range first {
		var again Customer
		MakeCustomer(int64(i+1), &again)
		assert.Equal(t, first[i], again, "row %d", i+1)
	}
}

func TestCustomerFields(t *testing.T) {
	require.NoError(t, Init(0.001))
	ResetSeeds(TableCustomer)

	var c Customer
	MakeCustomer(42, &c)
	assert.Equal(t, int64(42), c.Custkey)
	assert.Equal(t, "Customer#000000042", string(CStr(c.Name[:])))
	assert.GreaterOrEqual(t, c.ALen, int32(10))
	assert.LessOrEqual(t, c.ALen, int32(cAddrMax))
	assert.GreaterOrEqual(t, c.NationCode, int64(0))
	assert.Less(t, c.NationCode, int64(nationCount))
	assert.GreaterOrEqual(t, c.Acctbal, int64(-99_999))
	assert.LessOrEqual(t, c.Acctbal, int64(999_999))
	assert.Contains(t, segments, string(CStr(c.Mktsegment[:])))
	assert.GreaterOrEqual(t, c.CLen, int32(29))
	assert.LessOrEqual(t, c.CLen, int32(cCmntMax))
}

func TestOrderAndLines(t *testing.T) {
	require.NoError(t, Init(0.001))
	ResetSeeds(TableOrders)

	for i := int64(1); i <= 200; i++ {
		var o Order
		MakeOrder(i, &o)
		assert.Equal(t, OrderKey(i), o.Okey)
		assert.NotZero(t, o.Custkey%3, "customer keys divisible by 3 never order")
		assert.GreaterOrEqual(t, o.LineCount, int32(1))
		assert.LessOrEqual(t, o.LineCount, int32(MaxLinesPerOrder))
		assert.Contains(t, priorities, string(CStr(o.Priority[:])))

		var total int64
		sawOpen, sawShipped := false, false
		for j := int32(0); j < o.LineCount; j++ {
			l := &o.Lines[j]
			assert.Equal(t, o.Okey, l.Okey)
			assert.Equal(t, int64(j+1), l.Lcnt)
			qty := l.Quantity / 100
			assert.GreaterOrEqual(t, qty, int64(1))
			assert.LessOrEqual(t, qty, int64(50))
			assert.Equal(t, partRetailPriceCents(l.Partkey)*qty, l.EPrice)
			assert.LessOrEqual(t, l.Discount, int64(10))
			assert.LessOrEqual(t, l.Tax, int64(8))
			assert.Less(t, string(DateStr(l.CommitDate[:])), "1999")
			assert.GreaterOrEqual(t, string(DateStr(l.ShipDate[:])), string(DateStr(o.Date[:])))
			assert.Greater(t, string(DateStr(l.ReceiptDate[:])), string(DateStr(l.ShipDate[:])))
			switch l.LineStatus[0] {
			case 'O':
				sawOpen = true
				assert.Equal(t, byte('N'), l.ReturnFlag[0])
			case 'F':
				sawShipped = true
			default:
				t.Fatalf("unexpected line status %q", l.LineStatus[0])
			}
			total += l.EPrice * (100 - l.Discount) / 100 * (100 + l.Tax) / 100
		}
		assert.Equal(t, total, o.TotalPrice)
		switch o.Status[0] {
		case 'F':
			assert.False(t, sawOpen)
		case 'O':
			assert.False(t, sawShipped)
		case 'P':
			assert.True(t, sawOpen)
			assert.True(t, sawShipped)
		default:
			t.Fatalf("unexpected order status %q", o.Status[0])
		}
	}
}

func TestPartSuppBridge(t *testing.T) {
	require.NoError(t, Init(0.001))
	ResetSeeds(TablePart)

	var p Part
	MakePart(7, &p)
	assert.Equal(t, int64(7), p.Partkey)
	seen := map[int64]bool{}
	for _, ps := range p.Supps {
		assert.Equal(t, int64(7), ps.Partkey)
		assert.GreaterOrEqual(t, ps.Suppkey, int64(1))
		assert.LessOrEqual(t, ps.Suppkey, RowCount(TableSupplier, 0.001))
		assert.False(t, seen[ps.Suppkey], "suppliers of one part are distinct")
		seen[ps.Suppkey] = true
	}
	assert.Equal(t, partRetailPriceCents(7), p.RetailPrice)
}

func TestNationAndRegionFixedRows(t *testing.T) {
	require.NoError(t, Init(1))

	var n Nation
	MakeNation(1, &n)
	assert.Equal(t, int64(0), n.Code)
	assert.Equal(t, "ALGERIA", string(CStr(n.Name[:])))
	assert.Equal(t, int64(0), n.Region)

	MakeNation(25, &n)
	assert.Equal(t, "UNITED STATES", string(CStr(n.Name[:])))
	assert.Equal(t, int64(1), n.Region)

	var r Region
	MakeRegion(5, &r)
	assert.Equal(t, int64(4), r.Code)
	assert.Equal(t, "MIDDLE EAST", string(CStr(r.Name[:])))
}

func TestDateTable(t *testing.T) {
	require.NoError(t, Init(1))
	assert.Equal(t, "1992-01-01", string(DateStr(dateTable[1][:])))
	assert.Equal(t, "1995-06-17", string(DateStr(dateTable[currentDate][:])))
	assert.Equal(t, "1998-12-31", string(DateStr(dateTable[totalDates][:])))
	assert.Equal(t, "1998-08-02", string(DateStr(dateTable[totalDates-orderDateSlack][:])))
}
