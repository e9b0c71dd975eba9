package convert

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
)

// centsToFloat converts the producer's fixed-point representation at the
// converter boundary. All monetary and decimal columns are stored as cents.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}

func newInt64Array(vals []int64) arrow.Array {
	buf := memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(vals))
	data := array.NewData(arrow.PrimitiveTypes.Int64, len(vals),
		[]*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.NewInt64Data(data)
}

func newFloat64Array(vals []float64) arrow.Array {
	buf := memory.NewBufferBytes(arrow.Float64Traits.CastToBytes(vals))
	data := array.NewData(arrow.PrimitiveTypes.Float64, len(vals),
		[]*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.NewFloat64Data(data)
}

// stringColumn accumulates a value buffer plus offsets. Offsets hold N+1
// entries with a leading zero and are monotone non-decreasing.
type stringColumn struct {
	offsets *[]int32
	values  *[]byte
}

func newStringColumn(m *LifetimeManager, rows, avgLen int) stringColumn {
	offsets := m.NewOffsetsBuffer(rows + 1)
	*offsets = append(*offsets, 0)
	return stringColumn{
		offsets: offsets,
		values:  m.NewByteBuffer(rows * avgLen),
	}
}

func (c stringColumn) add(v []byte) {
	*c.values = append(*c.values, v...)
	*c.offsets = append(*c.offsets, int32(len(*c.values)))
}

func (c stringColumn) newArray() arrow.Array {
	offsets := *c.offsets
	obuf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(offsets))
	vbuf := memory.NewBufferBytes(*c.values)
	data := array.NewData(arrow.BinaryTypes.String, len(offsets)-1,
		[]*memory.Buffer{nil, obuf, vbuf}, nil, 0, 0)
	defer data.Release()
	return array.NewStringData(data)
}

func newBatch(table dbgen.Table, mgr *LifetimeManager, cols []arrow.Array, rows int) (ManagedRecordBatch, error) {
	schema := dbgen.Schema(table)
	if len(cols) != schema.NumFields() {
		for _, col := range cols {
			col.Release()
		}
		return ManagedRecordBatch{}, errs.Schema(
			"table %s expects %d columns, converter produced %d",
			table, schema.NumFields(), len(cols))
	}
	rec := array.NewRecord(schema, cols, int64(rows))
	for _, col := range cols {
		col.Release()
	}
	return ManagedRecordBatch{Record: rec, Mgr: mgr}, nil
}

// Customers converts a batch of customer rows.
func Customers(rows []dbgen.Customer) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	custkey := mgr.NewInt64Buffer(n)
	name := newStringColumn(mgr, n, 18)
	address := newStringColumn(mgr, n, 26)
	nationkey := mgr.NewInt64Buffer(n)
	phone := newStringColumn(mgr, n, 16)
	acctbal := mgr.NewFloat64Buffer(n)
	segment := newStringColumn(mgr, n, 11)
	comment := newStringColumn(mgr, n, 73)

	for i := range rows {
		c := &rows[i]
		*custkey = append(*custkey, c.Custkey)
		name.add(dbgen.CStr(c.Name[:]))
		address.add(c.Address[:c.ALen])
		*nationkey = append(*nationkey, c.NationCode)
		phone.add(dbgen.CStr(c.Phone[:]))
		*acctbal = append(*acctbal, centsToFloat(c.Acctbal))
		segment.add(dbgen.CStr(c.Mktsegment[:]))
		comment.add(c.Comment[:c.CLen])
	}
	return newBatch(dbgen.TableCustomer, mgr, []arrow.Array{
		newInt64Array(*custkey), name.newArray(), address.newArray(),
		newInt64Array(*nationkey), phone.newArray(), newFloat64Array(*acctbal),
		segment.newArray(), comment.newArray(),
	}, n)
}

// Suppliers converts a batch of supplier rows.
func Suppliers(rows []dbgen.Supplier) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	suppkey := mgr.NewInt64Buffer(n)
	name := newStringColumn(mgr, n, 18)
	address := newStringColumn(mgr, n, 26)
	nationkey := mgr.NewInt64Buffer(n)
	phone := newStringColumn(mgr, n, 16)
	acctbal := mgr.NewFloat64Buffer(n)
	comment := newStringColumn(mgr, n, 63)

	for i := range rows {
		s := &rows[i]
		*suppkey = append(*suppkey, s.Suppkey)
		name.add(dbgen.CStr(s.Name[:]))
		address.add(s.Address[:s.ALen])
		*nationkey = append(*nationkey, s.NationCode)
		phone.add(dbgen.CStr(s.Phone[:]))
		*acctbal = append(*acctbal, centsToFloat(s.Acctbal))
		comment.add(s.Comment[:s.CLen])
	}
	return newBatch(dbgen.TableSupplier, mgr, []arrow.Array{
		newInt64Array(*suppkey), name.newArray(), address.newArray(),
		newInt64Array(*nationkey), phone.newArray(), newFloat64Array(*acctbal),
		comment.newArray(),
	}, n)
}

// Parts converts a batch of part rows. Embedded partsupp entries are
// converted separately through PartSupps.
func Parts(rows []dbgen.Part) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	partkey := mgr.NewInt64Buffer(n)
	name := newStringColumn(mgr, n, 33)
	mfgr := newStringColumn(mgr, n, 15)
	brand := newStringColumn(mgr, n, 9)
	ptype := newStringColumn(mgr, n, 21)
	size := mgr.NewInt64Buffer(n)
	container := newStringColumn(mgr, n, 8)
	retail := mgr.NewFloat64Buffer(n)
	comment := newStringColumn(mgr, n, 14)

	for i := range rows {
		p := &rows[i]
		*partkey = append(*partkey, p.Partkey)
		name.add(p.Name[:p.NLen])
		mfgr.add(dbgen.CStr(p.Mfgr[:]))
		brand.add(dbgen.CStr(p.Brand[:]))
		ptype.add(p.Type[:p.TLen])
		*size = append(*size, p.Size)
		container.add(dbgen.CStr(p.Container[:]))
		*retail = append(*retail, centsToFloat(p.RetailPrice))
		comment.add(p.Comment[:p.CLen])
	}
	return newBatch(dbgen.TablePart, mgr, []arrow.Array{
		newInt64Array(*partkey), name.newArray(), mfgr.newArray(),
		brand.newArray(), ptype.newArray(), newInt64Array(*size),
		container.newArray(), newFloat64Array(*retail), comment.newArray(),
	}, n)
}

// PartSupps converts a batch of partsupp rows.
func PartSupps(rows []dbgen.PartSupp) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	partkey := mgr.NewInt64Buffer(n)
	suppkey := mgr.NewInt64Buffer(n)
	qty := mgr.NewInt64Buffer(n)
	scost := mgr.NewFloat64Buffer(n)
	comment := newStringColumn(mgr, n, 87)

	for i := range rows {
		ps := &rows[i]
		*partkey = append(*partkey, ps.Partkey)
		*suppkey = append(*suppkey, ps.Suppkey)
		*qty = append(*qty, ps.Qty)
		*scost = append(*scost, centsToFloat(ps.SCost))
		comment.add(ps.Comment[:ps.CLen])
	}
	return newBatch(dbgen.TablePartSupp, mgr, []arrow.Array{
		newInt64Array(*partkey), newInt64Array(*suppkey), newInt64Array(*qty),
		newFloat64Array(*scost), comment.newArray(),
	}, n)
}

// Orders converts a batch of order rows. Embedded lines are converted
// separately through Lines.
func Orders(rows []dbgen.Order) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	okey := mgr.NewInt64Buffer(n)
	ckey := mgr.NewInt64Buffer(n)
	status := newStringColumn(mgr, n, 1)
	total := mgr.NewFloat64Buffer(n)
	date := newStringColumn(mgr, n, 10)
	priority := newStringColumn(mgr, n, 9)
	clerk := newStringColumn(mgr, n, 15)
	spriority := mgr.NewInt64Buffer(n)
	comment := newStringColumn(mgr, n, 49)

	for i := range rows {
		o := &rows[i]
		*okey = append(*okey, o.Okey)
		*ckey = append(*ckey, o.Custkey)
		status.add(o.Status[:])
		*total = append(*total, centsToFloat(o.TotalPrice))
		date.add(dbgen.DateStr(o.Date[:]))
		priority.add(dbgen.CStr(o.Priority[:]))
		clerk.add(dbgen.CStr(o.Clerk[:]))
		*spriority = append(*spriority, o.SPriority)
		comment.add(o.Comment[:o.CLen])
	}
	return newBatch(dbgen.TableOrders, mgr, []arrow.Array{
		newInt64Array(*okey), newInt64Array(*ckey), status.newArray(),
		newFloat64Array(*total), date.newArray(), priority.newArray(),
		clerk.newArray(), newInt64Array(*spriority), comment.newArray(),
	}, n)
}

// Lines converts a batch of lineitem rows.
func Lines(rows []dbgen.Line) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	okey := mgr.NewInt64Buffer(n)
	pkey := mgr.NewInt64Buffer(n)
	skey := mgr.NewInt64Buffer(n)
	lnum := mgr.NewInt64Buffer(n)
	qty := mgr.NewFloat64Buffer(n)
	eprice := mgr.NewFloat64Buffer(n)
	discount := mgr.NewFloat64Buffer(n)
	tax := mgr.NewFloat64Buffer(n)
	rflag := newStringColumn(mgr, n, 1)
	lstatus := newStringColumn(mgr, n, 1)
	cdate := newStringColumn(mgr, n, 10)
	sdate := newStringColumn(mgr, n, 10)
	rdate := newStringColumn(mgr, n, 10)
	instruct := newStringColumn(mgr, n, 12)
	mode := newStringColumn(mgr, n, 5)
	comment := newStringColumn(mgr, n, 27)

	for i := range rows {
		l := &rows[i]
		*okey = append(*okey, l.Okey)
		*pkey = append(*pkey, l.Partkey)
		*skey = append(*skey, l.Suppkey)
		*lnum = append(*lnum, l.Lcnt)
		*qty = append(*qty, centsToFloat(l.Quantity))
		*eprice = append(*eprice, centsToFloat(l.EPrice))
		*discount = append(*discount, centsToFloat(l.Discount))
		*tax = append(*tax, centsToFloat(l.Tax))
		rflag.add(l.ReturnFlag[:])
		lstatus.add(l.LineStatus[:])
		cdate.add(dbgen.DateStr(l.CommitDate[:]))
		sdate.add(dbgen.DateStr(l.ShipDate[:]))
		rdate.add(dbgen.DateStr(l.ReceiptDate[:]))
		instruct.add(dbgen.CStr(l.Instruct[:]))
		mode.add(dbgen.CStr(l.Mode[:]))
		comment.add(l.Comment[:l.CLen])
	}
	return newBatch(dbgen.TableLineitem, mgr, []arrow.Array{
		newInt64Array(*okey), newInt64Array(*pkey), newInt64Array(*skey),
		newInt64Array(*lnum), newFloat64Array(*qty), newFloat64Array(*eprice),
		newFloat64Array(*discount), newFloat64Array(*tax),
		rflag.newArray(), lstatus.newArray(),
		cdate.newArray(), sdate.newArray(), rdate.newArray(),
		instruct.newArray(), mode.newArray(), comment.newArray(),
	}, n)
}

// Nations converts a batch of nation rows.
func Nations(rows []dbgen.Nation) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	nkey := mgr.NewInt64Buffer(n)
	name := newStringColumn(mgr, n, 12)
	rkey := mgr.NewInt64Buffer(n)
	comment := newStringColumn(mgr, n, 73)

	for i := range rows {
		nat := &rows[i]
		*nkey = append(*nkey, nat.Code)
		name.add(dbgen.CStr(nat.Name[:]))
		*rkey = append(*rkey, nat.Region)
		comment.add(nat.Comment[:nat.CLen])
	}
	return newBatch(dbgen.TableNation, mgr, []arrow.Array{
		newInt64Array(*nkey), name.newArray(), newInt64Array(*rkey),
		comment.newArray(),
	}, n)
}

// Regions converts a batch of region rows.
func Regions(rows []dbgen.Region) (ManagedRecordBatch, error) {
	n := len(rows)
	mgr := NewLifetimeManager()
	rkey := mgr.NewInt64Buffer(n)
	name := newStringColumn(mgr, n, 9)
	comment := newStringColumn(mgr, n, 73)

	for i := range rows {
		r := &rows[i]
		*rkey = append(*rkey, r.Code)
		name.add(dbgen.CStr(r.Name[:]))
		comment.add(r.Comment[:r.CLen])
	}
	return newBatch(dbgen.TableRegion, mgr, []arrow.Array{
		newInt64Array(*rkey), name.newArray(), comment.newArray(),
	}, n)
}
