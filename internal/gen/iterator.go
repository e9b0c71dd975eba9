// Package gen plans and drives batched generation of one table. An
// Iterator owns the producer seed state for its table: constructing it
// resets the table's seed streams, so two iterators over the same table
// produce identical batches.
package gen

import (
	"github.com/apache/arrow-go/v18/arrow"

	"tpchgen/internal/convert"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
)

// DefaultBatchSize is the row count targeted per record batch.
const DefaultBatchSize = 10_000

// Iterator yields managed record batches until the table is exhausted or
// the optional row cap is reached. Derived tables (lineitem, partsupp) are
// driven by their parent producer and flatten the embedded child arrays;
// batches flush exactly at the batch size, so a parent's children may split
// across consecutive batches. Leftover children carry into the next batch.
type Iterator struct {
	table      dbgen.Table
	batchSize  int
	maxRows    int64
	parents    int64
	nextParent int64
	emitted    int64

	lineScratch []dbgen.Line
	lineCarry   []dbgen.Line
	psScratch   []dbgen.PartSupp
	psCarry     []dbgen.PartSupp
}

// NewIterator creates an iterator for a table. maxRows of zero means no cap.
// The producer must have been initialized with dbgen.Init first.
func NewIterator(table dbgen.Table, batchSize int, maxRows int64) (*Iterator, error) {
	if batchSize <= 0 {
		return nil, errs.Config("batch size must be positive, got %d", batchSize)
	}
	if maxRows < 0 {
		return nil, errs.Config("max rows must not be negative, got %d", maxRows)
	}
	if dbgen.Scale() <= 0 {
		return nil, errs.Config("producer not initialized")
	}

	parents := dbgen.RowCount(table, dbgen.Scale())
	switch table {
	case dbgen.TableLineitem:
		parents = dbgen.RowCount(dbgen.TableOrders, dbgen.Scale())
	case dbgen.TablePartSupp:
		parents = dbgen.RowCount(dbgen.TablePart, dbgen.Scale())
	}

	dbgen.ResetSeeds(table)
	return &Iterator{
		table:      table,
		batchSize:  batchSize,
		maxRows:    maxRows,
		parents:    parents,
		nextParent: 1,
	}, nil
}

// Table returns the relation this iterator generates.
func (it *Iterator) Table() dbgen.Table {
	return it.table
}

// Schema returns the Arrow schema of the generated batches.
func (it *Iterator) Schema() *arrow.Schema {
	return dbgen.Schema(it.table)
}

// TotalRows returns the number of rows emitted so far.
func (it *Iterator) TotalRows() int64 {
	return it.emitted
}

// PlannedRows returns the planned row total after capping. For lineitem the
// uncapped value is an estimate.
func (it *Iterator) PlannedRows() int64 {
	planned := dbgen.RowCount(it.table, dbgen.Scale())
	if it.maxRows > 0 && it.maxRows < planned {
		return it.maxRows
	}
	return planned
}

// quota returns how many more rows may be emitted, or -1 when uncapped.
func (it *Iterator) quota() int64 {
	if it.maxRows == 0 {
		return -1
	}
	return it.maxRows - it.emitted
}

// done reports whether every planned row has been produced. Derived tables
// are not done while carried-over children remain.
func (it *Iterator) done() bool {
	if it.nextParent <= it.parents {
		return false
	}
	switch it.table {
	case dbgen.TableLineitem:
		return len(it.lineCarry) == 0
	case dbgen.TablePartSupp:
		return len(it.psCarry) == 0
	}
	return true
}

// Next produces the next batch. The second return value is false when the
// table is exhausted; the returned batch is empty in that case.
func (it *Iterator) Next() (convert.ManagedRecordBatch, bool, error) {
	quota := it.quota()
	if quota == 0 || it.done() {
		return convert.ManagedRecordBatch{}, false, nil
	}

	var (
		batch convert.ManagedRecordBatch
		err   error
	)
	switch it.table {
	case dbgen.TableCustomer:
		batch, err = it.nextCustomers(quota)
	case dbgen.TableSupplier:
		batch, err = it.nextSuppliers(quota)
	case dbgen.TablePart:
		batch, err = it.nextParts(quota)
	case dbgen.TablePartSupp:
		batch, err = it.nextPartSupps(quota)
	case dbgen.TableOrders:
		batch, err = it.nextOrders(quota)
	case dbgen.TableLineitem:
		batch, err = it.nextLines(quota)
	case dbgen.TableNation:
		batch, err = it.nextNations(quota)
	case dbgen.TableRegion:
		batch, err = it.nextRegions(quota)
	default:
		return convert.ManagedRecordBatch{}, false, errs.Config("unknown table %d", it.table)
	}
	if err != nil {
		return convert.ManagedRecordBatch{}, false, err
	}
	it.emitted += batch.NumRows()
	return batch, true, nil
}

// chunk returns how many parent rows the next batch should cover.
func (it *Iterator) chunk(quota int64) int64 {
	n := int64(it.batchSize)
	if left := it.parents - it.nextParent + 1; left < n {
		n = left
	}
	if quota >= 0 && quota < n {
		n = quota
	}
	return n
}

func (it *Iterator) nextCustomers(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Customer, n)
	for i := range rows {
		dbgen.MakeCustomer(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Customers(rows)
}

func (it *Iterator) nextSuppliers(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Supplier, n)
	for i := range rows {
		dbgen.MakeSupplier(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Suppliers(rows)
}

func (it *Iterator) nextParts(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Part, n)
	for i := range rows {
		dbgen.MakePart(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Parts(rows)
}

func (it *Iterator) nextPartSupps(quota int64) (convert.ManagedRecordBatch, error) {
	rows := append(it.psScratch[:0], it.psCarry...)
	it.psCarry = it.psCarry[:0]
	var part dbgen.Part
	for len(rows) < it.batchSize && it.nextParent <= it.parents {
		dbgen.MakePart(it.nextParent, &part)
		it.nextParent++
		rows = append(rows, part.Supps[:]...)
	}
	if len(rows) > it.batchSize {
		it.psCarry = append(it.psCarry, rows[it.batchSize:]...)
		rows = rows[:it.batchSize]
	}
	if quota >= 0 && int64(len(rows)) > quota {
		rows = rows[:quota]
	}
	it.psScratch = rows[:0]
	return convert.PartSupps(rows)
}

func (it *Iterator) nextOrders(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Order, n)
	for i := range rows {
		dbgen.MakeOrder(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Orders(rows)
}

func (it *Iterator) nextLines(quota int64) (convert.ManagedRecordBatch, error) {
	rows := append(it.lineScratch[:0], it.lineCarry...)
	it.lineCarry = it.lineCarry[:0]
	var order dbgen.Order
	for len(rows) < it.batchSize && it.nextParent <= it.parents {
		dbgen.MakeOrder(it.nextParent, &order)
		it.nextParent++
		rows = append(rows, order.Lines[:order.LineCount]...)
	}
	if len(rows) > it.batchSize {
		it.lineCarry = append(it.lineCarry, rows[it.batchSize:]...)
		rows = rows[:it.batchSize]
	}
	if quota >= 0 && int64(len(rows)) > quota {
		rows = rows[:quota]
	}
	it.lineScratch = rows[:0]
	return convert.Lines(rows)
}

func (it *Iterator) nextNations(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Nation, n)
	for i := range rows {
		dbgen.MakeNation(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Nations(rows)
}

func (it *Iterator) nextRegions(quota int64) (convert.ManagedRecordBatch, error) {
	n := it.chunk(quota)
	rows := make([]dbgen.Region, n)
	for i := range rows {
		dbgen.MakeRegion(it.nextParent, &rows[i])
		it.nextParent++
	}
	return convert.Regions(rows)
}
