package dbgen

import "strings"

// Table identifies one of the eight generated relations.
type Table int

const (
	TablePart Table = iota
	TablePartSupp
	TableSupplier
	TableCustomer
	TableOrders
	TableLineitem
	TableNation
	TableRegion
)

var tableNames = [...]string{
	TablePart:     "part",
	TablePartSupp: "partsupp",
	TableSupplier: "supplier",
	TableCustomer: "customer",
	TableOrders:   "orders",
	TableLineitem: "lineitem",
	TableNation:   "nation",
	TableRegion:   "region",
}

func (t Table) String() string {
	if int(t) < 0 || int(t) >= len(tableNames) {
		return "unknown"
	}
	return tableNames[t]
}

// AllTables lists every relation in generation order. Parents come before
// the tables derived from them.
func AllTables() []Table {
	return []Table{
		TableRegion, TableNation, TableSupplier, TableCustomer,
		TablePart, TablePartSupp, TableOrders, TableLineitem,
	}
}

// ParseTable resolves a table by name, case-insensitively.
func ParseTable(name string) (Table, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for i, n := range tableNames {
		if n == lowered {
			return Table(i), true
		}
	}
	return 0, false
}

// Base cardinalities at scale factor 1. Nation and region are fixed.
const (
	partBase     = 200_000
	suppBase     = 10_000
	partSuppBase = 800_000
	custBase     = 150_000
	orderBase    = 1_500_000
	lineBase     = 6_000_000
	nationCount  = 25
	regionCount  = 5

	// SuppsPerPart is the number of partsupp entries embedded in each part.
	SuppsPerPart = 4
	// MaxLinesPerOrder bounds the embedded lineitem array in an order.
	MaxLinesPerOrder = 7
)

// RowCount returns the number of rows the producer emits for a table at the
// given scale factor. For lineitem the count is an estimate: the true total
// depends on the per-order line counts and is only known after generation.
func RowCount(t Table, scale float64) int64 {
	switch t {
	case TablePart:
		return scaled(partBase, scale)
	case TablePartSupp:
		return scaled(partSuppBase, scale)
	case TableSupplier:
		return scaled(suppBase, scale)
	case TableCustomer:
		return scaled(custBase, scale)
	case TableOrders:
		return scaled(orderBase, scale)
	case TableLineitem:
		return scaled(lineBase, scale)
	case TableNation:
		return nationCount
	case TableRegion:
		return regionCount
	default:
		return 0
	}
}

func scaled(base int64, scale float64) int64 {
	n := int64(float64(base) * scale)
	if n < 1 {
		n = 1
	}
	return n
}
