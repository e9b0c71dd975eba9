package dbgen

// The producer draws every random value from a per-column stream of a
// multiplicative congruential generator. Resetting a table's streams before
// generation makes output independent of whatever ran earlier in the process.

const (
	rngMultiplier = 16807
	rngModulus    = 2147483647
)

// stream identifiers, one per randomized column.
const (
	sPartSize = iota
	sPartContainer
	sPartType
	sPartName
	sPartMfgr
	sPartBrand
	sPartComment
	sPsuppQty
	sPsuppScost
	sPsuppComment
	sSuppAddr
	sSuppNation
	sSuppPhone
	sSuppAcctbal
	sSuppComment
	sSuppGrade
	sCustAddr
	sCustNation
	sCustPhone
	sCustAcctbal
	sCustSegment
	sCustComment
	sOrdCust
	sOrdDate
	sOrdLineCount
	sOrdPriority
	sOrdClerk
	sOrdComment
	sLineQty
	sLineDiscount
	sLineTax
	sLinePart
	sLineSupp
	sLineShipDate
	sLineCommitDate
	sLineReceiptDate
	sLineReturnFlag
	sLineInstruct
	sLineMode
	sLineComment
	sNationComment
	sRegionComment
	streamCount
)

var streamTable = [streamCount]Table{
	sPartSize:        TablePart,
	sPartContainer:   TablePart,
	sPartType:        TablePart,
	sPartName:        TablePart,
	sPartMfgr:        TablePart,
	sPartBrand:       TablePart,
	sPartComment:     TablePart,
	sPsuppQty:        TablePart,
	sPsuppScost:      TablePart,
	sPsuppComment:    TablePart,
	sSuppAddr:        TableSupplier,
	sSuppNation:      TableSupplier,
	sSuppPhone:       TableSupplier,
	sSuppAcctbal:     TableSupplier,
	sSuppComment:     TableSupplier,
	sSuppGrade:       TableSupplier,
	sCustAddr:        TableCustomer,
	sCustNation:      TableCustomer,
	sCustPhone:       TableCustomer,
	sCustAcctbal:     TableCustomer,
	sCustSegment:     TableCustomer,
	sCustComment:     TableCustomer,
	sOrdCust:         TableOrders,
	sOrdDate:         TableOrders,
	sOrdLineCount:    TableOrders,
	sOrdPriority:     TableOrders,
	sOrdClerk:        TableOrders,
	sOrdComment:      TableOrders,
	sLineQty:         TableOrders,
	sLineDiscount:    TableOrders,
	sLineTax:         TableOrders,
	sLinePart:        TableOrders,
	sLineSupp:        TableOrders,
	sLineShipDate:    TableOrders,
	sLineCommitDate:  TableOrders,
	sLineReceiptDate: TableOrders,
	sLineReturnFlag:  TableOrders,
	sLineInstruct:    TableOrders,
	sLineMode:        TableOrders,
	sLineComment:     TableOrders,
	sNationComment:   TableNation,
	sRegionComment:   TableRegion,
}

var seeds [streamCount]int64

func initialSeed(stream int) int64 {
	// Arbitrary fixed per-stream seeds, spread across the generator's period.
	return int64(stream)*104_729 + 12_345
}

// ResetSeeds restores the seed streams owned by a table to their initial
// values. Lineitem columns share the orders streams because lines are
// produced embedded in their parent order.
func ResetSeeds(t Table) {
	owner := t
	if owner == TableLineitem || owner == TablePartSupp {
		switch owner {
		case TableLineitem:
			owner = TableOrders
		case TablePartSupp:
			owner = TablePart
		}
	}
	for s := 0; s < streamCount; s++ {
		if streamTable[s] == owner {
			seeds[s] = initialSeed(s)
		}
	}
}

func resetAllSeeds() {
	for s := 0; s < streamCount; s++ {
		seeds[s] = initialSeed(s)
	}
}

func nextRand(seed int64) int64 {
	return seed * rngMultiplier % rngModulus
}

// rnd draws a uniform value in [low, high] from the given stream.
func rnd(stream int, low, high int64) int64 {
	seeds[stream] = nextRand(seeds[stream])
	return low + seeds[stream]%(high-low+1)
}
