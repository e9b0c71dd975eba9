// Package dbgen is the deterministic row producer. It fills fixed-layout
// row records from per-column seed streams; given the same scale factor and
// a seed reset, it reproduces byte-identical rows in any process.
//
// The package keeps producer state in package globals and is not safe for
// concurrent generation of the same table. Callers that want table-level
// parallelism run one producer process per table.
package dbgen

import (
	"tpchgen/internal/errs"
)

var (
	initialized bool
	scaleFactor float64

	partCount  int64
	suppCount  int64
	custCount  int64
	orderCount int64
)

// Init prepares distributions, the date table, and scale-dependent
// cardinalities. It may be called again with a different scale factor.
func Init(scale float64) error {
	if scale <= 0 {
		return errs.Config("scale factor must be positive, got %v", scale)
	}
	scaleFactor = scale
	partCount = RowCount(TablePart, scale)
	suppCount = RowCount(TableSupplier, scale)
	custCount = RowCount(TableCustomer, scale)
	orderCount = RowCount(TableOrders, scale)
	if !initialized {
		initDates()
	}
	resetAllSeeds()
	initialized = true
	return nil
}

// Scale returns the scale factor passed to Init.
func Scale() float64 {
	return scaleFactor
}

// OrderKey maps the 1-based order ordinal to its sparse key: eight keys are
// assigned per 32-key bucket, so keys start at 1 and are non-contiguous.
func OrderKey(i int64) int64 {
	return (i-1)/8*32 + (i-1)%8 + 1
}

// partRetailPriceCents derives the part price from the key alone, so line
// extended prices agree with the part table without a lookup.
func partRetailPriceCents(partkey int64) int64 {
	return 90_000 + partkey/10%20_001 + 100*(partkey%1_000)
}

// partSuppBridge maps (partkey, supplier ordinal 0..3) onto a supplier key,
// spreading each part's four suppliers across the supplier table.
func partSuppBridge(partkey, s int64) int64 {
	return (partkey+s*(suppCount/SuppsPerPart+(partkey-1)/suppCount))%suppCount + 1
}

// MakeCustomer fills c with customer i (1-based).
func MakeCustomer(i int64, c *Customer) {
	c.Custkey = i
	keyedName(c.Name[:], "Customer", i)
	c.ALen = vString(sCustAddr, 10, cAddrMax, c.Address[:])
	c.NationCode = rnd(sCustNation, 0, nationCount-1)
	makePhone(sCustPhone, c.NationCode, c.Phone[:])
	c.Acctbal = rnd(sCustAcctbal, -99_999, 999_999)
	copyStr(c.Mktsegment[:], pick(sCustSegment, segments))
	c.CLen = makeText(sCustComment, 29, cCmntMax-1, c.Comment[:])
}

// MakeSupplier fills s with supplier i (1-based).
func MakeSupplier(i int64, s *Supplier) {
	s.Suppkey = i
	keyedName(s.Name[:], "Supplier", i)
	s.ALen = vString(sSuppAddr, 10, sAddrMax, s.Address[:])
	s.NationCode = rnd(sSuppNation, 0, nationCount-1)
	makePhone(sSuppPhone, s.NationCode, s.Phone[:])
	s.Acctbal = rnd(sSuppAcctbal, -99_999, 999_999)
	s.CLen = makeText(sSuppComment, 25, sCmntMax-1, s.Comment[:])
	gradeSupplier(s)
}

// A small fraction of suppliers carry a complaint or recommendation marker
// in their comment.
func gradeSupplier(s *Supplier) {
	const (
		complaints = "Customer Complaints"
		recommends = "Customer Recommends"
	)
	grade := rnd(sSuppGrade, 1, 2000)
	if grade > 2 || s.CLen < int32(len(complaints)) {
		return
	}
	marker := complaints
	if grade == 2 {
		marker = recommends
	}
	at := rnd(sSuppGrade, 0, int64(s.CLen)-int64(len(marker)))
	copy(s.Comment[at:], marker)
}

// MakePart fills p with part i (1-based), including its four embedded
// partsupp entries.
func MakePart(i int64, p *Part) {
	p.Partkey = i

	name := p.Name[:0]
	var chosen [5]string
	for w := 0; w < 5; w++ {
	redraw:
		word := pick(sPartName, colors)
		for v := 0; v < w; v++ {
			if chosen[v] == word {
				goto redraw
			}
		}
		chosen[w] = word
		if w > 0 {
			name = append(name, ' ')
		}
		name = append(name, word...)
	}
	p.NLen = int32(len(name))
	p.Name[p.NLen] = 0

	mfgr := rnd(sPartMfgr, 1, 5)
	out := fmtAppendInt(p.Mfgr[:0], "Manufacturer#", mfgr)
	p.Mfgr[len(out)] = 0
	brand := mfgr*10 + rnd(sPartBrand, 1, 5)
	out = fmtAppendInt(p.Brand[:0], "Brand#", brand)
	p.Brand[len(out)] = 0

	ptype := pick(sPartType, typeSyl1) + " " + pick(sPartType, typeSyl2) + " " + pick(sPartType, typeSyl3)
	p.TLen = int32(len(ptype))
	copyStr(p.Type[:], ptype)
	p.Size = rnd(sPartSize, 1, 50)
	copyStr(p.Container[:], pick(sPartContainer, containerSyl1)+" "+pick(sPartContainer, containerSyl2))
	p.RetailPrice = partRetailPriceCents(i)
	p.CLen = makeText(sPartComment, 5, pCmntMax-1, p.Comment[:])

	for s := int64(0); s < SuppsPerPart; s++ {
		ps := &p.Supps[s]
		ps.Partkey = i
		ps.Suppkey = partSuppBridge(i, s)
		ps.Qty = rnd(sPsuppQty, 1, 9_999)
		ps.SCost = rnd(sPsuppScost, 100, 100_000)
		ps.CLen = makeText(sPsuppComment, 49, psCmntMax-1, ps.Comment[:])
	}
}

// MakeOrder fills o with order i (1-based), including its embedded lines.
func MakeOrder(i int64, o *Order) {
	o.Okey = OrderKey(i)

	ckey := rnd(sOrdCust, 1, custCount)
	// A third of the customer keys never place orders.
	for ckey%3 == 0 {
		ckey = ckey%custCount + 1
	}
	o.Custkey = ckey

	odate := rnd(sOrdDate, 1, totalDates-orderDateSlack)
	o.Date = dateTable[odate]
	copyStr(o.Priority[:], pick(sOrdPriority, priorities))
	clerks := int64(scaleFactor * 1000)
	if clerks < 1 {
		clerks = 1
	}
	keyedName(o.Clerk[:], "Clerk", rnd(sOrdClerk, 1, clerks))
	o.SPriority = 0
	o.CLen = makeText(sOrdComment, 19, oCmntMax-1, o.Comment[:])

	lines := rnd(sOrdLineCount, 1, MaxLinesPerOrder)
	o.LineCount = int32(lines)
	var (
		total      int64
		allShipped = true
		allOpen    = true
	)
	for j := int64(0); j < lines; j++ {
		l := &o.Lines[j]
		l.Okey = o.Okey
		l.Lcnt = j + 1
		l.Partkey = rnd(sLinePart, 1, partCount)
		l.Suppkey = partSuppBridge(l.Partkey, rnd(sLineSupp, 0, SuppsPerPart-1))

		qty := rnd(sLineQty, 1, 50)
		l.Quantity = qty * 100
		l.EPrice = partRetailPriceCents(l.Partkey) * qty
		l.Discount = rnd(sLineDiscount, 0, 10)
		l.Tax = rnd(sLineTax, 0, 8)

		sdate := odate + rnd(sLineShipDate, 1, 121)
		cdate := odate + rnd(sLineCommitDate, 30, 90)
		rdate := sdate + rnd(sLineReceiptDate, 1, 30)
		l.ShipDate = dateTable[sdate]
		l.CommitDate = dateTable[cdate]
		l.ReceiptDate = dateTable[rdate]

		if rdate <= currentDate {
			if rnd(sLineReturnFlag, 0, 1) == 0 {
				l.ReturnFlag[0] = 'R'
			} else {
				l.ReturnFlag[0] = 'A'
			}
		} else {
			l.ReturnFlag[0] = 'N'
		}
		if sdate > currentDate {
			l.LineStatus[0] = 'O'
			allShipped = false
		} else {
			l.LineStatus[0] = 'F'
			allOpen = false
		}
		copyStr(l.Instruct[:], pick(sLineInstruct, instructions))
		copyStr(l.Mode[:], pick(sLineMode, shipModes))
		l.CLen = makeText(sLineComment, 10, lCmntMax-1, l.Comment[:])

		total += l.EPrice * (100 - l.Discount) / 100 * (100 + l.Tax) / 100
	}
	o.TotalPrice = total
	switch {
	case allShipped:
		o.Status[0] = 'F'
	case allOpen:
		o.Status[0] = 'O'
	default:
		o.Status[0] = 'P'
	}
}

// MakeNation fills n with nation i (1-based, 25 fixed rows).
func MakeNation(i int64, n *Nation) {
	def := nations[i-1]
	n.Code = i - 1
	copyStr(n.Name[:], def.name)
	n.Region = def.region
	n.CLen = makeText(sNationComment, 31, nCmntMax-1, n.Comment[:])
}

// MakeRegion fills r with region i (1-based, 5 fixed rows).
func MakeRegion(i int64, r *Region) {
	r.Code = i - 1
	copyStr(r.Name[:], regions[i-1])
	r.CLen = makeText(sRegionComment, 31, rCmntMax-1, r.Comment[:])
}

func fmtAppendInt(dst []byte, prefix string, v int64) []byte {
	dst = append(dst, prefix...)
	if v == 0 {
		return append(dst, '0')
	}
	var digits [20]byte
	n := 0
	for v > 0 {
		digits[n] = byte('0' + v%10)
		v /= 10
		n++
	}
	for n > 0 {
		n--
		dst = append(dst, digits[n])
	}
	return dst
}
