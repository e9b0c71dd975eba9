package dbgen

// Fixed-layout row records. Variable-width text fields carry an explicit
// length; fixed-width fields are NUL-terminated inside their array. The
// layouts match the native producer records so converters can slice text
// without copying per field.

const (
	dateLen  = 11
	phoneLen = 15

	cNameLen = 18
	cAddrMax = 40
	cCmntMax = 117

	maxAggLen = 14

	oClrkLen = 15
	oCmntMax = 79

	lCmntMax = 44

	pNameLen = 55
	pMfgLen  = 25
	pBrndLen = 10
	pTypeLen = 25
	pCntrLen = 10
	pCmntMax = 23

	psCmntMax = 124

	sNameLen = 25
	sAddrMax = 40
	sCmntMax = 101

	nNameLen = 24
	nCmntMax = 114

	rNameLen = 24
	rCmntMax = 114
)

type Customer struct {
	Custkey    int64
	Name       [cNameLen + 3]byte
	Address    [cAddrMax + 1]byte
	ALen       int32
	NationCode int64
	Phone      [phoneLen + 1]byte
	Acctbal    int64
	Mktsegment [maxAggLen + 1]byte
	Comment    [cCmntMax + 1]byte
	CLen       int32
}

type Line struct {
	Okey        int64
	Partkey     int64
	Suppkey     int64
	Lcnt        int64
	Quantity    int64
	EPrice      int64
	Discount    int64
	Tax         int64
	ReturnFlag  [1]byte
	LineStatus  [1]byte
	CommitDate  [dateLen]byte
	ShipDate    [dateLen]byte
	ReceiptDate [dateLen]byte
	Instruct    [maxAggLen + 1]byte
	Mode        [maxAggLen + 1]byte
	Comment     [lCmntMax + 1]byte
	CLen        int32
}

type Order struct {
	Okey       int64
	Custkey    int64
	Status     [1]byte
	TotalPrice int64
	Date       [dateLen]byte
	Priority   [maxAggLen + 1]byte
	Clerk      [oClrkLen + 1]byte
	SPriority  int64
	Comment    [oCmntMax + 1]byte
	CLen       int32
	LineCount  int32
	Lines      [MaxLinesPerOrder]Line
}

type PartSupp struct {
	Partkey  int64
	Suppkey  int64
	Qty      int64
	SCost    int64
	Comment  [psCmntMax + 1]byte
	CLen     int32
}

type Part struct {
	Partkey     int64
	Name        [pNameLen + 1]byte
	NLen        int32
	Mfgr        [pMfgLen + 1]byte
	Brand       [pBrndLen + 1]byte
	Type        [pTypeLen + 1]byte
	TLen        int32
	Size        int64
	Container   [pCntrLen + 1]byte
	RetailPrice int64
	Comment     [pCmntMax + 1]byte
	CLen        int32
	Supps       [SuppsPerPart]PartSupp
}

type Supplier struct {
	Suppkey    int64
	Name       [sNameLen + 1]byte
	Address    [sAddrMax + 1]byte
	ALen       int32
	NationCode int64
	Phone      [phoneLen + 1]byte
	Acctbal    int64
	Comment    [sCmntMax + 1]byte
	CLen       int32
}

type Nation struct {
	Code    int64
	Name    [nNameLen + 1]byte
	Region  int64
	Comment [nCmntMax + 1]byte
	CLen    int32
}

type Region struct {
	Code    int64
	Name    [rNameLen + 1]byte
	Comment [rCmntMax + 1]byte
	CLen    int32
}

// CStr slices a NUL-terminated fixed-width field.
func CStr(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

// DateStr slices a date field to its fixed 10-character representation.
func DateStr(b []byte) []byte {
	return b[:dateStrWidth]
}

const dateStrWidth = 10
