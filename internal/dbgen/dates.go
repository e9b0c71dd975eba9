package dbgen

import "time"

// The generated timeline spans 1992-01-01 through 1998-12-31, addressed by
// 1-based day ordinals. Order dates stop short of the end so every derived
// line date still lands inside the window.
const (
	totalDates = 2557
	// currentDate is 1995-06-17, the pivot between shipped and open lines.
	currentDate = 1264
	// orderDateSlack keeps orderdate + max ship + max receipt in range.
	orderDateSlack = 151
)

var dateTable [totalDates + 1][dateLen]byte

func initDates() {
	day := time.Date(1992, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= totalDates; i++ {
		copy(dateTable[i][:], day.Format(time.DateOnly))
		dateTable[i][dateStrWidth] = 0
		day = day.AddDate(0, 0, 1)
	}
}
