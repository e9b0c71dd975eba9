package util

import "sync/atomic"

// Counters collects generation statistics without locks. One instance per
// run; tables add to it as they finish batches.
type Counters struct {
	RowsGenerated   atomic.Int64
	BatchesEmitted  atomic.Int64
	BytesSubmitted  atomic.Int64
	WritesCompleted atomic.Int64
}

// Summary is a point-in-time copy of the counters.
type Summary struct {
	RowsGenerated   int64
	BatchesEmitted  int64
	BytesSubmitted  int64
	WritesCompleted int64
}

func (c *Counters) Snapshot() Summary {
	return Summary{
		RowsGenerated:   c.RowsGenerated.Load(),
		BatchesEmitted:  c.BatchesEmitted.Load(),
		BytesSubmitted:  c.BytesSubmitted.Load(),
		WritesCompleted: c.WritesCompleted.Load(),
	}
}
