// Package convert turns batches of producer rows into Arrow records.
// Column data lives in slices owned by a LifetimeManager and is wrapped
// into Arrow buffers without copying, so the manager must outlive the
// record built from it.
package convert

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// LifetimeManager owns the backing slices of one record batch.
type LifetimeManager struct {
	int64Bufs   []*[]int64
	float64Bufs []*[]float64
	byteBufs    []*[]byte
	offsetBufs  []*[]int32
}

func NewLifetimeManager() *LifetimeManager {
	return &LifetimeManager{}
}

// NewInt64Buffer allocates a managed int64 slice with the given capacity.
func (m *LifetimeManager) NewInt64Buffer(reserve int) *[]int64 {
	b := make([]int64, 0, reserve)
	p := &b
	m.int64Bufs = append(m.int64Bufs, p)
	return p
}

// NewFloat64Buffer allocates a managed float64 slice with the given capacity.
func (m *LifetimeManager) NewFloat64Buffer(reserve int) *[]float64 {
	b := make([]float64, 0, reserve)
	p := &b
	m.float64Bufs = append(m.float64Bufs, p)
	return p
}

// NewByteBuffer allocates a managed byte slice with the given capacity.
func (m *LifetimeManager) NewByteBuffer(reserve int) *[]byte {
	b := make([]byte, 0, reserve)
	p := &b
	m.byteBufs = append(m.byteBufs, p)
	return p
}

// NewOffsetsBuffer allocates a managed int32 offsets slice. Callers seed it
// with the leading zero themselves.
func (m *LifetimeManager) NewOffsetsBuffer(reserve int) *[]int32 {
	b := make([]int32, 0, reserve)
	p := &b
	m.offsetBufs = append(m.offsetBufs, p)
	return p
}

// MemoryUsage reports the capacity of all managed buffers in bytes.
func (m *LifetimeManager) MemoryUsage() int64 {
	var total int64
	for _, b := range m.int64Bufs {
		total += int64(cap(*b)) * 8
	}
	for _, b := range m.float64Bufs {
		total += int64(cap(*b)) * 8
	}
	for _, b := range m.byteBufs {
		total += int64(cap(*b))
	}
	for _, b := range m.offsetBufs {
		total += int64(cap(*b)) * 4
	}
	return total
}

// BufferCount reports how many buffers the manager owns.
func (m *LifetimeManager) BufferCount() int {
	return len(m.int64Bufs) + len(m.float64Bufs) + len(m.byteBufs) + len(m.offsetBufs)
}

func (m *LifetimeManager) drop() {
	m.int64Bufs = nil
	m.float64Bufs = nil
	m.byteBufs = nil
	m.offsetBufs = nil
}

// ManagedRecordBatch couples an Arrow record with the manager that owns its
// backing memory. Release drops both.
type ManagedRecordBatch struct {
	Record arrow.Record
	Mgr    *LifetimeManager
}

func (b *ManagedRecordBatch) NumRows() int64 {
	if b.Record == nil {
		return 0
	}
	return b.Record.NumRows()
}

func (b *ManagedRecordBatch) Release() {
	if b.Record != nil {
		b.Record.Release()
		b.Record = nil
	}
	if b.Mgr != nil {
		b.Mgr.drop()
		b.Mgr = nil
	}
}
