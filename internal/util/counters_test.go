package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSnapshot(t *testing.T) {
	c := &Counters{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RowsGenerated.Add(10)
				c.BatchesEmitted.Add(1)
				c.BytesSubmitted.Add(512)
				c.WritesCompleted.Add(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(8000), s.RowsGenerated)
	assert.Equal(t, int64(800), s.BatchesEmitted)
	assert.Equal(t, int64(8*100*512), s.BytesSubmitted)
	assert.Equal(t, int64(800), s.WritesCompleted)
}
