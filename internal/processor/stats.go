package processor

import (
	"math"
	"sync/atomic"

	"squash/pkg/assetkind"
)

// Counters holds the live totals for one category. Every field is atomic so
// workers record outcomes without locks and the progress view reads them
// while the run is in flight.
type Counters struct {
	success atomic.Uint64
	failed  atomic.Uint64
	delta   atomic.Int64
	min     atomic.Int64
	max     atomic.Int64
}

func newCounters() *Counters {
	c := &Counters{}
	c.min.Store(math.MaxInt64)
	c.max.Store(math.MinInt64)
	return c
}

// RecordSuccess counts one committed file that changed size by delta bytes.
func (c *Counters) RecordSuccess(delta int64) {
	c.delta.Add(delta)
	for {
		cur := c.min.Load()
		if delta >= cur || c.min.CompareAndSwap(cur, delta) {
			break
		}
	}
	for {
		cur := c.max.Load()
		if delta <= cur || c.max.CompareAndSwap(cur, delta) {
			break
		}
	}
	c.success.Add(1)
}

// RecordFailure counts one file left untouched.
func (c *Counters) RecordFailure() {
	c.failed.Add(1)
}

// Snapshot reads the counters. Each field is read atomically; the set as a
// whole may straddle a concurrent update.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Success: c.success.Load(),
		Failed:  c.failed.Load(),
		Delta:   c.delta.Load(),
	}
	if s.Success > 0 {
		s.Min = c.min.Load()
		s.Max = c.max.Load()
	}
	return s
}

// Snapshot is a point-in-time copy of one category's counters.
type Snapshot struct {
	Success uint64
	Failed  uint64
	// Delta is the summed original-minus-optimized size; it may be negative.
	Delta int64
	// Min and Max are the smallest and largest single-file deltas. Both are
	// zero until the first success.
	Min int64
	Max int64
}

// Done is the number of tasks that reached a terminal outcome.
func (s Snapshot) Done() uint64 {
	return s.Success + s.Failed
}

// Average is the mean delta per successful file.
func (s Snapshot) Average() int64 {
	if s.Success == 0 {
		return 0
	}
	return s.Delta / int64(s.Success)
}

// Stats is the aggregator shared by every worker of a run, one Counters per
// category.
type Stats struct {
	raster *Counters
	audio  *Counters
}

func NewStats() *Stats {
	return &Stats{raster: newCounters(), audio: newCounters()}
}

// For returns the counters of c, or nil for CategoryNone.
func (s *Stats) For(c assetkind.Category) *Counters {
	switch c {
	case assetkind.CategoryRaster:
		return s.raster
	case assetkind.CategoryAudio:
		return s.audio
	default:
		return nil
	}
}

// Snapshot is shorthand for s.For(c).Snapshot(). The zero snapshot is
// returned for CategoryNone.
func (s *Stats) Snapshot(c assetkind.Category) Snapshot {
	counters := s.For(c)
	if counters == nil {
		return Snapshot{}
	}
	return counters.Snapshot()
}
