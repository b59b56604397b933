package redq

import "sync/atomic"

// StreamStats contains counters for stream operations.
// All fields are safe for concurrent access.
//
// LocalResults counts calls answered locally without a network round trip
// (empty add, empty delete, negative trim, empty read).
type StreamStats struct {
	Adds         uint64
	Lens         uint64
	Deletes      uint64
	Trims        uint64
	Ranges       uint64
	Reads        uint64
	LocalResults uint64
	Errors       uint64
}

// streamStatsCollector provides internal methods for updating stats.
// Not exported - Streams updates its own stats.
type streamStatsCollector struct {
	stats *StreamStats
}

func newStreamStatsCollector() *streamStatsCollector {
	return &streamStatsCollector{stats: &StreamStats{}}
}

func (c *streamStatsCollector) recordAdd()    { atomic.AddUint64(&c.stats.Adds, 1) }
func (c *streamStatsCollector) recordLen()    { atomic.AddUint64(&c.stats.Lens, 1) }
func (c *streamStatsCollector) recordDelete() { atomic.AddUint64(&c.stats.Deletes, 1) }
func (c *streamStatsCollector) recordTrim()   { atomic.AddUint64(&c.stats.Trims, 1) }
func (c *streamStatsCollector) recordRange()  { atomic.AddUint64(&c.stats.Ranges, 1) }
func (c *streamStatsCollector) recordRead()   { atomic.AddUint64(&c.stats.Reads, 1) }
func (c *streamStatsCollector) recordLocal()  { atomic.AddUint64(&c.stats.LocalResults, 1) }
func (c *streamStatsCollector) recordError()  { atomic.AddUint64(&c.stats.Errors, 1) }

func (c *streamStatsCollector) snapshot() StreamStats {
	return StreamStats{
		Adds:         atomic.LoadUint64(&c.stats.Adds),
		Lens:         atomic.LoadUint64(&c.stats.Lens),
		Deletes:      atomic.LoadUint64(&c.stats.Deletes),
		Trims:        atomic.LoadUint64(&c.stats.Trims),
		Ranges:       atomic.LoadUint64(&c.stats.Ranges),
		Reads:        atomic.LoadUint64(&c.stats.Reads),
		LocalResults: atomic.LoadUint64(&c.stats.LocalResults),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}
