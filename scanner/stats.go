package scanner

import "sync/atomic"

// Stats counts what a session's scanner did with the advertisements it received.
type Stats struct {
	Received    int64 // raw advertisements delivered by the radio
	Accepted    int64 // Results queued for the consumer
	Blacklisted int64 // discarded: sender on the blacklist
	NoPayload   int64 // discarded: no manufacturer data
	Failed      int64 // discarded: malformed or processing failed
	Dropped     int64 // Results overwritten in a bounded queue before being consumed
}

// counters provides lock-free accumulation of Stats.
type counters struct {
	stats Stats
}

func (c *counters) addReceived()    { atomic.AddInt64(&c.stats.Received, 1) }
func (c *counters) addAccepted()    { atomic.AddInt64(&c.stats.Accepted, 1) }
func (c *counters) addBlacklisted() { atomic.AddInt64(&c.stats.Blacklisted, 1) }
func (c *counters) addNoPayload()   { atomic.AddInt64(&c.stats.NoPayload, 1) }
func (c *counters) addFailed()      { atomic.AddInt64(&c.stats.Failed, 1) }

func (c *counters) addDropped(n int) {
	atomic.AddInt64(&c.stats.Dropped, int64(n))
}

// snapshot returns the current counter values.
func (c *counters) snapshot() Stats {
	return Stats{
		Received:    atomic.LoadInt64(&c.stats.Received),
		Accepted:    atomic.LoadInt64(&c.stats.Accepted),
		Blacklisted: atomic.LoadInt64(&c.stats.Blacklisted),
		NoPayload:   atomic.LoadInt64(&c.stats.NoPayload),
		Failed:      atomic.LoadInt64(&c.stats.Failed),
		Dropped:     atomic.LoadInt64(&c.stats.Dropped),
	}
}
