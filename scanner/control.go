package scanner

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

// ControlState is the state a session shares with its background scanner: the
// stop flag and the address blacklist.
//
// The foreground sets stop; the scanner polls it between events and also waits on
// Stopped() so a quiet radio does not delay teardown. The blacklist is a lock-free
// map read once per event; addresses added while scanning take effect on the next event.
type ControlState struct {
	blacklist *hashmap.Map[string, struct{}]
	stop      atomic.Bool
	stopOnce  sync.Once
	stopped   chan struct{}
}

// NewControlState creates control state seeded with the given blacklist.
func NewControlState(blacklist []string) *ControlState {
	c := &ControlState{
		blacklist: hashmap.New[string, struct{}](),
		stopped:   make(chan struct{}),
	}
	c.Block(blacklist...)
	return c
}

// SetStop raises the stop flag. It reports true only for the call that raised it.
func (c *ControlState) SetStop() bool {
	raised := false
	c.stopOnce.Do(func() {
		c.stop.Store(true)
		close(c.stopped)
		raised = true
	})
	return raised
}

// ShouldStop reports whether stop has been requested.
func (c *ControlState) ShouldStop() bool {
	return c.stop.Load()
}

// Stopped returns a channel closed once stop has been requested.
func (c *ControlState) Stopped() <-chan struct{} {
	return c.stopped
}

// Block adds addresses to the blacklist. Empty addresses are ignored.
func (c *ControlState) Block(addrs ...string) {
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		c.blacklist.Set(addr, struct{}{})
	}
}

// IsBlacklisted reports whether addr is blacklisted. A missing address ("") never is.
func (c *ControlState) IsBlacklisted(addr string) bool {
	if addr == "" {
		return false
	}
	_, ok := c.blacklist.Get(addr)
	return ok
}

// Blacklist returns a sorted snapshot of the blacklist.
func (c *ControlState) Blacklist() []string {
	addrs := make([]string, 0, c.blacklist.Len())
	c.blacklist.Range(func(addr string, _ struct{}) bool {
		addrs = append(addrs, addr)
		return true
	})
	sort.Strings(addrs)
	return addrs
}
