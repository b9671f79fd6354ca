package testutils

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/srg/advscan/internal/device"
)

// FakeObserver is a scripted device.Observer.
//
// Scan delivers the advertisements given to NewFakeObserver, then either returns
// the configured scan error or keeps delivering advertisements passed to Emit
// until its context is done.
type FakeObserver struct {
	initial  []device.Advertisement
	feed     chan device.Advertisement
	scanErr  error
	stopErr  error
	started  chan struct{}
	startOne sync.Once

	scanning atomic.Bool
	allowDup atomic.Bool
	scans    atomic.Int32
	stops    atomic.Int32
}

// NewFakeObserver creates an observer that replays advs on every Scan.
func NewFakeObserver(advs ...device.Advertisement) *FakeObserver {
	return &FakeObserver{
		initial: advs,
		feed:    make(chan device.Advertisement, 4096),
		started: make(chan struct{}),
	}
}

// WithScanError makes Scan return err right after replaying its advertisements.
func (f *FakeObserver) WithScanError(err error) *FakeObserver {
	f.scanErr = err
	return f
}

// WithStopError makes Stop return err.
func (f *FakeObserver) WithStopError(err error) *FakeObserver {
	f.stopErr = err
	return f
}

// Emit queues advertisements for delivery by a running (or future) Scan.
func (f *FakeObserver) Emit(advs ...device.Advertisement) {
	for _, adv := range advs {
		f.feed <- adv
	}
}

// Scan implements device.Observer.
func (f *FakeObserver) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	f.scans.Add(1)
	f.allowDup.Store(allowDup)
	f.scanning.Store(true)
	defer f.scanning.Store(false)
	f.startOne.Do(func() { close(f.started) })

	for _, adv := range f.initial {
		handler(adv)
	}
	if f.scanErr != nil {
		return f.scanErr
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case adv := <-f.feed:
			handler(adv)
		}
	}
}

// Stop implements device.Observer.
func (f *FakeObserver) Stop() error {
	f.stops.Add(1)
	return f.stopErr
}

// ScanStarted returns a channel closed when Scan is first entered.
func (f *FakeObserver) ScanStarted() <-chan struct{} {
	return f.started
}

// Scanning reports whether Scan is currently running.
func (f *FakeObserver) Scanning() bool {
	return f.scanning.Load()
}

// AllowDup reports the allowDup flag of the latest Scan call.
func (f *FakeObserver) AllowDup() bool {
	return f.allowDup.Load()
}

// ScanCount returns how many times Scan was called.
func (f *FakeObserver) ScanCount() int {
	return int(f.scans.Load())
}

// StopCount returns how many times Stop was called.
func (f *FakeObserver) StopCount() int {
	return int(f.stops.Load())
}

// Released reports whether the adapter was released: Scan has returned and Stop was called.
func (f *FakeObserver) Released() bool {
	return !f.Scanning() && f.StopCount() > 0
}
